package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Backend on the kv_entries table. The previous value is
// returned by the same statement that writes, so Put and Delete are atomic per key.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps a migrated pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) Get(ctx context.Context, p Partition, key []byte) ([]byte, bool, error) {
	var value []byte
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE partition = $1 AND key = $2`,
		int16(p), key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting %s entry: %w", p, err)
	}
	return value, true, nil
}

func (r *Postgres) Put(ctx context.Context, p Partition, key, value []byte) ([]byte, bool, error) {
	var (
		prev    []byte
		existed bool
	)
	err := r.pool.QueryRow(ctx,
		`WITH prev AS (
			SELECT value FROM kv_entries WHERE partition = $1 AND key = $2
		 )
		 INSERT INTO kv_entries (partition, key, value, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (partition, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		 RETURNING (SELECT value FROM prev), EXISTS (SELECT 1 FROM prev)`,
		int16(p), key, value).Scan(&prev, &existed)
	if err != nil {
		return nil, false, fmt.Errorf("saving %s entry: %w", p, err)
	}
	return prev, existed, nil
}

func (r *Postgres) Delete(ctx context.Context, p Partition, key []byte) ([]byte, bool, error) {
	var prev []byte
	err := r.pool.QueryRow(ctx,
		`DELETE FROM kv_entries WHERE partition = $1 AND key = $2 RETURNING value`,
		int16(p), key).Scan(&prev)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("deleting %s entry: %w", p, err)
	}
	return prev, true, nil
}

func (r *Postgres) Len(ctx context.Context, p Partition) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM kv_entries WHERE partition = $1`, int16(p)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s entries: %w", p, err)
	}
	return n, nil
}

// Range relies on bytea comparing bytewise.
func (r *Postgres) Range(ctx context.Context, p Partition, fn func(key, value []byte) error) error {
	rows, err := r.pool.Query(ctx,
		`SELECT key, value FROM kv_entries WHERE partition = $1 ORDER BY key`, int16(p))
	if err != nil {
		return fmt.Errorf("listing %s entries: %w", p, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scanning %s entry: %w", p, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close closes the pool.
func (r *Postgres) Close() error {
	r.pool.Close()
	return nil
}
