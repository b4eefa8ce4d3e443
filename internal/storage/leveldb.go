package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is a durable Backend. Each partition is a one-byte key prefix,
// so prefix iteration yields keys in byte order.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens or creates a LevelDB database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("leveldb path required")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, fmt.Errorf("resolving leveldb path: %w", err)
	}
	db, err := leveldb.OpenFile(abs, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb: %w", err)
	}
	return &LevelDB{db: db}, nil
}

func prefixed(p Partition, key []byte) []byte {
	out := make([]byte, 0, len(key)+1)
	out = append(out, byte(p))
	return append(out, key...)
}

func (l *LevelDB) Get(_ context.Context, p Partition, key []byte) ([]byte, bool, error) {
	v, err := l.db.Get(prefixed(p, key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Put is not atomic against other writers of the same database; Map serializes
// writes within the process and LevelDB allows a single process per directory.
func (l *LevelDB) Put(ctx context.Context, p Partition, key, value []byte) ([]byte, bool, error) {
	prev, existed, err := l.Get(ctx, p, key)
	if err != nil {
		return nil, false, err
	}
	if err := l.db.Put(prefixed(p, key), value, nil); err != nil {
		return nil, false, err
	}
	return prev, existed, nil
}

func (l *LevelDB) Delete(ctx context.Context, p Partition, key []byte) ([]byte, bool, error) {
	prev, existed, err := l.Get(ctx, p, key)
	if err != nil || !existed {
		return nil, false, err
	}
	if err := l.db.Delete(prefixed(p, key), nil); err != nil {
		return nil, false, err
	}
	return prev, true, nil
}

func (l *LevelDB) Len(ctx context.Context, p Partition) (int, error) {
	n := 0
	err := l.Range(ctx, p, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

func (l *LevelDB) Range(ctx context.Context, p Partition, fn func(key, value []byte) error) error {
	iter := l.db.NewIterator(util.BytesPrefix([]byte{byte(p)}), nil)
	defer iter.Release()

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := append([]byte(nil), iter.Key()[1:]...)
		value := append([]byte(nil), iter.Value()...)
		if err := fn(key, value); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("iterating leveldb: %w", err)
	}
	return nil
}

// Close releases the database files.
func (l *LevelDB) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}
