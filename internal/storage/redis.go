package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

// Scripts return the previous field value and write in one round trip.
var (
	swapScript = redis.NewScript(`
local prev = redis.call('HGET', KEYS[1], ARGV[1])
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return prev`)

	takeScript = redis.NewScript(`
local prev = redis.call('HGET', KEYS[1], ARGV[1])
if prev then redis.call('HDEL', KEYS[1], ARGV[1]) end
return prev`)
)

// Redis is a Backend storing each partition as one hash.
type Redis struct {
	client *redis.Client
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr string) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required for redis storage")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return NewRedis(client), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func hashKey(p Partition) string {
	return fmt.Sprintf("pricebot:kv:%d", uint8(p))
}

func (r *Redis) Get(ctx context.Context, p Partition, key []byte) ([]byte, bool, error) {
	v, err := r.client.HGet(ctx, hashKey(p), string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("getting %s entry: %w", p, err)
	}
	return v, true, nil
}

func (r *Redis) Put(ctx context.Context, p Partition, key, value []byte) ([]byte, bool, error) {
	return r.runScript(ctx, swapScript, p, string(key), string(value))
}

func (r *Redis) Delete(ctx context.Context, p Partition, key []byte) ([]byte, bool, error) {
	return r.runScript(ctx, takeScript, p, string(key))
}

func (r *Redis) runScript(ctx context.Context, script *redis.Script, p Partition, args ...any) ([]byte, bool, error) {
	res, err := script.Run(ctx, r.client, []string{hashKey(p)}, args...).Text()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("updating %s entry: %w", p, err)
	}
	return []byte(res), true, nil
}

func (r *Redis) Len(ctx context.Context, p Partition) (int, error) {
	n, err := r.client.HLen(ctx, hashKey(p)).Result()
	if err != nil {
		return 0, fmt.Errorf("counting %s entries: %w", p, err)
	}
	return int(n), nil
}

// Range loads the whole hash; partitions are small enough for that.
func (r *Redis) Range(ctx context.Context, p Partition, fn func(key, value []byte) error) error {
	all, err := r.client.HGetAll(ctx, hashKey(p)).Result()
	if err != nil {
		return fmt.Errorf("listing %s entries: %w", p, err)
	}
	keys := lo.Keys(all)
	slices.Sort(keys)
	for _, k := range keys {
		if err := fn([]byte(k), []byte(all[k])); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
