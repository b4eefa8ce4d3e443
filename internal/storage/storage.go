package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Partition is the fixed logical id a map is stored under.
// The values are persisted and must not change.
type Partition uint8

const (
	PartitionConfig Partition = 1
	PartitionPrice  Partition = 2
	PartitionFAQ    Partition = 3
)

func (p Partition) String() string {
	switch p {
	case PartitionConfig:
		return "config"
	case PartitionPrice:
		return "price"
	case PartitionFAQ:
		return "faq"
	default:
		return fmt.Sprintf("partition(%d)", uint8(p))
	}
}

// Backend is a durable byte-addressed key-value store split into partitions.
// Range must visit keys in byte-lexicographic order.
type Backend interface {
	Get(ctx context.Context, p Partition, key []byte) ([]byte, bool, error)
	Put(ctx context.Context, p Partition, key, value []byte) (prev []byte, existed bool, err error)
	Delete(ctx context.Context, p Partition, key []byte) (prev []byte, existed bool, err error)
	Len(ctx context.Context, p Partition) (int, error)
	Range(ctx context.Context, p Partition, fn func(key, value []byte) error) error
	Close() error
}

// Map is a typed view over one partition of a Backend.
// Writes are serialized per Map so read-modify-write on one key is atomic within the process.
type Map[K, V any] struct {
	backend   Backend
	partition Partition
	keys      Codec[K]
	values    Codec[V]
	mu        sync.RWMutex
}

// NewMap returns a Map over partition p.
func NewMap[K, V any](backend Backend, p Partition, keys Codec[K], values Codec[V]) *Map[K, V] {
	return &Map[K, V]{backend: backend, partition: p, keys: keys, values: values}
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V
	k, err := m.keys.Encode(key)
	if err != nil {
		return zero, false, fmt.Errorf("encoding %s key: %w", m.partition, err)
	}

	m.mu.RLock()
	raw, ok, err := m.backend.Get(ctx, m.partition, k)
	m.mu.RUnlock()
	if err != nil {
		return zero, false, fmt.Errorf("reading %s entry: %w", m.partition, err)
	}
	if !ok {
		return zero, false, nil
	}

	v, err := m.values.Decode(raw)
	if err != nil {
		return zero, false, fmt.Errorf("decoding %s value: %w", m.partition, err)
	}
	return v, true, nil
}

// Insert stores value under key and returns the previous value, if any.
func (m *Map[K, V]) Insert(ctx context.Context, key K, value V) (V, bool, error) {
	var zero V
	k, err := m.keys.Encode(key)
	if err != nil {
		return zero, false, fmt.Errorf("encoding %s key: %w", m.partition, err)
	}
	raw, err := m.values.Encode(value)
	if err != nil {
		return zero, false, fmt.Errorf("encoding %s value: %w", m.partition, err)
	}

	m.mu.Lock()
	prev, existed, err := m.backend.Put(ctx, m.partition, k, raw)
	m.mu.Unlock()
	if err != nil {
		return zero, false, fmt.Errorf("writing %s entry: %w", m.partition, err)
	}
	return m.decodePrev(prev, existed)
}

// Remove deletes key and returns the value it held, if any.
func (m *Map[K, V]) Remove(ctx context.Context, key K) (V, bool, error) {
	var zero V
	k, err := m.keys.Encode(key)
	if err != nil {
		return zero, false, fmt.Errorf("encoding %s key: %w", m.partition, err)
	}

	m.mu.Lock()
	prev, existed, err := m.backend.Delete(ctx, m.partition, k)
	m.mu.Unlock()
	if err != nil {
		return zero, false, fmt.Errorf("deleting %s entry: %w", m.partition, err)
	}
	return m.decodePrev(prev, existed)
}

// ContainsKey reports whether key is present.
func (m *Map[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	k, err := m.keys.Encode(key)
	if err != nil {
		return false, fmt.Errorf("encoding %s key: %w", m.partition, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok, err := m.backend.Get(ctx, m.partition, k)
	if err != nil {
		return false, fmt.Errorf("reading %s entry: %w", m.partition, err)
	}
	return ok, nil
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, err := m.backend.Len(ctx, m.partition)
	if err != nil {
		return 0, fmt.Errorf("counting %s entries: %w", m.partition, err)
	}
	return n, nil
}

// Range calls fn for every entry in encoded-key order. Entries are snapshotted
// before fn runs, so fn may write to the map.
func (m *Map[K, V]) Range(ctx context.Context, fn func(K, V) error) error {
	type entry struct {
		key   K
		value V
	}
	var entries []entry

	m.mu.RLock()
	err := m.backend.Range(ctx, m.partition, func(rawKey, rawValue []byte) error {
		k, err := m.keys.Decode(rawKey)
		if err != nil {
			return fmt.Errorf("decoding %s key: %w", m.partition, err)
		}
		v, err := m.values.Decode(rawValue)
		if err != nil {
			return fmt.Errorf("decoding %s value: %w", m.partition, err)
		}
		entries = append(entries, entry{key: k, value: v})
		return nil
	})
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("iterating %s entries: %w", m.partition, err)
	}

	for _, e := range entries {
		if err := fn(e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map[K, V]) decodePrev(prev []byte, existed bool) (V, bool, error) {
	var zero V
	if !existed {
		return zero, false, nil
	}
	v, err := m.values.Decode(prev)
	if err != nil {
		return zero, true, fmt.Errorf("decoding previous %s value: %w", m.partition, err)
	}
	return v, true, nil
}
