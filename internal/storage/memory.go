package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Memory is a volatile Backend for tests and local runs.
type Memory struct {
	mu   sync.RWMutex
	data map[Partition]map[string][]byte
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[Partition]map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, p Partition, key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[p][string(key)]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (m *Memory) Put(_ context.Context, p Partition, key, value []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	part, ok := m.data[p]
	if !ok {
		part = make(map[string][]byte)
		m.data[p] = part
	}
	prev, existed := part[string(key)]
	part[string(key)] = slices.Clone(value)
	return prev, existed, nil
}

func (m *Memory) Delete(_ context.Context, p Partition, key []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, existed := m.data[p][string(key)]
	if existed {
		delete(m.data[p], string(key))
	}
	return prev, existed, nil
}

func (m *Memory) Len(_ context.Context, p Partition) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[p]), nil
}

func (m *Memory) Range(ctx context.Context, p Partition, fn func(key, value []byte) error) error {
	m.mu.RLock()
	part := m.data[p]
	keys := lo.Keys(part)
	slices.Sort(keys)
	values := lo.Map(keys, func(k string, _ int) []byte { return slices.Clone(part[k]) })
	m.mu.RUnlock()

	for i, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn([]byte(k), values[i]); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
