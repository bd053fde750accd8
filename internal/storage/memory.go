package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory keeps values in a map. Namespaces sharing one Memory do not see
// each other's keys.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	prefix prefixer
}

func NewMemory(namespace string) *Memory {
	return &Memory{
		data:   make(map[string][]byte),
		prefix: prefixer{namespace: namespace},
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[m.prefix.key(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[m.prefix.key(key)] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, m.prefix.key(key))
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, m.prefix.prefix()) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *Memory) HasKey(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[m.prefix.key(key)]
	return ok, nil
}

func (m *Memory) ListKeys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasPrefix(k, m.prefix.prefix()) {
			keys = append(keys, m.prefix.strip(k))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error {
	return nil
}
