package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// Memory keeps documents as encoded JSON so callers never share state with
// the store, the same as with the networked backends.
type Memory[T any] struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemory creates an empty in-process store.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{docs: make(map[string][]byte)}
}

func (m *Memory[T]) Save(ctx context.Context, id string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; exists {
		return ErrDuplicate
	}
	m.docs[id] = data
	return nil
}

func (m *Memory[T]) Find(ctx context.Context, id string) (T, error) {
	var v T
	m.mu.RLock()
	data, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return v, ErrNotFound
	}
	err := json.Unmarshal(data, &v)
	return v, err
}

func (m *Memory[T]) Update(ctx context.Context, id string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; !exists {
		return ErrNotFound
	}
	m.docs[id] = data
	return nil
}

func (m *Memory[T]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.docs, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory[T]) List(ctx context.Context) ([]T, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	raw := make([][]byte, len(ids))
	for i, id := range ids {
		raw[i] = m.docs[id]
	}
	m.mu.RUnlock()

	out := make([]T, 0, len(raw))
	for _, data := range raw {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
