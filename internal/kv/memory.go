package kv

import (
	"context"
	"sync"
)

// Memory is a process-local Store, used in tests and for throwaway sessions.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
	closed bool

	// PutErr, when set, is returned by every Put without storing the value.
	PutErr error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *Memory) Put(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	if m.PutErr != nil {
		return m.PutErr
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	current, ok := m.values[key]
	value, err := fn(current, ok)
	if err != nil {
		return err
	}
	if m.PutErr != nil {
		return m.PutErr
	}
	m.values[key] = value
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
