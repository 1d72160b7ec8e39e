package host

import (
	"context"
	"sync"
)

// OptionStore persists named settings values.
type OptionStore interface {
	GetOption(ctx context.Context, name string) (value string, ok bool, err error)
	UpdateOption(ctx context.Context, name, value string) error
	AllOptions(ctx context.Context) (map[string]string, error)
}

// MemoryOptions is an in-process OptionStore.
type MemoryOptions struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryOptions creates an empty store.
func NewMemoryOptions() *MemoryOptions {
	return &MemoryOptions{values: make(map[string]string)}
}

// GetOption implements OptionStore.
func (m *MemoryOptions) GetOption(_ context.Context, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	return v, ok, nil
}

// UpdateOption implements OptionStore.
func (m *MemoryOptions) UpdateOption(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

// AllOptions implements OptionStore.
func (m *MemoryOptions) AllOptions(_ context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}
