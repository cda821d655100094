// SPDX-License-Identifier: MPL-2.0

package store

import (
	"context"
	"sync"

	"github.com/forgecad/forge/pkg/params"
)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]params.Values
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]params.Values)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (params.Values, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return v.Clone(), nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, values params.Values) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = values.Clone()
	return nil
}

// Clear implements Store.
func (m *Memory) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
