// Package prefs persists the small set of user preferences that survive restarts.
package prefs

import (
	"context"
	"sync"
)

// Keys used by the session.
const (
	KeyUnit     = "temperatureUnit"
	KeyLastCity = "lastSearchedCity"
)

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it was set
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	Close() error
}

// Memory is a Store that lives only as long as the process.
type Memory struct {
	data  map[string]string
	mutex sync.RWMutex
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]string),
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data[key] = value
	return nil
}

func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)
