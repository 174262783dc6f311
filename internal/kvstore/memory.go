package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store used when no database is configured
// and throughout the tests. Values are kept serialized so Load/Save behave
// exactly like a durable adapter, including decode failures on corrupt data.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]json.RawMessage),
	}
}

// Load decodes the value stored under key into out.
func (s *MemoryStore) Load(_ context.Context, key string, out any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode state %q: %w", key, err)
	}

	return true, nil
}

// Save serializes value under key.
func (s *MemoryStore) Save(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode state %q: %w", key, err)
	}

	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()

	return nil
}

// Corrupt overwrites the stored value for key with invalid JSON. Test hook
// for the malformed-state fallback path.
func (s *MemoryStore) Corrupt(key string) {
	s.mu.Lock()
	s.data[key] = json.RawMessage(`{not json`)
	s.mu.Unlock()
}
