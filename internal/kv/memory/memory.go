package memory

import (
	"context"
	"encoding/json"
	"sync"
)

// Store is an in-process kv backend used by tests and as a last-resort
// fallback. It still round-trips values through JSON so serialization
// behaves exactly like the durable backends.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Load(_ context.Context, key string, dest any) error {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// Corrupt value: the caller keeps its fallback.
		return nil
	}
	return nil
}

func (s *Store) Save(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

// Put stores a raw value verbatim. Tests use it to simulate corrupt data.
func (s *Store) Put(key string, raw []byte) {
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
}
