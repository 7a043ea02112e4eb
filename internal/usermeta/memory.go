package usermeta

import (
	"context"
	"sync"
)

type entryKey struct {
	userID int64
	key    string
}

// MemoryStore is an in-process Store, used by tests and the "memory" driver.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[entryKey]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[entryKey]string{}}
}

func (s *MemoryStore) Get(_ context.Context, userID int64, key string) (string, bool, error) {
	if err := validate(userID, key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[entryKey{userID, key}]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, userID int64, key, value string) error {
	if err := validate(userID, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[entryKey{userID, key}] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64, key string) error {
	if err := validate(userID, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, entryKey{userID, key})
	return nil
}
