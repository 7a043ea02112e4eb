package accounts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[int64]Account{}}
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.byID {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

// Create assigns the next id unless a.ID is already set, which lets tests pin
// ids.
func (r *MemoryRepository) Create(_ context.Context, a Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, a.Email) {
			return Account{}, fmt.Errorf("create account: email %s already exists", a.Email)
		}
	}
	if a.ID <= 0 {
		r.nextID++
		a.ID = r.nextID
	} else if a.ID > r.nextID {
		r.nextID = a.ID
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.byID[a.ID] = a
	return a, nil
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}
