package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

type tokenRepo struct {
	mu     sync.Mutex
	byID   map[string]*repository.SecurityToken
	byHash map[string]string // token_hash -> id
}

func newTokenRepo() *tokenRepo {
	return &tokenRepo{
		byID:   make(map[string]*repository.SecurityToken),
		byHash: make(map[string]string),
	}
}

func cloneToken(t *repository.SecurityToken) *repository.SecurityToken {
	cp := *t
	if t.ConsumedAt != nil {
		at := *t.ConsumedAt
		cp.ConsumedAt = &at
	}
	return &cp
}

func (r *tokenRepo) Create(_ context.Context, t *repository.SecurityToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byHash[t.TokenHash]; dup {
		return repository.ErrConflict
	}
	r.byID[t.ID] = cloneToken(t)
	r.byHash[t.TokenHash] = t.ID
	return nil
}

func (r *tokenRepo) GetByHash(_ context.Context, tokenHash string) (*repository.SecurityToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byHash[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneToken(r.byID[id]), nil
}

func (r *tokenRepo) IncrementAttempts(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Attempts++
	return nil
}

// MarkConsumed es el compare-and-set: bajo el mutex, el primer consumo gana
// y el resto ve false.
func (r *tokenRepo) MarkConsumed(_ context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if t.ConsumedAt != nil {
		return false, nil
	}
	at := now
	t.ConsumedAt = &at
	return true, nil
}

func (r *tokenRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byHash, t.TokenHash)
	delete(r.byID, id)
	return nil
}

func (r *tokenRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, t := range r.byID {
		if t.ConsumedAt == nil && now.After(t.ExpiresAt) {
			delete(r.byHash, t.TokenHash)
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
