package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

func tok(id, hash string, expiresAt time.Time) *repository.SecurityToken {
	return &repository.SecurityToken{
		ID: id, TokenHash: hash, UserID: "u1", Email: "a@b.c",
		Purpose:   repository.TokenPurposePasswordReset,
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
}

func TestTokenRepo_CreateAndLookup(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, tok("1", "h1", time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	// Hash duplicado → conflicto.
	if err := repo.Create(ctx, tok("2", "h1", time.Now().Add(time.Hour))); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	got, err := repo.GetByHash(ctx, "h1")
	if err != nil || got.ID != "1" {
		t.Fatalf("GetByHash: %+v, %v", got, err)
	}
	if _, err := repo.GetByHash(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTokenRepo_MarkConsumedCAS(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()
	if err := repo.Create(ctx, tok("1", "h1", time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	// N goroutines compiten; exactamente una debe ganar el CAS.
	var wg sync.WaitGroup
	wins := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.MarkConsumed(ctx, "1", time.Now().UTC())
			if err != nil {
				t.Error(err)
				return
			}
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for ok := range wins {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("CAS winners = %d, want exactly 1", winners)
	}
}

func TestTokenRepo_DeleteExpiredKeepsConsumed(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := repo.Create(ctx, tok("expired", "h1", now.Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, tok("live", "h2", now.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, tok("consumed", "h3", now.Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.MarkConsumed(ctx, "consumed", now.Add(-2*time.Minute)); err != nil {
		t.Fatal(err)
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("deleted = %d, want 1", n)
	}
	if _, err := repo.GetByHash(ctx, "h1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("expired token should be gone")
	}
	if _, err := repo.GetByHash(ctx, "h2"); err != nil {
		t.Fatal("live token should remain")
	}
	if _, err := repo.GetByHash(ctx, "h3"); err != nil {
		t.Fatal("consumed token should remain as audit record")
	}
}

func TestTokenRepo_IncrementAttempts(t *testing.T) {
	repo := newTokenRepo()
	ctx := context.Background()
	if err := repo.Create(ctx, tok("1", "h1", time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := repo.IncrementAttempts(ctx, "1"); err != nil {
			t.Fatal(err)
		}
	}
	got, err := repo.GetByHash(ctx, "h1")
	if err != nil || got.Attempts != 3 {
		t.Fatalf("attempts = %d, err %v; want 3", got.Attempts, err)
	}
	if err := repo.IncrementAttempts(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
