package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/security/secretbox"
)

type tokenRepo struct{ pool *pgxpool.Pool }

// El email se persiste cifrado con secretbox: un dump de la tabla no debe
// revelar destinatarios de invitaciones ni resets.

func (r *tokenRepo) Create(ctx context.Context, t *repository.SecurityToken) error {
	encEmail, err := secretbox.Encrypt(t.Email)
	if err != nil {
		return fmt.Errorf("pg: encrypt token email: %w", err)
	}

	const query = `
		INSERT INTO security_token (id, token_hash, user_id, email_enc, purpose, issued_at, expires_at, consumed_at, attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, 0)
	`
	_, err = r.pool.Exec(ctx, query,
		t.ID, t.TokenHash, t.UserID, encEmail, string(t.Purpose), t.IssuedAt, t.ExpiresAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return repository.ErrConflict
		}
		return fmt.Errorf("pg: insert security token: %w", err)
	}
	return nil
}

func (r *tokenRepo) GetByHash(ctx context.Context, tokenHash string) (*repository.SecurityToken, error) {
	const query = `
		SELECT id, token_hash, user_id, email_enc, purpose, issued_at, expires_at, consumed_at, attempts
		FROM security_token WHERE token_hash = $1
	`
	var t repository.SecurityToken
	var encEmail, purpose string
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&t.ID, &t.TokenHash, &t.UserID, &encEmail, &purpose,
		&t.IssuedAt, &t.ExpiresAt, &t.ConsumedAt, &t.Attempts)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get token by hash: %w", err)
	}
	email, err := secretbox.Decrypt(encEmail)
	if err != nil {
		return nil, fmt.Errorf("pg: decrypt token email: %w", err)
	}
	t.Email = email
	t.Purpose = repository.TokenPurpose(purpose)
	return &t, nil
}

func (r *tokenRepo) IncrementAttempts(ctx context.Context, id string) error {
	const query = `UPDATE security_token SET attempts = attempts + 1 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pg: increment attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkConsumed es un UPDATE condicional sobre consumed_at IS NULL: de dos
// consumos concurrentes, exactamente uno afecta la fila.
func (r *tokenRepo) MarkConsumed(ctx context.Context, id string, now time.Time) (bool, error) {
	const query = `UPDATE security_token SET consumed_at = $2 WHERE id = $1 AND consumed_at IS NULL`
	tag, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("pg: mark token consumed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *tokenRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM security_token WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pg: delete token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *tokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	const query = `DELETE FROM security_token WHERE consumed_at IS NULL AND expires_at < $1`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("pg: delete expired tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
