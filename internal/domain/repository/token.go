package repository

import (
	"context"
	"time"
)

// TokenPurpose indica el propósito de un token de seguridad.
type TokenPurpose string

const (
	TokenPurposePasswordReset    TokenPurpose = "password_reset"
	TokenPurposeInviteActivation TokenPurpose = "invite_activation"
)

// SecurityToken representa un token de un solo uso, con expiración.
// El secreto crudo nunca se persiste: solo su hash SHA-256.
type SecurityToken struct {
	ID        string
	TokenHash string
	UserID    string
	// Email es el destinatario. En el adapter pg se persiste cifrado con
	// secretbox; en memoria queda en claro (proceso efímero).
	Email      string
	Purpose    TokenPurpose
	IssuedAt   time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	// Attempts cuenta todos los intentos de consumo, exitosos o no.
	Attempts int
}

// Expired indica si el token ya venció en el instante dado.
func (t *SecurityToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// SecurityTokenRepository define la persistencia de tokens de seguridad.
//
// La transición issued → consumed debe ser atómica: MarkConsumed es un
// compare-and-set sobre consumed_at IS NULL, de modo que dos consumos
// concurrentes del mismo token nunca puedan ambos tener éxito.
type SecurityTokenRepository interface {
	// Create persiste un token nuevo.
	Create(ctx context.Context, t *SecurityToken) error

	// GetByHash busca un token por su hash. Retorna ErrNotFound si no existe.
	GetByHash(ctx context.Context, tokenHash string) (*SecurityToken, error)

	// IncrementAttempts suma 1 al contador de intentos del token.
	IncrementAttempts(ctx context.Context, id string) error

	// MarkConsumed marca consumed_at = now solo si el token aún no fue
	// consumido. Retorna false si otro consumo ganó la carrera.
	MarkConsumed(ctx context.Context, id string, now time.Time) (bool, error)

	// Delete elimina un token por id.
	Delete(ctx context.Context, id string) error

	// DeleteExpired elimina los tokens no consumidos con expires_at < now.
	// Retorna la cantidad eliminada. Nunca toca tokens vigentes.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
