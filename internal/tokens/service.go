// Package tokens implementa el ciclo de vida de los security tokens de un
// solo uso (reset de password, activación de invitación): emisión, consumo
// atómico y poda de expirados.
package tokens

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/observability/logger"
	sectoken "github.com/dropDatabas3/prism/internal/security/token"
)

const (
	// DefaultTokenBytes es la entropía del secreto crudo (antes de base64url).
	DefaultTokenBytes = 32

	// DefaultResetTTL y DefaultInviteTTL son los vencimientos por defecto.
	DefaultResetTTL  = 30 * time.Minute
	DefaultInviteTTL = 72 * time.Hour
)

// Service emite y consume security tokens sobre un SecurityTokenRepository.
// El backend (pg o memoria) lo decide la configuración; acá solo importa el
// contrato.
type Service struct {
	repo repository.SecurityTokenRepository
	// now es inyectable para tests de expiración.
	now func() time.Time
}

// New crea el servicio de tokens.
func New(repo repository.SecurityTokenRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewWithClock crea el servicio con un reloj propio (tests).
func NewWithClock(repo repository.SecurityTokenRepository, now func() time.Time) *Service {
	return &Service{repo: repo, now: now}
}

// Issue genera un token nuevo para (userID, email, purpose) con el TTL dado
// y lo persiste hasheado. Retorna el secreto crudo, que es lo único que el
// destinatario recibe: una vez emitido no hay forma de recuperarlo.
func (s *Service) Issue(ctx context.Context, userID, email string, purpose repository.TokenPurpose, ttl time.Duration) (string, *repository.SecurityToken, error) {
	raw, err := sectoken.GenerateOpaqueToken(DefaultTokenBytes)
	if err != nil {
		return "", nil, err
	}
	now := s.now().UTC()
	t := &repository.SecurityToken{
		ID:        uuid.NewString(),
		TokenHash: sectoken.Hash(raw),
		UserID:    userID,
		Email:     email,
		Purpose:   purpose,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return "", nil, err
	}
	logger.From(ctx).Info("security token issued",
		logger.Purpose(string(purpose)), logger.UserID(userID), logger.ID(t.ID))
	return raw, t, nil
}

// Consume valida y consume un token crudo de forma atómica. Solo un consumo
// puede tener éxito por token; el resto ve ErrTokenConsumed.
//
// Todos los intentos (incluso los fallidos) incrementan el contador de
// attempts. Un token expirado se elimina al tocarlo y reporta
// ErrTokenExpired. Un purpose fuera de allowed se reporta como ErrNotFound
// para no revelar que el hash existe con otro propósito.
func (s *Service) Consume(ctx context.Context, raw string, allowed ...repository.TokenPurpose) (*repository.SecurityToken, error) {
	t, err := s.repo.GetByHash(ctx, sectoken.Hash(raw))
	if err != nil {
		return nil, err
	}

	// Best effort: un fallo contando intentos no debe bloquear el consumo.
	if err := s.repo.IncrementAttempts(ctx, t.ID); err != nil {
		logger.From(ctx).Warn("increment token attempts failed", logger.ID(t.ID), logger.Err(err))
	}

	if !purposeAllowed(t.Purpose, allowed) {
		return nil, repository.ErrNotFound
	}

	now := s.now().UTC()
	if t.Expired(now) {
		if err := s.repo.Delete(ctx, t.ID); err != nil {
			logger.From(ctx).Warn("delete expired token failed", logger.ID(t.ID), logger.Err(err))
		}
		return nil, repository.ErrTokenExpired
	}

	ok, err := s.repo.MarkConsumed(ctx, t.ID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrTokenConsumed
	}
	t.ConsumedAt = &now

	logger.From(ctx).Info("security token consumed",
		logger.Purpose(string(t.Purpose)), logger.UserID(t.UserID), logger.ID(t.ID))
	return t, nil
}

// Prune elimina los tokens expirados no consumidos. Pensado para correr
// periódicamente o a demanda desde la CLI.
func (s *Service) Prune(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.From(ctx).Info("expired tokens pruned", logger.Count(n))
	}
	return n, nil
}

func purposeAllowed(p repository.TokenPurpose, allowed []repository.TokenPurpose) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if p == a {
			return true
		}
	}
	return false
}

// TTLFor retorna el TTL por defecto del propósito dado.
func TTLFor(p repository.TokenPurpose) time.Duration {
	if p == repository.TokenPurposeInviteActivation {
		return DefaultInviteTTL
	}
	return DefaultResetTTL
}
