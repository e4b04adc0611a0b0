// Package accounts implementa los flujos de cuentas construidos sobre el
// engine de contenido: invitación con activación y recuperación de password.
// Los usuarios son registros de contenido de tipo User bajo el tenant de
// plataforma; el engine valida cada escritura contra su schema.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/email"
	"github.com/dropDatabas3/prism/internal/observability/logger"
	"github.com/dropDatabas3/prism/internal/prism"
	"github.com/dropDatabas3/prism/internal/roleguard"
	"github.com/dropDatabas3/prism/internal/roles"
	"github.com/dropDatabas3/prism/internal/security/password"
	"github.com/dropDatabas3/prism/internal/tokens"
)

const userBlock = "User"

// PolicyError indica que el password no cumple la política.
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string {
	return "password policy: " + strings.Join(e.Reasons, ", ")
}

// Deps agrupa las dependencias del servicio.
type Deps struct {
	Content *prism.Service
	Tokens  *tokens.Service
	Roles   repository.RoleRepository
	Mail    *email.Service
	Policy  password.Policy

	InviteTTL time.Duration
	ResetTTL  time.Duration
}

// Service ejecuta los flujos de invitación y reset.
type Service struct {
	d Deps
}

// New crea el servicio de cuentas.
func New(d Deps) *Service {
	if d.InviteTTL == 0 {
		d.InviteTTL = tokens.DefaultInviteTTL
	}
	if d.ResetTTL == 0 {
		d.ResetTTL = tokens.DefaultResetTTL
	}
	return &Service{d: d}
}

// Invite invita un email a un tenant con el rol dado: crea el usuario si no
// existe (status invited), le asigna el rol y emite el token de activación.
// El grant pasa por el mismo roleguard que los cambios de rol: el actor
// necesita rango suficiente en el tenant destino. actorID vacío es una
// invocación operativa (CLI) que se salta el guard. Retorna el token crudo
// para que el caller arme el link (o lo eche en headers de debug).
func (s *Service) Invite(ctx context.Context, actorID, toEmail, tenantID, tenantName string, role repository.TenantRoleName) (string, error) {
	toEmail = strings.ToLower(strings.TrimSpace(toEmail))
	if toEmail == "" {
		return "", fmt.Errorf("%w: email is required", repository.ErrInvalidInput)
	}
	if roleguard.TenantRoleRank(role) == 0 {
		return "", fmt.Errorf("%w: unknown role %q", repository.ErrInvalidInput, role)
	}

	user, err := s.findUserByEmail(ctx, toEmail)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}

	// El guard corre antes de escribir nada: un actor denegado no deja ni el
	// registro de usuario.
	if actorID != "" {
		actorRoles, err := s.d.Roles.ListUserTenantRoles(ctx, actorID)
		if err != nil {
			return "", err
		}
		var targetID string
		var targetRoles []repository.TenantRole
		if user != nil {
			targetID = user.ID
			targetRoles, err = s.d.Roles.ListUserTenantRoles(ctx, user.ID)
			if err != nil {
				return "", err
			}
		}
		dec := roleguard.ValidateTenantRoleChange(roleguard.TenantChange{
			ActorID:     actorID,
			TargetID:    targetID,
			TenantID:    tenantID,
			ActorRoles:  actorRoles,
			TargetRoles: targetRoles,
			DesiredRole: role,
		})
		if !dec.OK {
			return "", &roles.GuardError{Status: dec.Status, Message: dec.Message}
		}
	}

	if user == nil {
		res, err := s.d.Content.Create(ctx, userBlock, map[string]any{
			"email":  toEmail,
			"status": "invited",
		}, repository.TenantPlatform)
		if err != nil {
			return "", err
		}
		user = &res.Items[0]
	}

	// El rol se otorga al invitar; la activación solo fija el password.
	if err := s.d.Roles.UpsertTenantRole(ctx, repository.TenantRole{
		TenantID: tenantID,
		UserID:   user.ID,
		Role:     role,
	}); err != nil {
		return "", err
	}

	raw, _, err := s.d.Tokens.Issue(ctx, user.ID, toEmail, repository.TokenPurposeInviteActivation, s.d.InviteTTL)
	if err != nil {
		return "", err
	}
	if err := s.d.Mail.SendInvite(toEmail, tenantName, raw, s.d.InviteTTL); err != nil {
		return "", err
	}
	logger.From(ctx).Info("invite sent",
		logger.TenantID(tenantID), logger.UserID(user.ID))
	return raw, nil
}

// AcceptInvite consume el token de activación y deja la cuenta activa con el
// password dado. Token inválido/expirado/consumido burbujea como error de
// repositorio; password débil como *PolicyError.
func (s *Service) AcceptInvite(ctx context.Context, rawToken, plainPassword string) error {
	if ok, reasons := s.d.Policy.Validate(plainPassword); !ok {
		return &PolicyError{Reasons: reasons}
	}
	t, err := s.d.Tokens.Consume(ctx, rawToken, repository.TokenPurposeInviteActivation)
	if err != nil {
		return err
	}
	hash, err := password.Hash(password.Default, plainPassword)
	if err != nil {
		return err
	}
	_, err = s.d.Content.Update(ctx, userBlock, t.UserID, map[string]any{
		"status":        "active",
		"password_hash": hash,
	}, repository.TenantPlatform)
	if err != nil {
		return err
	}
	logger.From(ctx).Info("invite accepted", logger.UserID(t.UserID))
	return nil
}

// Forgot emite un token de reset para el email, si existe una cuenta. Para
// no revelar qué emails existen, un email desconocido NO es error: retorna
// token vacío y el handler responde igual que en el caso exitoso.
func (s *Service) Forgot(ctx context.Context, toEmail string) (string, error) {
	toEmail = strings.ToLower(strings.TrimSpace(toEmail))
	user, err := s.findUserByEmail(ctx, toEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.From(ctx).Info("password reset requested for unknown email")
			return "", nil
		}
		return "", err
	}

	raw, _, err := s.d.Tokens.Issue(ctx, user.ID, toEmail, repository.TokenPurposePasswordReset, s.d.ResetTTL)
	if err != nil {
		return "", err
	}
	if err := s.d.Mail.SendPasswordReset(toEmail, raw, s.d.ResetTTL); err != nil {
		return "", err
	}
	return raw, nil
}

// Reset consume el token de reset y fija el nuevo password.
func (s *Service) Reset(ctx context.Context, rawToken, newPassword string) error {
	if ok, reasons := s.d.Policy.Validate(newPassword); !ok {
		return &PolicyError{Reasons: reasons}
	}
	t, err := s.d.Tokens.Consume(ctx, rawToken, repository.TokenPurposePasswordReset)
	if err != nil {
		return err
	}
	hash, err := password.Hash(password.Default, newPassword)
	if err != nil {
		return err
	}
	_, err = s.d.Content.Update(ctx, userBlock, t.UserID, map[string]any{
		"password_hash": hash,
	}, repository.TenantPlatform)
	if err != nil {
		return err
	}
	logger.From(ctx).Info("password reset completed", logger.UserID(t.UserID))
	return nil
}

func (s *Service) findUserByEmail(ctx context.Context, email string) (*repository.ContentRecord, error) {
	res, err := s.d.Content.Query(ctx, repository.QueryParams{
		ContentType: userBlock,
		TenantID:    repository.TenantPlatform,
		Where:       repository.Where{Indexer: map[string]any{"email": email}},
		Limit:       1,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, repository.ErrNotFound
	}
	return &res.Items[0], nil
}
