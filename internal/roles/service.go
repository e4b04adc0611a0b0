// Package roles aplica las reglas de mutación de roles: valida con el
// roleguard sobre un snapshot fresco, chequea el invariante de último owner
// y recién entonces persiste.
package roles

import (
	"context"
	"net/http"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/observability/logger"
	"github.com/dropDatabas3/prism/internal/roleguard"
)

// GuardError es una denegación del roleguard con su status de transporte.
type GuardError struct {
	Status  int
	Message string
}

func (e *GuardError) Error() string { return e.Message }

// Service ejecuta cambios y remociones de roles.
//
// Las validaciones corren sobre estado re-leído inmediatamente antes de
// aplicar el cambio. Eso minimiza (no elimina) carreras entre mutaciones
// concurrentes; la serialización estricta no es un objetivo acá.
type Service struct {
	repo repository.RoleRepository
}

// New crea el servicio de roles.
func New(repo repository.RoleRepository) *Service {
	return &Service{repo: repo}
}

// ChangeTenantRole asigna desired al target dentro del tenant, si el actor
// puede. Retorna *GuardError en denegaciones del guard y ErrLastOwner si el
// cambio degradaría al único owner.
func (s *Service) ChangeTenantRole(ctx context.Context, actorID, tenantID, targetID string, desired repository.TenantRoleName) error {
	actorRoles, err := s.repo.ListUserTenantRoles(ctx, actorID)
	if err != nil {
		return err
	}
	targetRoles, err := s.repo.ListUserTenantRoles(ctx, targetID)
	if err != nil {
		return err
	}

	dec := roleguard.ValidateTenantRoleChange(roleguard.TenantChange{
		ActorID:     actorID,
		TargetID:    targetID,
		TenantID:    tenantID,
		ActorRoles:  actorRoles,
		TargetRoles: targetRoles,
		DesiredRole: desired,
	})
	if !dec.OK {
		return &GuardError{Status: dec.Status, Message: dec.Message}
	}

	// Último owner: degradar al único owner deja el tenant sin dueño.
	if isTenantOwner(targetRoles, tenantID) && desired != repository.TenantRoleOwner {
		if err := s.requireAnotherTenantOwner(ctx, tenantID); err != nil {
			return err
		}
	}

	if err := s.repo.UpsertTenantRole(ctx, repository.TenantRole{
		TenantID: tenantID,
		UserID:   targetID,
		Role:     desired,
	}); err != nil {
		return err
	}
	logger.From(ctx).Info("tenant role changed",
		logger.TenantID(tenantID), logger.UserID(targetID), logger.String("role", string(desired)))
	return nil
}

// RemoveTenantRole quita el rol del target dentro del tenant, si el actor
// puede y el target no es el último owner.
func (s *Service) RemoveTenantRole(ctx context.Context, actorID, tenantID, targetID string) error {
	actorRoles, err := s.repo.ListUserTenantRoles(ctx, actorID)
	if err != nil {
		return err
	}
	targetRoles, err := s.repo.ListUserTenantRoles(ctx, targetID)
	if err != nil {
		return err
	}

	dec := roleguard.ValidateTenantRoleRemoval(roleguard.TenantRemoval{
		ActorID:     actorID,
		TargetID:    targetID,
		TenantID:    tenantID,
		ActorRoles:  actorRoles,
		TargetRoles: targetRoles,
	})
	if !dec.OK {
		return &GuardError{Status: dec.Status, Message: dec.Message}
	}

	if isTenantOwner(targetRoles, tenantID) {
		if err := s.requireAnotherTenantOwner(ctx, tenantID); err != nil {
			return err
		}
	}

	if err := s.repo.RemoveTenantRole(ctx, tenantID, targetID); err != nil {
		return err
	}
	logger.From(ctx).Info("tenant role removed",
		logger.TenantID(tenantID), logger.UserID(targetID))
	return nil
}

// ChangeOrgRole es el análogo de ChangeTenantRole para organizaciones.
func (s *Service) ChangeOrgRole(ctx context.Context, actorID, organizationID, targetID string, desired repository.OrgRoleName) error {
	actorRoles, err := s.repo.ListUserOrgRoles(ctx, actorID)
	if err != nil {
		return err
	}
	targetRoles, err := s.repo.ListUserOrgRoles(ctx, targetID)
	if err != nil {
		return err
	}

	dec := roleguard.ValidateOrgRoleChange(roleguard.OrgChange{
		ActorID:        actorID,
		TargetID:       targetID,
		OrganizationID: organizationID,
		ActorRoles:     actorRoles,
		TargetRoles:    targetRoles,
		DesiredRole:    desired,
	})
	if !dec.OK {
		return &GuardError{Status: dec.Status, Message: dec.Message}
	}

	if isOrgOwner(targetRoles, organizationID) && desired != repository.OrgRoleOwner {
		if err := s.requireAnotherOrgOwner(ctx, organizationID); err != nil {
			return err
		}
	}

	if err := s.repo.UpsertOrgRole(ctx, repository.OrgRole{
		OrganizationID: organizationID,
		UserID:         targetID,
		Role:           desired,
	}); err != nil {
		return err
	}
	logger.From(ctx).Info("organization role changed",
		logger.OrgID(organizationID), logger.UserID(targetID), logger.String("role", string(desired)))
	return nil
}

// RemoveOrgRole es el análogo de RemoveTenantRole para organizaciones.
func (s *Service) RemoveOrgRole(ctx context.Context, actorID, organizationID, targetID string) error {
	actorRoles, err := s.repo.ListUserOrgRoles(ctx, actorID)
	if err != nil {
		return err
	}
	targetRoles, err := s.repo.ListUserOrgRoles(ctx, targetID)
	if err != nil {
		return err
	}

	dec := roleguard.ValidateOrgRoleRemoval(roleguard.OrgRemoval{
		ActorID:        actorID,
		TargetID:       targetID,
		OrganizationID: organizationID,
		ActorRoles:     actorRoles,
		TargetRoles:    targetRoles,
	})
	if !dec.OK {
		return &GuardError{Status: dec.Status, Message: dec.Message}
	}

	if isOrgOwner(targetRoles, organizationID) {
		if err := s.requireAnotherOrgOwner(ctx, organizationID); err != nil {
			return err
		}
	}

	if err := s.repo.RemoveOrgRole(ctx, organizationID, targetID); err != nil {
		return err
	}
	logger.From(ctx).Info("organization role removed",
		logger.OrgID(organizationID), logger.UserID(targetID))
	return nil
}

// ListTenantRoles expone el listado para los handlers. Solo miembros del
// tenant pueden listar: un autenticado sin rol ahí no debe poder enumerar
// usuarios de otros tenants.
func (s *Service) ListTenantRoles(ctx context.Context, actorID, tenantID string) ([]repository.TenantRole, error) {
	actorRoles, err := s.repo.ListUserTenantRoles(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if roleguard.TenantRank(actorRoles, tenantID) == 0 {
		return nil, &GuardError{Status: http.StatusForbidden, Message: "not a member of this tenant"}
	}
	return s.repo.ListTenantRoles(ctx, tenantID)
}

// ListOrgRoles expone el listado para los handlers; mismo chequeo de
// membresía que ListTenantRoles.
func (s *Service) ListOrgRoles(ctx context.Context, actorID, organizationID string) ([]repository.OrgRole, error) {
	actorRoles, err := s.repo.ListUserOrgRoles(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if roleguard.OrgRank(actorRoles, organizationID) == 0 {
		return nil, &GuardError{Status: http.StatusForbidden, Message: "not a member of this organization"}
	}
	return s.repo.ListOrgRoles(ctx, organizationID)
}

func (s *Service) requireAnotherTenantOwner(ctx context.Context, tenantID string) error {
	n, err := s.repo.CountTenantOwners(ctx, tenantID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return repository.ErrLastOwner
	}
	return nil
}

func (s *Service) requireAnotherOrgOwner(ctx context.Context, organizationID string) error {
	n, err := s.repo.CountOrgOwners(ctx, organizationID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return repository.ErrLastOwner
	}
	return nil
}

func isTenantOwner(roles []repository.TenantRole, tenantID string) bool {
	for _, r := range roles {
		if r.TenantID == tenantID && r.Role == repository.TenantRoleOwner {
			return true
		}
	}
	return false
}

func isOrgOwner(roles []repository.OrgRole, organizationID string) bool {
	for _, r := range roles {
		if r.OrganizationID == organizationID && r.Role == repository.OrgRoleOwner {
			return true
		}
	}
	return false
}
