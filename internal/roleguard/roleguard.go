// Package roleguard contiene las decisiones de autorización puras para
// mutaciones de roles de tenant y organización. Sin side effects ni
// persistencia: opera sobre snapshots de roles provistos por el caller y
// retorna resultados estructurados (nunca panics, nunca errores), así los
// callers mapean directo a status codes de transporte.
package roleguard

import (
	"net/http"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

// Decision es el resultado de una validación de rol.
type Decision struct {
	OK      bool   `json:"ok"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"error,omitempty"`
}

func allow() Decision {
	return Decision{OK: true}
}

func deny(status int, msg string) Decision {
	return Decision{OK: false, Status: status, Message: msg}
}

// ─── Ranking ───

// TenantRoleRank retorna el rango de un rol de tenant: owner=3, admin=2,
// member=1; desconocido=0.
func TenantRoleRank(r repository.TenantRoleName) int {
	switch r {
	case repository.TenantRoleOwner:
		return 3
	case repository.TenantRoleAdmin:
		return 2
	case repository.TenantRoleMember:
		return 1
	default:
		return 0
	}
}

// OrgRoleRank retorna el rango de un rol de organización: owner=4, admin=3,
// member=2, viewer=1; desconocido=0.
func OrgRoleRank(r repository.OrgRoleName) int {
	switch r {
	case repository.OrgRoleOwner:
		return 4
	case repository.OrgRoleAdmin:
		return 3
	case repository.OrgRoleMember:
		return 2
	case repository.OrgRoleViewer:
		return 1
	default:
		return 0
	}
}

// TenantRank calcula el rango máximo que la lista de roles confiere dentro
// del tenant dado (0 si ninguno aplica).
func TenantRank(roles []repository.TenantRole, tenantID string) int {
	max := 0
	for _, r := range roles {
		if r.TenantID != tenantID {
			continue
		}
		if rank := TenantRoleRank(r.Role); rank > max {
			max = rank
		}
	}
	return max
}

// OrgRank es el análogo de TenantRank para organizaciones.
func OrgRank(roles []repository.OrgRole, organizationID string) int {
	max := 0
	for _, r := range roles {
		if r.OrganizationID != organizationID {
			continue
		}
		if rank := OrgRoleRank(r.Role); rank > max {
			max = rank
		}
	}
	return max
}

// ─── Validaciones de tenant ───

// TenantChange describe un intento de cambio de rol dentro de un tenant.
type TenantChange struct {
	ActorID     string
	TargetID    string
	TenantID    string
	ActorRoles  []repository.TenantRole
	TargetRoles []repository.TenantRole
	DesiredRole repository.TenantRoleName
}

// TenantRemoval describe un intento de remoción de rol dentro de un tenant.
type TenantRemoval struct {
	ActorID     string
	TargetID    string
	TenantID    string
	ActorRoles  []repository.TenantRole
	TargetRoles []repository.TenantRole
}

// ValidateTenantRoleChange valida un cambio de rol de tenant:
//  1. auto-modificación siempre rechazada (400);
//  2. el rol deseado no puede superar el rango del actor (403);
//  3. el rango actual del target no puede superar el del actor (403).
func ValidateTenantRoleChange(c TenantChange) Decision {
	if c.ActorID == c.TargetID {
		return deny(http.StatusBadRequest, "cannot change your own role")
	}
	desired := TenantRoleRank(c.DesiredRole)
	if desired == 0 {
		return deny(http.StatusBadRequest, "unknown role")
	}
	actor := TenantRank(c.ActorRoles, c.TenantID)
	if desired > actor {
		return deny(http.StatusForbidden, "cannot grant a role above your own")
	}
	if TenantRank(c.TargetRoles, c.TenantID) > actor {
		return deny(http.StatusForbidden, "cannot modify a more privileged user")
	}
	return allow()
}

// ValidateTenantRoleRemoval valida una remoción de rol de tenant: mismo
// auto-chequeo y techo sobre el target que el cambio, sin rol deseado.
func ValidateTenantRoleRemoval(c TenantRemoval) Decision {
	if c.ActorID == c.TargetID {
		return deny(http.StatusBadRequest, "cannot remove your own role")
	}
	actor := TenantRank(c.ActorRoles, c.TenantID)
	if TenantRank(c.TargetRoles, c.TenantID) > actor {
		return deny(http.StatusForbidden, "cannot remove a more privileged user")
	}
	return allow()
}

// ─── Validaciones de organización ───

// OrgChange describe un intento de cambio de rol de organización.
type OrgChange struct {
	ActorID        string
	TargetID       string
	OrganizationID string
	ActorRoles     []repository.OrgRole
	TargetRoles    []repository.OrgRole
	DesiredRole    repository.OrgRoleName
}

// OrgRemoval describe un intento de remoción de rol de organización.
type OrgRemoval struct {
	ActorID        string
	TargetID       string
	OrganizationID string
	ActorRoles     []repository.OrgRole
	TargetRoles    []repository.OrgRole
}

// ValidateOrgRoleChange es el análogo de ValidateTenantRoleChange sobre
// rangos de organización.
func ValidateOrgRoleChange(c OrgChange) Decision {
	if c.ActorID == c.TargetID {
		return deny(http.StatusBadRequest, "cannot change your own role")
	}
	desired := OrgRoleRank(c.DesiredRole)
	if desired == 0 {
		return deny(http.StatusBadRequest, "unknown role")
	}
	actor := OrgRank(c.ActorRoles, c.OrganizationID)
	if desired > actor {
		return deny(http.StatusForbidden, "cannot grant a role above your own")
	}
	if OrgRank(c.TargetRoles, c.OrganizationID) > actor {
		return deny(http.StatusForbidden, "cannot modify a more privileged user")
	}
	return allow()
}

// ValidateOrgRoleRemoval es el análogo de ValidateTenantRoleRemoval.
func ValidateOrgRoleRemoval(c OrgRemoval) Decision {
	if c.ActorID == c.TargetID {
		return deny(http.StatusBadRequest, "cannot remove your own role")
	}
	actor := OrgRank(c.ActorRoles, c.OrganizationID)
	if OrgRank(c.TargetRoles, c.OrganizationID) > actor {
		return deny(http.StatusForbidden, "cannot remove a more privileged user")
	}
	return allow()
}
