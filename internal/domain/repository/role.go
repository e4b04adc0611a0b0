package repository

import "context"

// TenantRoleName es un rol dentro de un tenant.
type TenantRoleName string

const (
	TenantRoleOwner  TenantRoleName = "owner"
	TenantRoleAdmin  TenantRoleName = "admin"
	TenantRoleMember TenantRoleName = "member"
)

// OrgRoleName es un rol dentro de una organización.
type OrgRoleName string

const (
	OrgRoleOwner  OrgRoleName = "owner"
	OrgRoleAdmin  OrgRoleName = "admin"
	OrgRoleMember OrgRoleName = "member"
	OrgRoleViewer OrgRoleName = "viewer"
)

// TenantRole asigna un rol de tenant a un usuario.
type TenantRole struct {
	TenantID string
	UserID   string
	Role     TenantRoleName
}

// OrgRole asigna un rol de organización a un usuario.
type OrgRole struct {
	OrganizationID string
	UserID         string
	Role           OrgRoleName
}

// RoleRepository define la persistencia de roles de tenant y organización.
// Las reglas de autorización (ranking, last-owner) NO viven acá: son del
// roleguard y del servicio de roles; el repositorio solo lee y escribe.
type RoleRepository interface {
	// ─── Tenant ───

	// ListTenantRoles lista los roles de todos los usuarios de un tenant.
	ListTenantRoles(ctx context.Context, tenantID string) ([]TenantRole, error)

	// ListUserTenantRoles lista los roles de tenant de un usuario.
	ListUserTenantRoles(ctx context.Context, userID string) ([]TenantRole, error)

	// UpsertTenantRole crea o reemplaza el rol de un usuario en un tenant.
	UpsertTenantRole(ctx context.Context, role TenantRole) error

	// RemoveTenantRole elimina el rol. Retorna ErrNotFound si no existe.
	RemoveTenantRole(ctx context.Context, tenantID, userID string) error

	// CountTenantOwners cuenta los owners activos del tenant.
	CountTenantOwners(ctx context.Context, tenantID string) (int, error)

	// ─── Organización ───

	// ListOrgRoles lista los roles de todos los usuarios de una organización.
	ListOrgRoles(ctx context.Context, organizationID string) ([]OrgRole, error)

	// ListUserOrgRoles lista los roles de organización de un usuario.
	ListUserOrgRoles(ctx context.Context, userID string) ([]OrgRole, error)

	// UpsertOrgRole crea o reemplaza el rol de un usuario en una organización.
	UpsertOrgRole(ctx context.Context, role OrgRole) error

	// RemoveOrgRole elimina el rol. Retorna ErrNotFound si no existe.
	RemoveOrgRole(ctx context.Context, organizationID, userID string) error

	// CountOrgOwners cuenta los owners activos de la organización.
	CountOrgOwners(ctx context.Context, organizationID string) (int, error)
}
