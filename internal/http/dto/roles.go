package dto

import "github.com/dropDatabas3/prism/internal/domain/repository"

// ChangeRoleRequest pide asignar un rol a un usuario.
type ChangeRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// TenantRoleResponse es la vista JSON de un rol de tenant.
type TenantRoleResponse struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
}

// OrgRoleResponse es la vista JSON de un rol de organización.
type OrgRoleResponse struct {
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
}

// FromTenantRoles mapea la lista del repositorio.
func FromTenantRoles(roles []repository.TenantRole) []TenantRoleResponse {
	out := make([]TenantRoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, TenantRoleResponse{TenantID: r.TenantID, UserID: r.UserID, Role: string(r.Role)})
	}
	return out
}

// FromOrgRoles mapea la lista del repositorio.
func FromOrgRoles(roles []repository.OrgRole) []OrgRoleResponse {
	out := make([]OrgRoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, OrgRoleResponse{OrganizationID: r.OrganizationID, UserID: r.UserID, Role: string(r.Role)})
	}
	return out
}
