package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

type roleRepo struct{ pool *pgxpool.Pool }

func (r *roleRepo) ListTenantRoles(ctx context.Context, tenantID string) ([]repository.TenantRole, error) {
	const query = `SELECT tenant_id, user_id, role FROM tenant_role WHERE tenant_id = $1 ORDER BY user_id`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("pg: list tenant roles: %w", err)
	}
	defer rows.Close()

	var out []repository.TenantRole
	for rows.Next() {
		var tr repository.TenantRole
		var role string
		if err := rows.Scan(&tr.TenantID, &tr.UserID, &role); err != nil {
			return nil, fmt.Errorf("pg: scan tenant role: %w", err)
		}
		tr.Role = repository.TenantRoleName(role)
		out = append(out, tr)
	}
	return out, rows.Err()
}

func (r *roleRepo) ListUserTenantRoles(ctx context.Context, userID string) ([]repository.TenantRole, error) {
	const query = `SELECT tenant_id, user_id, role FROM tenant_role WHERE user_id = $1 ORDER BY tenant_id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pg: list user tenant roles: %w", err)
	}
	defer rows.Close()

	var out []repository.TenantRole
	for rows.Next() {
		var tr repository.TenantRole
		var role string
		if err := rows.Scan(&tr.TenantID, &tr.UserID, &role); err != nil {
			return nil, fmt.Errorf("pg: scan tenant role: %w", err)
		}
		tr.Role = repository.TenantRoleName(role)
		out = append(out, tr)
	}
	return out, rows.Err()
}

func (r *roleRepo) UpsertTenantRole(ctx context.Context, role repository.TenantRole) error {
	const query = `
		INSERT INTO tenant_role (tenant_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.pool.Exec(ctx, query, role.TenantID, role.UserID, string(role.Role))
	if err != nil {
		return fmt.Errorf("pg: upsert tenant role: %w", err)
	}
	return nil
}

func (r *roleRepo) RemoveTenantRole(ctx context.Context, tenantID, userID string) error {
	const query = `DELETE FROM tenant_role WHERE tenant_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, tenantID, userID)
	if err != nil {
		return fmt.Errorf("pg: remove tenant role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *roleRepo) CountTenantOwners(ctx context.Context, tenantID string) (int, error) {
	const query = `SELECT COUNT(*) FROM tenant_role WHERE tenant_id = $1 AND role = 'owner'`
	var n int
	if err := r.pool.QueryRow(ctx, query, tenantID).Scan(&n); err != nil {
		return 0, fmt.Errorf("pg: count tenant owners: %w", err)
	}
	return n, nil
}

func (r *roleRepo) ListOrgRoles(ctx context.Context, organizationID string) ([]repository.OrgRole, error) {
	const query = `SELECT organization_id, user_id, role FROM org_role WHERE organization_id = $1 ORDER BY user_id`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("pg: list org roles: %w", err)
	}
	defer rows.Close()

	var out []repository.OrgRole
	for rows.Next() {
		var or repository.OrgRole
		var role string
		if err := rows.Scan(&or.OrganizationID, &or.UserID, &role); err != nil {
			return nil, fmt.Errorf("pg: scan org role: %w", err)
		}
		or.Role = repository.OrgRoleName(role)
		out = append(out, or)
	}
	return out, rows.Err()
}

func (r *roleRepo) ListUserOrgRoles(ctx context.Context, userID string) ([]repository.OrgRole, error) {
	const query = `SELECT organization_id, user_id, role FROM org_role WHERE user_id = $1 ORDER BY organization_id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pg: list user org roles: %w", err)
	}
	defer rows.Close()

	var out []repository.OrgRole
	for rows.Next() {
		var or repository.OrgRole
		var role string
		if err := rows.Scan(&or.OrganizationID, &or.UserID, &role); err != nil {
			return nil, fmt.Errorf("pg: scan org role: %w", err)
		}
		or.Role = repository.OrgRoleName(role)
		out = append(out, or)
	}
	return out, rows.Err()
}

func (r *roleRepo) UpsertOrgRole(ctx context.Context, role repository.OrgRole) error {
	const query = `
		INSERT INTO org_role (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.pool.Exec(ctx, query, role.OrganizationID, role.UserID, string(role.Role))
	if err != nil {
		return fmt.Errorf("pg: upsert org role: %w", err)
	}
	return nil
}

func (r *roleRepo) RemoveOrgRole(ctx context.Context, organizationID, userID string) error {
	const query = `DELETE FROM org_role WHERE organization_id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, organizationID, userID)
	if err != nil {
		return fmt.Errorf("pg: remove org role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *roleRepo) CountOrgOwners(ctx context.Context, organizationID string) (int, error) {
	const query = `SELECT COUNT(*) FROM org_role WHERE organization_id = $1 AND role = 'owner'`
	var n int
	if err := r.pool.QueryRow(ctx, query, organizationID).Scan(&n); err != nil {
		return 0, fmt.Errorf("pg: count org owners: %w", err)
	}
	return n, nil
}
