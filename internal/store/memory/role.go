package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

type roleRepo struct {
	mu     sync.RWMutex
	tenant map[string]map[string]repository.TenantRoleName // tenantID -> userID -> role
	org    map[string]map[string]repository.OrgRoleName    // orgID -> userID -> role
}

func newRoleRepo() *roleRepo {
	return &roleRepo{
		tenant: make(map[string]map[string]repository.TenantRoleName),
		org:    make(map[string]map[string]repository.OrgRoleName),
	}
}

func (r *roleRepo) ListTenantRoles(_ context.Context, tenantID string) ([]repository.TenantRole, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.TenantRole
	for userID, role := range r.tenant[tenantID] {
		out = append(out, repository.TenantRole{TenantID: tenantID, UserID: userID, Role: role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *roleRepo) ListUserTenantRoles(_ context.Context, userID string) ([]repository.TenantRole, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.TenantRole
	for tenantID, users := range r.tenant {
		if role, ok := users[userID]; ok {
			out = append(out, repository.TenantRole{TenantID: tenantID, UserID: userID, Role: role})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func (r *roleRepo) UpsertTenantRole(_ context.Context, role repository.TenantRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, ok := r.tenant[role.TenantID]
	if !ok {
		users = make(map[string]repository.TenantRoleName)
		r.tenant[role.TenantID] = users
	}
	users[role.UserID] = role.Role
	return nil
}

func (r *roleRepo) RemoveTenantRole(_ context.Context, tenantID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := r.tenant[tenantID]
	if _, ok := users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(users, userID)
	return nil
}

func (r *roleRepo) CountTenantOwners(_ context.Context, tenantID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, role := range r.tenant[tenantID] {
		if role == repository.TenantRoleOwner {
			n++
		}
	}
	return n, nil
}

func (r *roleRepo) ListOrgRoles(_ context.Context, organizationID string) ([]repository.OrgRole, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.OrgRole
	for userID, role := range r.org[organizationID] {
		out = append(out, repository.OrgRole{OrganizationID: organizationID, UserID: userID, Role: role})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *roleRepo) ListUserOrgRoles(_ context.Context, userID string) ([]repository.OrgRole, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []repository.OrgRole
	for orgID, users := range r.org {
		if role, ok := users[userID]; ok {
			out = append(out, repository.OrgRole{OrganizationID: orgID, UserID: userID, Role: role})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrganizationID < out[j].OrganizationID })
	return out, nil
}

func (r *roleRepo) UpsertOrgRole(_ context.Context, role repository.OrgRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, ok := r.org[role.OrganizationID]
	if !ok {
		users = make(map[string]repository.OrgRoleName)
		r.org[role.OrganizationID] = users
	}
	users[role.UserID] = role.Role
	return nil
}

func (r *roleRepo) RemoveOrgRole(_ context.Context, organizationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := r.org[organizationID]
	if _, ok := users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(users, userID)
	return nil
}

func (r *roleRepo) CountOrgOwners(_ context.Context, organizationID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, role := range r.org[organizationID] {
		if role == repository.OrgRoleOwner {
			n++
		}
	}
	return n, nil
}
