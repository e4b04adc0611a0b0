package roleguard

import (
	"net/http"
	"testing"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

func tenantRoles(tenantID string, role repository.TenantRoleName) []repository.TenantRole {
	return []repository.TenantRole{{TenantID: tenantID, UserID: "x", Role: role}}
}

func orgRoles(orgID string, role repository.OrgRoleName) []repository.OrgRole {
	return []repository.OrgRole{{OrganizationID: orgID, UserID: "x", Role: role}}
}

func TestTenantRoleRank(t *testing.T) {
	cases := []struct {
		role repository.TenantRoleName
		want int
	}{
		{repository.TenantRoleOwner, 3},
		{repository.TenantRoleAdmin, 2},
		{repository.TenantRoleMember, 1},
		{repository.TenantRoleName("ghost"), 0},
		{repository.TenantRoleName(""), 0},
	}
	for _, c := range cases {
		if got := TenantRoleRank(c.role); got != c.want {
			t.Fatalf("rank(%q) = %d, want %d", c.role, got, c.want)
		}
	}
}

func TestOrgRoleRank(t *testing.T) {
	cases := []struct {
		role repository.OrgRoleName
		want int
	}{
		{repository.OrgRoleOwner, 4},
		{repository.OrgRoleAdmin, 3},
		{repository.OrgRoleMember, 2},
		{repository.OrgRoleViewer, 1},
		{repository.OrgRoleName("ghost"), 0},
	}
	for _, c := range cases {
		if got := OrgRoleRank(c.role); got != c.want {
			t.Fatalf("rank(%q) = %d, want %d", c.role, got, c.want)
		}
	}
}

func TestTenantRank_IgnoresOtherTenants(t *testing.T) {
	roles := []repository.TenantRole{
		{TenantID: "t1", UserID: "u", Role: repository.TenantRoleMember},
		{TenantID: "t2", UserID: "u", Role: repository.TenantRoleOwner},
	}
	if got := TenantRank(roles, "t1"); got != 1 {
		t.Fatalf("rank in t1 = %d, want 1 (owner role is in t2)", got)
	}
	if got := TenantRank(roles, "t3"); got != 0 {
		t.Fatalf("rank in t3 = %d, want 0", got)
	}
}

func TestValidateTenantRoleChange(t *testing.T) {
	cases := []struct {
		name       string
		change     TenantChange
		wantOK     bool
		wantStatus int
	}{
		{
			name: "self change rejected",
			change: TenantChange{
				ActorID: "u1", TargetID: "u1", TenantID: "t1",
				ActorRoles:  tenantRoles("t1", repository.TenantRoleOwner),
				DesiredRole: repository.TenantRoleAdmin,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown desired role rejected",
			change: TenantChange{
				ActorID: "u1", TargetID: "u2", TenantID: "t1",
				ActorRoles:  tenantRoles("t1", repository.TenantRoleOwner),
				DesiredRole: repository.TenantRoleName("emperor"),
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "admin cannot grant owner",
			change: TenantChange{
				ActorID: "u1", TargetID: "u2", TenantID: "t1",
				ActorRoles:  tenantRoles("t1", repository.TenantRoleAdmin),
				DesiredRole: repository.TenantRoleOwner,
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "admin cannot touch an owner",
			change: TenantChange{
				ActorID: "u1", TargetID: "u2", TenantID: "t1",
				ActorRoles:  tenantRoles("t1", repository.TenantRoleAdmin),
				TargetRoles: tenantRoles("t1", repository.TenantRoleOwner),
				DesiredRole: repository.TenantRoleMember,
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "owner promotes member to admin",
			change: TenantChange{
				ActorID: "u1", TargetID: "u2", TenantID: "t1",
				ActorRoles:  tenantRoles("t1", repository.TenantRoleOwner),
				TargetRoles: tenantRoles("t1", repository.TenantRoleMember),
				DesiredRole: repository.TenantRoleAdmin,
			},
			wantOK: true,
		},
		{
			name: "admin can grant up to their own rank",
			change: TenantChange{
				ActorID: "u1", TargetID: "u2", TenantID: "t1",
				ActorRoles:  tenantRoles("t1", repository.TenantRoleAdmin),
				TargetRoles: tenantRoles("t1", repository.TenantRoleMember),
				DesiredRole: repository.TenantRoleAdmin,
			},
			wantOK: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dec := ValidateTenantRoleChange(c.change)
			if dec.OK != c.wantOK {
				t.Fatalf("OK = %v, want %v (%s)", dec.OK, c.wantOK, dec.Message)
			}
			if !c.wantOK && dec.Status != c.wantStatus {
				t.Fatalf("status = %d, want %d", dec.Status, c.wantStatus)
			}
		})
	}
}

func TestValidateTenantRoleRemoval(t *testing.T) {
	// Auto-remoción.
	dec := ValidateTenantRoleRemoval(TenantRemoval{
		ActorID: "u1", TargetID: "u1", TenantID: "t1",
		ActorRoles: tenantRoles("t1", repository.TenantRoleOwner),
	})
	if dec.OK || dec.Status != http.StatusBadRequest {
		t.Fatalf("self removal: got %+v", dec)
	}

	// Target más privilegiado.
	dec = ValidateTenantRoleRemoval(TenantRemoval{
		ActorID: "u1", TargetID: "u2", TenantID: "t1",
		ActorRoles:  tenantRoles("t1", repository.TenantRoleAdmin),
		TargetRoles: tenantRoles("t1", repository.TenantRoleOwner),
	})
	if dec.OK || dec.Status != http.StatusForbidden {
		t.Fatalf("remove owner as admin: got %+v", dec)
	}

	// Caso permitido.
	dec = ValidateTenantRoleRemoval(TenantRemoval{
		ActorID: "u1", TargetID: "u2", TenantID: "t1",
		ActorRoles:  tenantRoles("t1", repository.TenantRoleOwner),
		TargetRoles: tenantRoles("t1", repository.TenantRoleMember),
	})
	if !dec.OK {
		t.Fatalf("owner removing member should pass: %+v", dec)
	}
}

func TestValidateOrgRoleChange(t *testing.T) {
	// Viewer no puede otorgar nada por encima de su rango.
	dec := ValidateOrgRoleChange(OrgChange{
		ActorID: "u1", TargetID: "u2", OrganizationID: "o1",
		ActorRoles:  orgRoles("o1", repository.OrgRoleViewer),
		DesiredRole: repository.OrgRoleMember,
	})
	if dec.OK || dec.Status != http.StatusForbidden {
		t.Fatalf("viewer granting member: got %+v", dec)
	}

	// Admin modifica a un member.
	dec = ValidateOrgRoleChange(OrgChange{
		ActorID: "u1", TargetID: "u2", OrganizationID: "o1",
		ActorRoles:  orgRoles("o1", repository.OrgRoleAdmin),
		TargetRoles: orgRoles("o1", repository.OrgRoleMember),
		DesiredRole: repository.OrgRoleViewer,
	})
	if !dec.OK {
		t.Fatalf("admin demoting member to viewer should pass: %+v", dec)
	}

	// Admin no toca a un owner.
	dec = ValidateOrgRoleChange(OrgChange{
		ActorID: "u1", TargetID: "u2", OrganizationID: "o1",
		ActorRoles:  orgRoles("o1", repository.OrgRoleAdmin),
		TargetRoles: orgRoles("o1", repository.OrgRoleOwner),
		DesiredRole: repository.OrgRoleMember,
	})
	if dec.OK || dec.Status != http.StatusForbidden {
		t.Fatalf("admin demoting owner: got %+v", dec)
	}
}

func TestValidateOrgRoleRemoval_SelfChange(t *testing.T) {
	dec := ValidateOrgRoleRemoval(OrgRemoval{
		ActorID: "u1", TargetID: "u1", OrganizationID: "o1",
		ActorRoles: orgRoles("o1", repository.OrgRoleOwner),
	})
	if dec.OK || dec.Status != http.StatusBadRequest {
		t.Fatalf("self removal: got %+v", dec)
	}
}
