package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/http/dto"
	"github.com/dropDatabas3/prism/internal/http/helpers"
	"github.com/dropDatabas3/prism/internal/http/middlewares"
	"github.com/dropDatabas3/prism/internal/metrics"
	"github.com/dropDatabas3/prism/internal/roles"
)

// RolesHandler expone las mutaciones de roles de tenant y organización.
// El actor es siempre el usuario autenticado; el target viene del request.
type RolesHandler struct {
	Svc *roles.Service
}

func (h *RolesHandler) Register(r chi.Router) {
	r.Get("/v1/tenants/{tenantID}/roles", h.listTenantRoles)
	r.Put("/v1/tenants/{tenantID}/roles", h.changeTenantRole)
	r.Delete("/v1/tenants/{tenantID}/roles/{userID}", h.removeTenantRole)

	r.Get("/v1/organizations/{orgID}/roles", h.listOrgRoles)
	r.Put("/v1/organizations/{orgID}/roles", h.changeOrgRole)
	r.Delete("/v1/organizations/{orgID}/roles/{userID}", h.removeOrgRole)
}

func countRoleOp(scope string, err error) {
	result := "ok"
	if err != nil {
		result = "denied"
	}
	metrics.RoleChangesTotal.WithLabelValues(scope, result).Inc()
}

func (h *RolesHandler) listTenantRoles(w http.ResponseWriter, r *http.Request) {
	actorID := middlewares.GetUserID(r.Context())
	list, err := h.Svc.ListTenantRoles(r.Context(), actorID, chi.URLParam(r, "tenantID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromTenantRoles(list))
}

func (h *RolesHandler) changeTenantRole(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}
	actorID := middlewares.GetUserID(r.Context())
	err := h.Svc.ChangeTenantRole(r.Context(), actorID, chi.URLParam(r, "tenantID"),
		req.UserID, repository.TenantRoleName(req.Role))
	countRoleOp("tenant", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RolesHandler) removeTenantRole(w http.ResponseWriter, r *http.Request) {
	actorID := middlewares.GetUserID(r.Context())
	err := h.Svc.RemoveTenantRole(r.Context(), actorID,
		chi.URLParam(r, "tenantID"), chi.URLParam(r, "userID"))
	countRoleOp("tenant", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RolesHandler) listOrgRoles(w http.ResponseWriter, r *http.Request) {
	actorID := middlewares.GetUserID(r.Context())
	list, err := h.Svc.ListOrgRoles(r.Context(), actorID, chi.URLParam(r, "orgID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromOrgRoles(list))
}

func (h *RolesHandler) changeOrgRole(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}
	actorID := middlewares.GetUserID(r.Context())
	err := h.Svc.ChangeOrgRole(r.Context(), actorID, chi.URLParam(r, "orgID"),
		req.UserID, repository.OrgRoleName(req.Role))
	countRoleOp("organization", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RolesHandler) removeOrgRole(w http.ResponseWriter, r *http.Request) {
	actorID := middlewares.GetUserID(r.Context())
	err := h.Svc.RemoveOrgRole(r.Context(), actorID,
		chi.URLParam(r, "orgID"), chi.URLParam(r, "userID"))
	countRoleOp("organization", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
