package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/prism/internal/accounts"
	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/email"
	"github.com/dropDatabas3/prism/internal/http/dto"
	"github.com/dropDatabas3/prism/internal/http/helpers"
	"github.com/dropDatabas3/prism/internal/http/middlewares"
	"github.com/dropDatabas3/prism/internal/metrics"
)

// FlowsHandler expone invitaciones y recuperación de password.
//
// forgot responde 202 siempre, exista o no la cuenta; accept/reset colapsan
// todo token rechazado en una misma respuesta. Nada acá debe servir para
// enumerar cuentas.
type FlowsHandler struct {
	Accounts *accounts.Service
	Mail     *email.Service

	// DebugEchoLinks expone los links en headers X-Debug-*. Solo dev; la
	// config lo fuerza a false en prod.
	DebugEchoLinks bool
}

// RegisterPublic registra las rutas sin autenticación.
func (h *FlowsHandler) RegisterPublic(r chi.Router) {
	r.Post("/v1/invites/accept", h.acceptInvite)
	r.Post("/v1/auth/forgot", h.forgot)
	r.Post("/v1/auth/reset", h.reset)
}

// RegisterPrivate registra las rutas que requieren autenticación.
func (h *FlowsHandler) RegisterPrivate(r chi.Router) {
	r.Post("/v1/invites", h.invite)
}

func (h *FlowsHandler) invite(w http.ResponseWriter, r *http.Request) {
	var req dto.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}
	if req.TenantID == "" {
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("tenant_id is required"))
		return
	}
	role := repository.TenantRoleName(req.Role)
	if req.Role == "" {
		role = repository.TenantRoleMember
	}
	tenantName := req.TenantName
	if tenantName == "" {
		tenantName = req.TenantID
	}

	actorID := middlewares.GetUserID(r.Context())
	raw, err := h.Accounts.Invite(r.Context(), actorID, req.Email, req.TenantID, tenantName, role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	metrics.TokensIssuedTotal.WithLabelValues(string(repository.TokenPurposeInviteActivation)).Inc()

	if h.DebugEchoLinks && raw != "" {
		w.Header().Set("X-Debug-Invite-Link", h.Mail.InviteLink(raw))
	}
	helpers.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "invited"})
}

func (h *FlowsHandler) acceptInvite(w http.ResponseWriter, r *http.Request) {
	var req dto.AcceptInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}
	err := h.Accounts.AcceptInvite(r.Context(), req.Token, req.Password)
	h.countConsume(err)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "activated"})
}

func (h *FlowsHandler) forgot(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}
	raw, err := h.Accounts.Forgot(r.Context(), req.Email)
	if err != nil {
		// Error real de infraestructura; no filtra existencia de la cuenta.
		writeDomainError(w, err)
		return
	}
	if raw != "" {
		metrics.TokensIssuedTotal.WithLabelValues(string(repository.TokenPurposePasswordReset)).Inc()
	}

	if h.DebugEchoLinks && raw != "" {
		w.Header().Set("X-Debug-Reset-Link", h.Mail.ResetLink(raw))
	}
	// Misma respuesta exista o no la cuenta.
	helpers.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *FlowsHandler) reset(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}
	err := h.Accounts.Reset(r.Context(), req.Token, req.NewPassword)
	h.countConsume(err)
	if err != nil {
		h.writeFlowError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *FlowsHandler) countConsume(err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrTokenExpired):
		result = "expired"
	case errors.Is(err, repository.ErrTokenConsumed):
		result = "consumed"
	case errors.Is(err, repository.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	metrics.TokensConsumedTotal.WithLabelValues(result).Inc()
}

// writeFlowError colapsa todos los rechazos de token en una respuesta única.
func (h *FlowsHandler) writeFlowError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, repository.ErrTokenExpired) ||
		errors.Is(err, repository.ErrTokenConsumed) {
		writeInvalidToken(w)
		return
	}
	writeDomainError(w, err)
}
