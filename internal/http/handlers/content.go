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
	"github.com/dropDatabas3/prism/internal/prism"
)

// ContentHandler expone el engine de contenido dinámico: definiciones y
// CRUD/query de registros. El tenant sale del access token (claim tid),
// nunca del body.
type ContentHandler struct {
	Svc *prism.Service
}

func (h *ContentHandler) Register(r chi.Router) {
	r.Post("/v1/definitions", h.createDefinition)
	r.Get("/v1/definitions/{block}", h.findDefinition)

	r.Post("/v1/content/{block}", h.create)
	r.Post("/v1/content/{block}/query", h.query)
	r.Get("/v1/content/{block}/{id}", h.get)
	r.Patch("/v1/content/{block}/{id}", h.update)
	r.Delete("/v1/content/{block}/{id}", h.remove)
}

// tenantFrom resuelve el tenant del request autenticado.
func tenantFrom(r *http.Request) string {
	return middlewares.GetTenantID(r.Context())
}

func countOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
		if prism.IsValidationError(err) {
			metrics.ValidationFailuresTotal.Inc()
		}
	}
	metrics.ContentOpsTotal.WithLabelValues(op, result).Inc()
}

func (h *ContentHandler) createDefinition(w http.ResponseWriter, r *http.Request) {
	var def repository.ContentDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}
	res, err := h.Svc.CreateDefinition(r.Context(), &def, tenantFrom(r))
	countOp("create_definition", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.FromResult(res))
}

func (h *ContentHandler) findDefinition(w http.ResponseWriter, r *http.Request) {
	block := chi.URLParam(r, "block")
	def, err := h.Svc.FindDefinition(r.Context(), block, tenantFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, def)
}

func (h *ContentHandler) create(w http.ResponseWriter, r *http.Request) {
	block := chi.URLParam(r, "block")
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}
	res, err := h.Svc.Create(r.Context(), block, data, tenantFrom(r))
	countOp("create", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.FromResult(res))
}

func (h *ContentHandler) get(w http.ResponseWriter, r *http.Request) {
	block := chi.URLParam(r, "block")
	id := chi.URLParam(r, "id")
	res, err := h.Svc.Get(r.Context(), block, id, tenantFrom(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromResult(res))
}

func (h *ContentHandler) query(w http.ResponseWriter, r *http.Request) {
	block := chi.URLParam(r, "block")
	var q dto.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}
	res, err := h.Svc.Query(r.Context(), q.ToParams(block, tenantFrom(r)))
	countOp("query", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromResult(res))
}

func (h *ContentHandler) update(w http.ResponseWriter, r *http.Request) {
	block := chi.URLParam(r, "block")
	id := chi.URLParam(r, "id")
	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		helpers.WriteError(w, helpers.ErrInvalidJSON)
		return
	}
	res, err := h.Svc.Update(r.Context(), block, id, data, tenantFrom(r))
	countOp("update", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.FromResult(res))
}

func (h *ContentHandler) remove(w http.ResponseWriter, r *http.Request) {
	block := chi.URLParam(r, "block")
	id := chi.URLParam(r, "id")
	deleted, err := h.Svc.Delete(r.Context(), block, id, tenantFrom(r))
	countOp("delete", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !deleted {
		helpers.WriteError(w, helpers.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
