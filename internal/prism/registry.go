package prism

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

// Registry almacena y resuelve definiciones de contenido. Las definiciones
// son ContentRecords de tipo repository.TypeDefinition, así que el registry
// opera sobre el mismo ContentRepository que el resto del contenido.
type Registry struct {
	content repository.ContentRepository
}

// NewRegistry crea un registry sobre el repositorio de contenido dado.
func NewRegistry(content repository.ContentRepository) *Registry {
	return &Registry{content: content}
}

// platformScope indica si un tenant id pide el scope de plataforma.
// Un tenant id vacío se trata como plataforma: las lecturas tenant-scoped
// siempre llegan acá con el tenant real (invariante de propagación).
func platformScope(tenantID string) bool {
	return tenantID == "" || tenantID == repository.TenantPlatform
}

// Find resuelve la definición de un tipo de contenido.
//
// Con un tenant real: primero la definición custom del tenant; si no existe,
// cae a la de plataforma ("squash"). Con el sentinela de plataforma (o vacío)
// SOLO se buscan definiciones de plataforma: una definición tenant-scoped
// jamás se resuelve vía comodín. Los dos scopes son caminos separados a
// propósito; no unificar.
func (r *Registry) Find(ctx context.Context, block, tenantID string) (*repository.ContentDefinition, error) {
	if block == "" {
		return nil, fmt.Errorf("%w: block type is required", repository.ErrInvalidInput)
	}
	if platformScope(tenantID) {
		return r.findInScope(ctx, block, repository.TenantPlatform)
	}

	def, err := r.findInScope(ctx, block, tenantID)
	if err == nil {
		return def, nil
	}
	if !errors.Is(err, repository.ErrDefinitionNotFound) {
		return nil, err
	}
	return r.findInScope(ctx, block, repository.TenantPlatform)
}

// Create registra una definición nueva en el scope del tenant dado (o de
// plataforma si tenantID es vacío/sentinela). Retorna ErrDuplicateDefinition
// si el block ya existe en ese scope exacto.
func (r *Registry) Create(ctx context.Context, def *repository.ContentDefinition, tenantID string) (*repository.ContentDefinition, error) {
	if def == nil || def.DataModel.Block == "" {
		return nil, fmt.Errorf("%w: definition block is required", repository.ErrInvalidInput)
	}
	if def.DataModel.JSONSchema == nil {
		return nil, fmt.Errorf("%w: definition %q has no json schema", repository.ErrInvalidInput, def.DataModel.Block)
	}

	scope := tenantID
	if platformScope(scope) {
		scope = repository.TenantPlatform
	}

	// Chequeo de duplicado en el scope exacto: un tenant puede "sombrear" un
	// tipo de plataforma, pero no duplicar uno propio.
	if _, err := r.findInScope(ctx, def.DataModel.Block, scope); err == nil {
		return nil, repository.ErrDuplicateDefinition
	} else if !errors.Is(err, repository.ErrDefinitionNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &repository.ContentRecord{
		ID:        uuid.NewString(),
		Type:      repository.TypeDefinition,
		TenantID:  scope,
		Content:   definitionContent(def),
		Indexer:   map[string]any{"block": def.DataModel.Block},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.content.Insert(ctx, rec); err != nil {
		if repository.IsConflict(err) {
			return nil, repository.ErrDuplicateDefinition
		}
		return nil, err
	}
	return recordToDefinition(rec)
}

func (r *Registry) findInScope(ctx context.Context, block, scope string) (*repository.ContentDefinition, error) {
	page, err := r.content.Query(ctx, repository.QueryParams{
		ContentType: repository.TypeDefinition,
		TenantID:    scope,
		Where:       repository.Where{Indexer: map[string]any{"block": block}},
		Limit:       1,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, repository.ErrDefinitionNotFound
	}
	return recordToDefinition(&page.Items[0])
}

// definitionContent serializa la parte declarativa de la definición al
// payload del registro (id/tenant/timestamps viven en las columnas).
func definitionContent(def *repository.ContentDefinition) map[string]any {
	m := map[string]any{
		"name":       def.Name,
		"data_model": toJSONMap(def.DataModel),
	}
	if def.Description != "" {
		m["description"] = def.Description
	}
	if def.UIConfig != nil {
		m["ui_config"] = def.UIConfig
	}
	if def.Access != nil {
		m["access"] = def.Access
	}
	return m
}

func recordToDefinition(rec *repository.ContentRecord) (*repository.ContentDefinition, error) {
	raw, err := json.Marshal(rec.Content)
	if err != nil {
		return nil, err
	}
	var def repository.ContentDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("malformed definition record %s: %w", rec.ID, err)
	}
	def.ID = rec.ID
	def.TenantID = rec.TenantID
	def.CreatedAt = rec.CreatedAt
	def.UpdatedAt = rec.UpdatedAt
	return &def, nil
}

func toJSONMap(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}
