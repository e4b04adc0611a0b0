package prism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/observability/logger"
)

// Service es el engine de contenido dinámico: CRUD y query tenant-scoped
// sobre la tabla polimórfica, mediando lookup de definiciones y validación
// de schema en cada escritura. Ninguna escritura parcial: si la validación
// falla, no se persiste nada.
type Service struct {
	content   repository.ContentRepository
	registry  *Registry
	validator SchemaValidator
}

// Result es el shape de respuesta de las operaciones del engine.
type Result struct {
	Items []repository.ContentRecord `json:"items"`
	Total int                        `json:"total"`
}

// New crea el engine sobre un repositorio de contenido y un validador.
func New(content repository.ContentRepository, validator SchemaValidator) *Service {
	return &Service{
		content:   content,
		registry:  NewRegistry(content),
		validator: validator,
	}
}

// Registry expone el registry de definiciones del engine.
func (s *Service) Registry() *Registry {
	return s.registry
}

// CreateDefinition registra una definición de contenido para el tenant (o de
// plataforma si tenantID es vacío). Ver Registry.Create para la regla de
// duplicados.
func (s *Service) CreateDefinition(ctx context.Context, def *repository.ContentDefinition, tenantID string) (*Result, error) {
	created, err := s.registry.Create(ctx, def, tenantID)
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("content definition created",
		logger.Block(created.DataModel.Block), logger.TenantID(created.TenantID))

	rec, err := s.content.GetByID(ctx, repository.TypeDefinition, created.TenantID, created.ID)
	if err != nil {
		return nil, err
	}
	return &Result{Items: []repository.ContentRecord{*rec}, Total: 1}, nil
}

// FindDefinition resuelve la definición de un tipo, prefiriendo la del tenant
// sobre la de plataforma. Retorna ErrDefinitionNotFound si no hay ninguna.
func (s *Service) FindDefinition(ctx context.Context, block, tenantID string) (*repository.ContentDefinition, error) {
	return s.registry.Find(ctx, block, tenantID)
}

// Create valida data contra el schema del tipo y persiste un registro nuevo.
// Retorna ErrDefinitionNotFound si el tipo no existe (recuperable: el caller
// puede crear la definición y reintentar) o *ValidationError si el payload
// no cumple el schema.
func (s *Service) Create(ctx context.Context, block string, data map[string]any, tenantID string) (*Result, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if err := rejectDefinitionBlock(block); err != nil {
		return nil, err
	}
	def, err := s.registry.Find(ctx, block, tenantID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(block, def.DataModel.JSONSchema, data); err != nil {
		return nil, err
	}
	parentID, err := ResolveParent(def, data)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &repository.ContentRecord{
		ID:        uuid.NewString(),
		Type:      block,
		TenantID:  tenantID,
		ParentID:  parentID,
		Content:   data,
		Indexer:   BuildIndexer(data, def.DataModel.Indexer),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.content.Insert(ctx, rec); err != nil {
		return nil, err
	}
	logger.From(ctx).Debug("content created",
		logger.Block(block), logger.TenantID(tenantID), logger.ContentID(rec.ID))
	return &Result{Items: []repository.ContentRecord{*rec}, Total: 1}, nil
}

// Get busca un registro por (block, id, tenant). Retorna ErrNotFound si no
// existe en ese scope exacto; nunca cruza tenants.
func (s *Service) Get(ctx context.Context, block, id, tenantID string) (*Result, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	rec, err := s.content.GetByID(ctx, block, tenantID, id)
	if err != nil {
		return nil, err
	}
	return &Result{Items: []repository.ContentRecord{*rec}, Total: 1}, nil
}

// Query filtra registros por tipo, tenant y predicado. El tenant id se aplica
// literal: el engine nunca sustituye un comodín cuando el caller pasó un
// tenant real. La definición del tipo debe existir.
func (s *Service) Query(ctx context.Context, p repository.QueryParams) (*Result, error) {
	if err := requireTenant(p.TenantID); err != nil {
		return nil, err
	}
	if p.ContentType == "" {
		return nil, fmt.Errorf("%w: content type is required", repository.ErrInvalidInput)
	}
	// Las definiciones se consultan directo; el resto requiere definición.
	if p.ContentType != repository.TypeDefinition {
		if _, err := s.registry.Find(ctx, p.ContentType, p.TenantID); err != nil {
			return nil, err
		}
	}
	page, err := s.content.Query(ctx, p)
	if err != nil {
		return nil, err
	}
	return &Result{Items: page.Items, Total: page.Total}, nil
}

// Update aplica un merge superficial de data sobre el content existente y
// re-valida el payload resultante contra el schema. Campos anidados
// (objetos/arrays) se reemplazan enteros, no se mergean en profundidad.
// Retorna ErrNotFound si no existe registro para (block, id, tenant).
func (s *Service) Update(ctx context.Context, block, id string, data map[string]any, tenantID string) (*Result, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if err := rejectDefinitionBlock(block); err != nil {
		return nil, err
	}
	def, err := s.registry.Find(ctx, block, tenantID)
	if err != nil {
		return nil, err
	}
	existing, err := s.content.GetByID(ctx, block, tenantID, id)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(existing.Content)+len(data))
	for k, v := range existing.Content {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}

	if err := s.validator.Validate(block, def.DataModel.JSONSchema, merged); err != nil {
		return nil, err
	}
	parentID, err := ResolveParent(def, merged)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Content = merged
	updated.Indexer = BuildIndexer(merged, def.DataModel.Indexer)
	updated.ParentID = parentID
	updated.UpdatedAt = time.Now().UTC()

	if err := s.content.Update(ctx, &updated); err != nil {
		return nil, err
	}
	logger.From(ctx).Debug("content updated",
		logger.Block(block), logger.TenantID(tenantID), logger.ContentID(id))
	return &Result{Items: []repository.ContentRecord{updated}, Total: 1}, nil
}

// Delete elimina un registro por (block, id, tenant). Retorna false si no
// existe.
func (s *Service) Delete(ctx context.Context, block, id, tenantID string) (bool, error) {
	if err := requireTenant(tenantID); err != nil {
		return false, err
	}
	if err := rejectDefinitionBlock(block); err != nil {
		return false, err
	}
	if _, err := s.registry.Find(ctx, block, tenantID); err != nil {
		return false, err
	}
	if err := s.content.Delete(ctx, block, tenantID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	logger.From(ctx).Debug("content deleted",
		logger.Block(block), logger.TenantID(tenantID), logger.ContentID(id))
	return true, nil
}

func requireTenant(tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenant id is required", repository.ErrInvalidInput)
	}
	return nil
}

// rejectDefinitionBlock bloquea el tipo reservado en las operaciones CRUD
// genéricas: escribir definiciones por acá saltearía el chequeo de unicidad
// por (block, tenant) y la convención de indexer del registry.
func rejectDefinitionBlock(block string) error {
	if block == repository.TypeDefinition {
		return fmt.Errorf("%w: %s records are managed through the definition registry", repository.ErrInvalidInput, repository.TypeDefinition)
	}
	return nil
}
