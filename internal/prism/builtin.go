package prism

import (
	"context"
	"errors"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/observability/logger"
)

// Builtins retorna las definiciones de plataforma. Son tenant-agnósticas
// (viven bajo el tenant sentinela) y cualquier tenant las resuelve vía la
// regla de squash del registry.
func Builtins() []repository.ContentDefinition {
	return []repository.ContentDefinition{
		{
			Name:        "Dynamic Content",
			Description: "Definición de tipos de contenido dinámico (meta-tipo).",
			DataModel: repository.DataModel{
				Block: repository.TypeDefinition,
				JSONSchema: map[string]any{
					"type":     "object",
					"required": []any{"name", "data_model"},
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"data_model":  map[string]any{"type": "object"},
						"ui_config":   map[string]any{"type": "object"},
						"access":      map[string]any{"type": "object"},
					},
				},
				// El registry indexa definiciones bajo la clave "block".
				Indexer: []string{"block"},
				Parent:  repository.ParentRule{Mode: repository.ParentNone},
			},
		},
		{
			Name:        "Tenant",
			Description: "Cuenta top-level de la plataforma.",
			DataModel: repository.DataModel{
				Block: "Tenant",
				JSONSchema: map[string]any{
					"type":     "object",
					"required": []any{"name"},
					"properties": map[string]any{
						"name":     map[string]any{"type": "string"},
						"slug":     map[string]any{"type": "string"},
						"settings": map[string]any{"type": "object"},
					},
					"additionalProperties": false,
				},
				Indexer: []string{"name", "slug"},
				Parent:  repository.ParentRule{Mode: repository.ParentNone},
			},
		},
		{
			Name:        "User",
			Description: "Usuario de la plataforma; los roles viven aparte.",
			DataModel: repository.DataModel{
				Block: "User",
				JSONSchema: map[string]any{
					"type":     "object",
					"required": []any{"email"},
					"properties": map[string]any{
						"email":         map[string]any{"type": "string"},
						"name":          map[string]any{"type": "string"},
						"status":        map[string]any{"type": "string", "enum": []any{"invited", "active", "disabled"}},
						"password_hash": map[string]any{"type": "string"},
					},
					"additionalProperties": false,
				},
				Indexer: []string{"email", "status"},
				Parent:  repository.ParentRule{Mode: repository.ParentNone},
			},
		},
		{
			Name:        "Assistant",
			Description: "Asistente configurable de un tenant.",
			DataModel: repository.DataModel{
				Block: "Assistant",
				JSONSchema: map[string]any{
					"type":     "object",
					"required": []any{"name"},
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"subDomain":   map[string]any{"type": "string"},
						"personality": map[string]any{"type": "object"},
						"theme":       map[string]any{"type": "object"},
					},
					"additionalProperties": false,
				},
				Indexer: []string{"name", "subDomain"},
				Parent:  repository.ParentRule{Mode: repository.ParentNone},
			},
		},
		{
			Name:        "Guest",
			Description: "Invitado asociado a un asistente.",
			DataModel: repository.DataModel{
				Block: "Guest",
				JSONSchema: map[string]any{
					"type":     "object",
					"required": []any{"name", "phone_number", "passPhrase"},
					"properties": map[string]any{
						"name":         map[string]any{"type": "string"},
						"phone_number": map[string]any{"type": "string"},
						"passPhrase":   map[string]any{"type": "string"},
						"assistant_id": map[string]any{"type": "string"},
					},
					"additionalProperties": false,
				},
				Indexer: []string{"name", "phone_number"},
				Parent:  repository.ParentRule{Mode: repository.ParentByField, Value: "assistant_id"},
			},
		},
		{
			Name:        "Note",
			Description: "Nota libre de un usuario.",
			DataModel: repository.DataModel{
				Block: "Note",
				JSONSchema: map[string]any{
					"type":     "object",
					"required": []any{"title"},
					"properties": map[string]any{
						"title":   map[string]any{"type": "string"},
						"body":    map[string]any{"type": "string"},
						"user_id": map[string]any{"type": "string"},
					},
					"additionalProperties": false,
				},
				Indexer: []string{"title", "user_id"},
				Parent:  repository.ParentRule{Mode: repository.ParentByField, Value: "user_id"},
			},
		},
	}
}

// SeedBuiltins registra las definiciones de plataforma. Es el paso explícito
// de inicialización del registry: correr antes de servir tráfico (main y
// seeds lo llaman). Idempotente: los duplicados se ignoran.
func SeedBuiltins(ctx context.Context, svc *Service) error {
	log := logger.Named("prism.seed")
	for _, def := range Builtins() {
		d := def
		if _, err := svc.CreateDefinition(ctx, &d, repository.TenantPlatform); err != nil {
			if errors.Is(err, repository.ErrDuplicateDefinition) {
				continue
			}
			return err
		}
		log.Debug("builtin definition seeded", logger.Block(def.DataModel.Block))
	}
	return nil
}
