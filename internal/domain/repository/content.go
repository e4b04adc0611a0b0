package repository

import (
	"context"
	"time"
)

// TenantPlatform es el tenant sentinela para contenido de plataforma
// (tenant-agnóstico). Solo las definiciones built-in viven bajo este tenant;
// las lecturas de contenido tenant-scoped NUNCA deben usarlo como comodín.
const TenantPlatform = "platform"

// TypeDefinition es el tipo reservado bajo el cual se almacenan las
// definiciones de contenido (una definición es un ContentRecord más).
const TypeDefinition = "DynamicContent"

// ContentRecord es la unidad de almacenamiento universal: una fila por pieza
// de contenido, discriminada por Type y aislada por TenantID.
type ContentRecord struct {
	ID        string
	Type      string
	TenantID  string
	ParentID  *string
	Content   map[string]any
	Indexer   map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Where expresa el predicado de filtrado de una query. Los tres campos son
// opcionales y se combinan con AND.
type Where struct {
	// ParentID filtra por la columna parent_id.
	ParentID *string

	// Indexer filtra por pares path/valor sobre el documento indexer.
	Indexer map[string]any

	// Content filtra por campos literales del payload (más lento que Indexer;
	// para campos no promovidos).
	Content map[string]any
}

// QueryParams parametriza una query tenant-scoped sobre ContentRecords.
type QueryParams struct {
	ContentType string
	TenantID    string
	Where       Where
	Limit       int
	Offset      int
	// OrderBy acepta "created_at" o "updated_at" (default: created_at).
	OrderBy string
	Desc    bool
}

// ContentPage es el resultado de una query: items de la página y total sin
// paginar.
type ContentPage struct {
	Items []ContentRecord
	Total int
}

// ContentRepository define el acceso a la tabla polimórfica de contenido.
// Toda operación está scoped por (type, tenant); las implementaciones no
// aplican validación de schema (eso es responsabilidad del engine).
type ContentRepository interface {
	// Insert persiste un registro nuevo. El caller asigna ID y timestamps.
	Insert(ctx context.Context, rec *ContentRecord) error

	// GetByID busca un registro por (type, tenant, id).
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, contentType, tenantID, id string) (*ContentRecord, error)

	// Query filtra registros por tipo, tenant y predicado Where.
	Query(ctx context.Context, p QueryParams) (*ContentPage, error)

	// Update reemplaza content/indexer/parent_id/updated_at del registro
	// identificado por (Type, TenantID, ID). Retorna ErrNotFound si no existe.
	Update(ctx context.Context, rec *ContentRecord) error

	// Delete elimina el registro. Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, contentType, tenantID, id string) error
}
