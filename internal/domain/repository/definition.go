package repository

import "time"

// ParentMode indica cómo un registro hijo se vincula a su entidad dueña.
type ParentMode string

const (
	// ParentNone marca un tipo top-level (ej: Tenant, User).
	ParentNone ParentMode = "none"

	// ParentByID vincula todos los registros del tipo a un id fijo.
	ParentByID ParentMode = "id"

	// ParentByField lee el parent id de un campo del propio contenido
	// (ej: assistant_id).
	ParentByField ParentMode = "field"
)

// ParentRule es la regla de vinculación padre de una definición.
// Value es el id fijo (ParentByID) o el nombre del campo (ParentByField).
type ParentRule struct {
	Mode  ParentMode `json:"mode"`
	Value string     `json:"value,omitempty"`
}

// DataModel describe la forma de un tipo de contenido dinámico.
type DataModel struct {
	// Block es el nombre del tipo (único por tenant; global para plataforma).
	Block string `json:"block"`

	// JSONSchema es el schema (draft 2020-12) contra el que se valida todo
	// payload del tipo en cada escritura.
	JSONSchema map[string]any `json:"json_schema"`

	// Indexer lista los campos del payload que se aplanan al documento
	// indexer para filtrado eficiente.
	Indexer []string `json:"indexer,omitempty"`

	// Parent define la regla de vinculación padre.
	Parent ParentRule `json:"parent"`
}

// ContentDefinition describe un tipo de contenido definido por un tenant (o
// built-in de plataforma). Se persiste como un ContentRecord de tipo
// TypeDefinition; este struct es la vista tipada de ese registro.
type ContentDefinition struct {
	ID          string         `json:"id,omitempty"`
	TenantID    string         `json:"tenant_id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	DataModel   DataModel      `json:"data_model"`
	UIConfig    map[string]any `json:"ui_config,omitempty"`
	Access      map[string]any `json:"access,omitempty"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at,omitempty"`
}

// IsPlatform indica si la definición es tenant-agnóstica.
func (d *ContentDefinition) IsPlatform() bool {
	return d.TenantID == TenantPlatform
}
