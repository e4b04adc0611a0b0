// Package dto define los shapes de request/response de la API.
package dto

import (
	"time"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/prism"
)

// RecordResponse es la vista JSON de un registro de contenido.
type RecordResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	TenantID  string         `json:"tenant_id"`
	ParentID  *string        `json:"parent_id,omitempty"`
	Content   map[string]any `json:"content"`
	Indexer   map[string]any `json:"indexer,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ResultResponse es el envelope de las operaciones del engine.
type ResultResponse struct {
	Items []RecordResponse `json:"items"`
	Total int              `json:"total"`
}

// FromRecord mapea un ContentRecord al DTO.
func FromRecord(rec repository.ContentRecord) RecordResponse {
	return RecordResponse{
		ID:        rec.ID,
		Type:      rec.Type,
		TenantID:  rec.TenantID,
		ParentID:  rec.ParentID,
		Content:   rec.Content,
		Indexer:   rec.Indexer,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// FromResult mapea un Result del engine al envelope de la API.
func FromResult(res *prism.Result) ResultResponse {
	out := ResultResponse{Items: make([]RecordResponse, 0, len(res.Items)), Total: res.Total}
	for _, rec := range res.Items {
		out.Items = append(out.Items, FromRecord(rec))
	}
	return out
}

// QueryRequest es el predicado de una query de contenido.
type QueryRequest struct {
	Where struct {
		ParentID *string        `json:"parent_id,omitempty"`
		Indexer  map[string]any `json:"indexer,omitempty"`
		Content  map[string]any `json:"content,omitempty"`
	} `json:"where"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
	OrderBy string `json:"order_by,omitempty"`
	Desc    bool   `json:"desc,omitempty"`
}

// ToParams convierte el request en QueryParams del repositorio.
func (q *QueryRequest) ToParams(block, tenantID string) repository.QueryParams {
	return repository.QueryParams{
		ContentType: block,
		TenantID:    tenantID,
		Where: repository.Where{
			ParentID: q.Where.ParentID,
			Indexer:  q.Where.Indexer,
			Content:  q.Where.Content,
		},
		Limit:   q.Limit,
		Offset:  q.Offset,
		OrderBy: q.OrderBy,
		Desc:    q.Desc,
	}
}
