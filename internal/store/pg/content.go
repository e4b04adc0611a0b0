package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

type contentRepo struct{ pool *pgxpool.Pool }

func (r *contentRepo) Insert(ctx context.Context, rec *repository.ContentRecord) error {
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return fmt.Errorf("pg: marshal content: %w", err)
	}
	indexer, err := json.Marshal(rec.Indexer)
	if err != nil {
		return fmt.Errorf("pg: marshal indexer: %w", err)
	}

	const query = `
		INSERT INTO content_record (id, content_type, tenant_id, parent_id, content, indexer, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		rec.ID, rec.Type, rec.TenantID, rec.ParentID, content, indexer, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return repository.ErrConflict
		}
		return fmt.Errorf("pg: insert content: %w", err)
	}
	return nil
}

func (r *contentRepo) GetByID(ctx context.Context, contentType, tenantID, id string) (*repository.ContentRecord, error) {
	const query = `
		SELECT id, content_type, tenant_id, parent_id, content, indexer, created_at, updated_at
		FROM content_record
		WHERE content_type = $1 AND tenant_id = $2 AND id = $3
	`
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, contentType, tenantID, id))
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get content by id: %w", err)
	}
	return rec, nil
}

func (r *contentRepo) Query(ctx context.Context, p repository.QueryParams) (*repository.ContentPage, error) {
	where := []string{"content_type = $1", "tenant_id = $2"}
	args := []any{p.ContentType, p.TenantID}
	argIdx := 3

	if p.Where.ParentID != nil {
		where = append(where, fmt.Sprintf("parent_id = $%d", argIdx))
		args = append(args, *p.Where.ParentID)
		argIdx++
	}
	if len(p.Where.Indexer) > 0 {
		// Los campos del indexer son un mapa plano: contención jsonb directa.
		doc, err := json.Marshal(p.Where.Indexer)
		if err != nil {
			return nil, fmt.Errorf("pg: marshal indexer filter: %w", err)
		}
		where = append(where, fmt.Sprintf("indexer @> $%d::jsonb", argIdx))
		args = append(args, doc)
		argIdx++
	}
	// Los filtros de content aceptan paths con puntos; cada uno se compara
	// por extracción jsonb.
	for path, want := range p.Where.Content {
		val, err := json.Marshal(want)
		if err != nil {
			return nil, fmt.Errorf("pg: marshal content filter %q: %w", path, err)
		}
		where = append(where, fmt.Sprintf("content #> $%d::text[] = $%d::jsonb", argIdx, argIdx+1))
		args = append(args, strings.Split(path, "."), val)
		argIdx += 2
	}

	nFilterArgs := len(args)

	orderCol := "created_at"
	if p.OrderBy == "updated_at" {
		orderCol = "updated_at"
	}
	dir := "ASC"
	if p.Desc {
		dir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, content_type, tenant_id, parent_id, content, indexer, created_at, updated_at,
		       COUNT(*) OVER() AS total
		FROM content_record
		WHERE %s
		ORDER BY %s %s, id %s`,
		strings.Join(where, " AND "), orderCol, dir, dir)

	if p.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, p.Limit)
		argIdx++
	}
	if p.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, p.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pg: query content: %w", err)
	}
	defer rows.Close()

	page := &repository.ContentPage{Items: []repository.ContentRecord{}}
	for rows.Next() {
		var rec repository.ContentRecord
		var content, indexer []byte
		var total int
		err := rows.Scan(&rec.ID, &rec.Type, &rec.TenantID, &rec.ParentID,
			&content, &indexer, &rec.CreatedAt, &rec.UpdatedAt, &total)
		if err != nil {
			return nil, fmt.Errorf("pg: scan content: %w", err)
		}
		if err := unmarshalDocs(&rec, content, indexer); err != nil {
			return nil, err
		}
		page.Total = total
		page.Items = append(page.Items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg: query content: %w", err)
	}
	// Offset más allá del final: la ventana no devuelve filas, recuperar el
	// total con un count.
	if len(page.Items) == 0 && p.Offset > 0 {
		countQuery := "SELECT COUNT(*) FROM content_record WHERE " + strings.Join(where, " AND ")
		if err := r.pool.QueryRow(ctx, countQuery, args[:nFilterArgs]...).Scan(&page.Total); err != nil {
			return nil, fmt.Errorf("pg: count content: %w", err)
		}
	}
	return page, nil
}

func (r *contentRepo) Update(ctx context.Context, rec *repository.ContentRecord) error {
	content, err := json.Marshal(rec.Content)
	if err != nil {
		return fmt.Errorf("pg: marshal content: %w", err)
	}
	indexer, err := json.Marshal(rec.Indexer)
	if err != nil {
		return fmt.Errorf("pg: marshal indexer: %w", err)
	}

	const query = `
		UPDATE content_record
		SET parent_id = $4, content = $5, indexer = $6, updated_at = $7
		WHERE content_type = $1 AND tenant_id = $2 AND id = $3
	`
	tag, err := r.pool.Exec(ctx, query,
		rec.Type, rec.TenantID, rec.ID, rec.ParentID, content, indexer, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pg: update content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *contentRepo) Delete(ctx context.Context, contentType, tenantID, id string) error {
	const query = `DELETE FROM content_record WHERE content_type = $1 AND tenant_id = $2 AND id = $3`
	tag, err := r.pool.Exec(ctx, query, contentType, tenantID, id)
	if err != nil {
		return fmt.Errorf("pg: delete content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRecord(row rowScanner) (*repository.ContentRecord, error) {
	var rec repository.ContentRecord
	var content, indexer []byte
	err := row.Scan(&rec.ID, &rec.Type, &rec.TenantID, &rec.ParentID,
		&content, &indexer, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalDocs(&rec, content, indexer); err != nil {
		return nil, err
	}
	return &rec, nil
}

func unmarshalDocs(rec *repository.ContentRecord, content, indexer []byte) error {
	if len(content) > 0 {
		if err := json.Unmarshal(content, &rec.Content); err != nil {
			return fmt.Errorf("pg: unmarshal content: %w", err)
		}
	}
	if len(indexer) > 0 {
		if err := json.Unmarshal(indexer, &rec.Indexer); err != nil {
			return fmt.Errorf("pg: unmarshal indexer: %w", err)
		}
	}
	return nil
}
