package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

func rec(id, typ, tenant string, created time.Time, content, indexer map[string]any) *repository.ContentRecord {
	return &repository.ContentRecord{
		ID: id, Type: typ, TenantID: tenant,
		Content: content, Indexer: indexer,
		CreatedAt: created, UpdatedAt: created,
	}
}

func TestContentRepo_InsertConflict(t *testing.T) {
	repo := newContentRepo()
	ctx := context.Background()
	r := rec("1", "Article", "t1", time.Now(), map[string]any{"a": 1}, nil)

	if err := repo.Insert(ctx, r); err != nil {
		t.Fatal(err)
	}
	if err := repo.Insert(ctx, r); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	// Mismo id en otro tenant no choca.
	other := rec("1", "Article", "t2", time.Now(), nil, nil)
	if err := repo.Insert(ctx, other); err != nil {
		t.Fatalf("same id other tenant: %v", err)
	}
}

func TestContentRepo_CallersDontShareMemory(t *testing.T) {
	repo := newContentRepo()
	ctx := context.Background()
	if err := repo.Insert(ctx, rec("1", "A", "t1", time.Now(), map[string]any{"k": "v"}, nil)); err != nil {
		t.Fatal(err)
	}
	got, err := repo.GetByID(ctx, "A", "t1", "1")
	if err != nil {
		t.Fatal(err)
	}
	got.Content["k"] = "mutado"

	again, err := repo.GetByID(ctx, "A", "t1", "1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Content["k"] != "v" {
		t.Fatal("store leaked internal map to the caller")
	}
}

func TestContentRepo_QueryFilters(t *testing.T) {
	repo := newContentRepo()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	parent := "p1"

	records := []*repository.ContentRecord{
		rec("1", "A", "t1", base, map[string]any{"city": "bsas", "profile": map[string]any{"lang": "es"}}, map[string]any{"city": "bsas"}),
		rec("2", "A", "t1", base.Add(time.Minute), map[string]any{"city": "córdoba", "profile": map[string]any{"lang": "es"}}, map[string]any{"city": "córdoba"}),
		rec("3", "A", "t1", base.Add(2*time.Minute), map[string]any{"city": "bsas"}, map[string]any{"city": "bsas"}),
		rec("4", "A", "t2", base, map[string]any{"city": "bsas"}, map[string]any{"city": "bsas"}),
		rec("5", "B", "t1", base, map[string]any{"city": "bsas"}, map[string]any{"city": "bsas"}),
	}
	records[2].ParentID = &parent
	for _, r := range records {
		if err := repo.Insert(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	// Indexer: igualdad por clave plana, scoped a (type, tenant).
	page, err := repo.Query(ctx, repository.QueryParams{
		ContentType: "A", TenantID: "t1",
		Where: repository.Where{Indexer: map[string]any{"city": "bsas"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 {
		t.Fatalf("indexer filter total = %d, want 2", page.Total)
	}

	// Content: path con puntos.
	page, err = repo.Query(ctx, repository.QueryParams{
		ContentType: "A", TenantID: "t1",
		Where: repository.Where{Content: map[string]any{"profile.lang": "es"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 {
		t.Fatalf("content path filter total = %d, want 2", page.Total)
	}

	// ParentID.
	page, err = repo.Query(ctx, repository.QueryParams{
		ContentType: "A", TenantID: "t1",
		Where: repository.Where{ParentID: &parent},
	})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Items[0].ID != "3" {
		t.Fatalf("parent filter: %+v", page.Items)
	}
}

func TestContentRepo_QueryOrderAndPaging(t *testing.T) {
	repo := newContentRepo()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		if err := repo.Insert(ctx, rec(id, "A", "t1", base.Add(time.Duration(i)*time.Minute), nil, nil)); err != nil {
			t.Fatal(err)
		}
	}

	// Descendente por created_at.
	page, err := repo.Query(ctx, repository.QueryParams{
		ContentType: "A", TenantID: "t1", Desc: true, Limit: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if page.Items[0].ID != "d" || page.Items[1].ID != "c" {
		t.Fatalf("desc order: got %s,%s", page.Items[0].ID, page.Items[1].ID)
	}
	if page.Total != 4 {
		t.Fatalf("total = %d", page.Total)
	}

	// Offset más allá del final: vacío, total intacto.
	page, err = repo.Query(ctx, repository.QueryParams{
		ContentType: "A", TenantID: "t1", Offset: 99,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 0 || page.Total != 4 {
		t.Fatalf("offset past end: items %d total %d", len(page.Items), page.Total)
	}
}

func TestContentRepo_UpdateDeleteNotFound(t *testing.T) {
	repo := newContentRepo()
	ctx := context.Background()

	err := repo.Update(ctx, rec("nope", "A", "t1", time.Now(), nil, nil))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
	err = repo.Delete(ctx, "A", "t1", "nope")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("delete missing: %v", err)
	}
}
