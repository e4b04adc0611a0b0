package memory

import (
	"context"
	"maps"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

type contentRepo struct {
	mu sync.RWMutex
	// recs indexa por (type, tenant, id); ver key().
	recs map[string]*repository.ContentRecord
}

func newContentRepo() *contentRepo {
	return &contentRepo{recs: make(map[string]*repository.ContentRecord)}
}

func key(contentType, tenantID, id string) string {
	return contentType + "\x00" + tenantID + "\x00" + id
}

// cloneRecord copia el struct y sus mapas de primer nivel, para que los
// callers no compartan memoria con el store.
func cloneRecord(r *repository.ContentRecord) *repository.ContentRecord {
	cp := *r
	if r.Content != nil {
		cp.Content = maps.Clone(r.Content)
	}
	if r.Indexer != nil {
		cp.Indexer = maps.Clone(r.Indexer)
	}
	if r.ParentID != nil {
		pid := *r.ParentID
		cp.ParentID = &pid
	}
	return &cp
}

func (r *contentRepo) Insert(_ context.Context, rec *repository.ContentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(rec.Type, rec.TenantID, rec.ID)
	if _, exists := r.recs[k]; exists {
		return repository.ErrConflict
	}
	r.recs[k] = cloneRecord(rec)
	return nil
}

func (r *contentRepo) GetByID(_ context.Context, contentType, tenantID, id string) (*repository.ContentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recs[key(contentType, tenantID, id)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *contentRepo) Query(_ context.Context, p repository.QueryParams) (*repository.ContentPage, error) {
	r.mu.RLock()
	var matched []*repository.ContentRecord
	for _, rec := range r.recs {
		if rec.Type != p.ContentType || rec.TenantID != p.TenantID {
			continue
		}
		if !matchWhere(rec, p.Where) {
			continue
		}
		matched = append(matched, rec)
	}
	r.mu.RUnlock()

	sortRecords(matched, p.OrderBy, p.Desc)

	total := len(matched)
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if p.Limit > 0 && offset+p.Limit < end {
		end = offset + p.Limit
	}

	items := make([]repository.ContentRecord, 0, end-offset)
	for _, rec := range matched[offset:end] {
		items = append(items, *cloneRecord(rec))
	}
	return &repository.ContentPage{Items: items, Total: total}, nil
}

func (r *contentRepo) Update(_ context.Context, rec *repository.ContentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(rec.Type, rec.TenantID, rec.ID)
	if _, ok := r.recs[k]; !ok {
		return repository.ErrNotFound
	}
	r.recs[k] = cloneRecord(rec)
	return nil
}

func (r *contentRepo) Delete(_ context.Context, contentType, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(contentType, tenantID, id)
	if _, ok := r.recs[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.recs, k)
	return nil
}

func matchWhere(rec *repository.ContentRecord, w repository.Where) bool {
	if w.ParentID != nil {
		if rec.ParentID == nil || *rec.ParentID != *w.ParentID {
			return false
		}
	}
	for k, want := range w.Indexer {
		got, ok := rec.Indexer[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	for path, want := range w.Content {
		got, ok := lookupPath(rec.Content, path)
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// lookupPath navega el payload por un path con puntos ("profile.city").
func lookupPath(doc map[string]any, path string) (any, bool) {
	cur := any(doc)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func sortRecords(recs []*repository.ContentRecord, orderBy string, desc bool) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		var less bool
		if orderBy == "updated_at" {
			if a.UpdatedAt.Equal(b.UpdatedAt) {
				less = a.ID < b.ID
			} else {
				less = a.UpdatedAt.Before(b.UpdatedAt)
			}
		} else {
			if a.CreatedAt.Equal(b.CreatedAt) {
				less = a.ID < b.ID
			} else {
				less = a.CreatedAt.Before(b.CreatedAt)
			}
		}
		if desc {
			return !less
		}
		return less
	})
}
