package prism_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/prism"
	"github.com/dropDatabas3/prism/internal/store/memory"
)

// newEngine arma un engine sobre el store en memoria, con los builtins
// sembrados.
func newEngine(t *testing.T) *prism.Service {
	t.Helper()
	svc := prism.New(memory.New().Content(), prism.NewSchemaValidator())
	require.NoError(t, prism.SeedBuiltins(context.Background(), svc))
	return svc
}

func articleDefinition() *repository.ContentDefinition {
	return &repository.ContentDefinition{
		Name: "Article",
		DataModel: repository.DataModel{
			Block: "Article",
			JSONSchema: map[string]any{
				"type":     "object",
				"required": []any{"title"},
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
					"body":  map[string]any{"type": "string"},
					"meta":  map[string]any{"type": "object"},
				},
				"additionalProperties": false,
			},
			Indexer: []string{"title", "meta.tag"},
			Parent:  repository.ParentRule{Mode: repository.ParentNone},
		},
	}
}

func TestCreate_ValidAndInvalidPayload(t *testing.T) {
	svc := newEngine(t)
	ctx := context.Background()

	_, err := svc.CreateDefinition(ctx, articleDefinition(), repository.TenantPlatform)
	require.NoError(t, err)

	res, err := svc.Create(ctx, "Article", map[string]any{
		"title": "hola",
		"meta":  map[string]any{"tag": "news"},
	}, "t1")
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	rec := res.Items[0]
	require.Equal(t, "t1", rec.TenantID)
	require.Equal(t, "hola", rec.Indexer["title"])
	require.Equal(t, "news", rec.Indexer["meta.tag"])

	// Sin title: el schema lo exige.
	_, err = svc.Create(ctx, "Article", map[string]any{"body": "x"}, "t1")
	require.True(t, prism.IsValidationError(err), "expected validation error, got %v", err)

	// Campo extra: additionalProperties false.
	_, err = svc.Create(ctx, "Article", map[string]any{"title": "a", "zzz": 1}, "t1")
	require.True(t, prism.IsValidationError(err))
}

func TestCreate_UnknownBlock(t *testing.T) {
	svc := newEngine(t)
	_, err := svc.Create(context.Background(), "Nope", map[string]any{"x": 1}, "t1")
	require.ErrorIs(t, err, prism.ErrDefinitionNotFound)
}

func TestCreate_RequiresTenant(t *testing.T) {
	svc := newEngine(t)
	_, err := svc.Create(context.Background(), "Article", map[string]any{"title": "a"}, "")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestTenantIsolation(t *testing.T) {
	svc := newEngine(t)
	ctx := context.Background()
	_, err := svc.CreateDefinition(ctx, articleDefinition(), repository.TenantPlatform)
	require.NoError(t, err)

	res, err := svc.Create(ctx, "Article", map[string]any{"title": "solo t1"}, "t1")
	require.NoError(t, err)
	id := res.Items[0].ID

	// Otro tenant no ve el registro, ni por id ni por query.
	_, err = svc.Get(ctx, "Article", id, "t2")
	require.ErrorIs(t, err, repository.ErrNotFound)

	page, err := svc.Query(ctx, repository.QueryParams{ContentType: "Article", TenantID: "t2"})
	require.NoError(t, err)
	require.Zero(t, page.Total)
}

func TestDefinitionSquash(t *testing.T) {
	svc := newEngine(t)
	ctx := context.Background()

	// Definición de plataforma visible desde cualquier tenant.
	_, err := svc.CreateDefinition(ctx, articleDefinition(), repository.TenantPlatform)
	require.NoError(t, err)

	def, err := svc.FindDefinition(ctx, "Article", "t1")
	require.NoError(t, err)
	require.Equal(t, repository.TenantPlatform, def.TenantID)

	// El tenant puede sombrear el tipo con su propia definición.
	custom := articleDefinition()
	custom.Description = "versión del tenant"
	_, err = svc.CreateDefinition(ctx, custom, "t1")
	require.NoError(t, err)

	def, err = svc.FindDefinition(ctx, "Article", "t1")
	require.NoError(t, err)
	require.Equal(t, "t1", def.TenantID)

	// Otro tenant sigue resolviendo la de plataforma.
	def, err = svc.FindDefinition(ctx, "Article", "t2")
	require.NoError(t, err)
	require.Equal(t, repository.TenantPlatform, def.TenantID)
}

func TestDefinitionTenantScopedNeverLeaksToPlatform(t *testing.T) {
	svc := newEngine(t)
	ctx := context.Background()

	def := articleDefinition()
	def.DataModel.Block = "Secret"
	_, err := svc.CreateDefinition(ctx, def, "t1")
	require.NoError(t, err)

	// Con el scope de plataforma una definición de tenant jamás resuelve.
	_, err = svc.FindDefinition(ctx, "Secret", repository.TenantPlatform)
	require.ErrorIs(t, err, prism.ErrDefinitionNotFound)
	_, err = svc.FindDefinition(ctx, "Secret", "")
	require.ErrorIs(t, err, prism.ErrDefinitionNotFound)

	// El dueño sí.
	_, err = svc.FindDefinition(ctx, "Secret", "t1")
	require.NoError(t, err)
}

func TestDuplicateDefinition(t *testing.T) {
	svc := newEngine(t)
	ctx := context.Background()

	_, err := svc.CreateDefinition(ctx, articleDefinition(), "t1")
	require.NoError(t, err)
	_, err = svc.CreateDefinition(ctx, articleDefinition(), "t1")
	require.ErrorIs(t, err, prism.ErrDuplicateDefinition)

	// Mismo block en otro scope no es duplicado.
	_, err = svc.CreateDefinition(ctx, articleDefinition(), "t2")
	require.NoError(t, err)
}

func TestUpdate_ShallowMerge(t *testing.T) {
	svc := newEngine(t)
	ctx := context.Background()
	_, err := svc.CreateDefinition(ctx, articleDefinition(), repository.TenantPlatform)
	require.NoError(t, err)

	res, err := svc.Create(ctx, "Article", map[string]any{
		"title": "v1",
		"body":  "cuerpo",
		"meta":  map[string]any{"tag": "a", "lang": "es"},
	}, "t1")
	require.NoError(t, err)
	id := res.Items[0].ID

	// El merge es superficial: meta se reemplaza entero, body sobrevive.
	res, err = svc.Update(ctx, "Article", id, map[string]any{
		"title": "v2",
		"meta":  map[string]any{"tag": "b"},
	}, "t1")
	require.NoError(t, err)
	got := res.Items[0]
	require.Equal(t, "v2", got.Content["title"])
	require.Equal(t, "cuerpo", got.Content["body"])
	require.Equal(t, map[string]any{"tag": "b"}, got.Content["meta"])
	require.Equal(t, "b", got.Indexer["meta.tag"])

	// El merge resultante también se valida.
	_, err = svc.Update(ctx, "Article", id, map[string]any{"zzz": true}, "t1")
	require.True(t, prism.IsValidationError(err))

	_, err = svc.Update(ctx, "Article", "no-such-id", map[string]any{"title": "x"}, "t1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := newEngine(t)
	ctx := context.Background()
	_, err := svc.CreateDefinition(ctx, articleDefinition(), repository.TenantPlatform)
	require.NoError(t, err)

	res, err := svc.Create(ctx, "Article", map[string]any{"title": "x"}, "t1")
	require.NoError(t, err)

	ok, err := svc.Delete(ctx, "Article", res.Items[0].ID, "t1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Delete(ctx, "Article", res.Items[0].ID, "t1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestParentLinkage(t *testing.T) {
	svc := newEngine(t)
	ctx := context.Background()

	// Guest es builtin con parent byField assistant_id.
	res, err := svc.Create(ctx, "Assistant", map[string]any{"name": "Ada"}, "t1")
	if err != nil {
		t.Fatalf("create assistant: %v", err)
	}
	assistantID := res.Items[0].ID

	res, err = svc.Create(ctx, "Guest", map[string]any{
		"name":         "Bob",
		"phone_number": "+54911",
		"passPhrase":   "hola",
		"assistant_id": assistantID,
	}, "t1")
	require.NoError(t, err)
	require.NotNil(t, res.Items[0].ParentID)
	require.Equal(t, assistantID, *res.Items[0].ParentID)

	// Query por parent.
	page, err := svc.Query(ctx, repository.QueryParams{
		ContentType: "Guest",
		TenantID:    "t1",
		Where:       repository.Where{ParentID: &assistantID},
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
}

func TestQuery_Pagination(t *testing.T) {
	svc := newEngine(t)
	ctx := context.Background()
	_, err := svc.CreateDefinition(ctx, articleDefinition(), repository.TenantPlatform)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, "Article", map[string]any{"title": fmt.Sprintf("a%d", i)}, "t1")
		require.NoError(t, err)
	}

	page, err := svc.Query(ctx, repository.QueryParams{
		ContentType: "Article", TenantID: "t1", Limit: 2, Offset: 2,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, 5, page.Total)

	// Offset más allá del final: página vacía pero total intacto.
	page, err = svc.Query(ctx, repository.QueryParams{
		ContentType: "Article", TenantID: "t1", Limit: 2, Offset: 10,
	})
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Equal(t, 5, page.Total)
}

func TestQuery_RequiresKnownDefinition(t *testing.T) {
	svc := newEngine(t)
	_, err := svc.Query(context.Background(), repository.QueryParams{
		ContentType: "Ghost", TenantID: "t1",
	})
	if !errors.Is(err, prism.ErrDefinitionNotFound) {
		t.Fatalf("expected definition not found, got %v", err)
	}
}

func TestSeedBuiltins_Idempotent(t *testing.T) {
	svc := newEngine(t)
	// Segunda corrida no debe fallar ni duplicar.
	require.NoError(t, prism.SeedBuiltins(context.Background(), svc))

	page, err := svc.Query(context.Background(), repository.QueryParams{
		ContentType: repository.TypeDefinition,
		TenantID:    repository.TenantPlatform,
		Where:       repository.Where{Indexer: map[string]any{"block": "User"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
}

func TestReservedBlockOnlyThroughRegistry(t *testing.T) {
	svc := newEngine(t)
	ctx := context.Background()

	// El CRUD genérico no escribe definiciones: eso saltearía la unicidad
	// por (block, tenant) del registry.
	payload := map[string]any{
		"name":       "Rogue",
		"data_model": map[string]any{"block": "Rogue"},
	}
	_, err := svc.Create(ctx, repository.TypeDefinition, payload, "t1")
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = svc.Update(ctx, repository.TypeDefinition, "some-id", payload, "t1")
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = svc.Delete(ctx, repository.TypeDefinition, "some-id", "t1")
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	// El camino del registry sigue funcionando y sigue deduplicando.
	_, err = svc.CreateDefinition(ctx, articleDefinition(), "t1")
	require.NoError(t, err)
	_, err = svc.CreateDefinition(ctx, articleDefinition(), "t1")
	require.ErrorIs(t, err, repository.ErrDuplicateDefinition)

	// Y la lectura de definiciones no está bloqueada.
	res, err := svc.Query(ctx, repository.QueryParams{
		ContentType: repository.TypeDefinition,
		TenantID:    "t1",
		Where:       repository.Where{Indexer: map[string]any{"block": "Article"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
}
