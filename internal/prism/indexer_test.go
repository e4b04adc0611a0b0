package prism

import (
	"reflect"
	"testing"
)

func TestBuildIndexer(t *testing.T) {
	content := map[string]any{
		"title": "hola",
		"meta":  map[string]any{"tag": "news", "nested": map[string]any{"deep": 1}},
		"count": 3,
	}

	got := BuildIndexer(content, []string{"title", "meta.tag", "meta.nested.deep", "missing", "meta.nope"})
	want := map[string]any{
		"title":            "hola",
		"meta.tag":         "news",
		"meta.nested.deep": 1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("indexer mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestBuildIndexer_NoFields(t *testing.T) {
	got := BuildIndexer(map[string]any{"a": 1}, nil)
	if len(got) != 0 {
		t.Fatalf("expected empty indexer, got %#v", got)
	}
}

func TestLookupPath_NonObjectSegment(t *testing.T) {
	// Un segmento intermedio que no es objeto corta la resolución.
	if _, ok := lookupPath(map[string]any{"a": "leaf"}, "a.b"); ok {
		t.Fatal("expected miss traversing through a scalar")
	}
}
