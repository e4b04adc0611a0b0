package prism

import "strings"

// BuildIndexer aplana el subconjunto de campos declarado en
// dataModel.indexer a un documento plano usable para filtrado.
// Soporta paths con punto ("config.voice"); los campos ausentes se omiten.
func BuildIndexer(content map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	idx := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := lookupPath(content, f); ok {
			idx[f] = v
		}
	}
	return idx
}

// lookupPath resuelve un path con puntos dentro de un payload anidado.
func lookupPath(m map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := any(m)
	for _, p := range parts {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
