package prism

import (
	"fmt"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

// ResolveParent aplica la regla de vinculación padre de la definición sobre
// un payload y retorna el parent_id resultante (nil para tipos top-level).
func ResolveParent(def *repository.ContentDefinition, content map[string]any) (*string, error) {
	rule := def.DataModel.Parent
	switch rule.Mode {
	case "", repository.ParentNone:
		return nil, nil

	case repository.ParentByID:
		if rule.Value == "" {
			return nil, fmt.Errorf("definition %q: parent mode %q requires a fixed id", def.DataModel.Block, rule.Mode)
		}
		v := rule.Value
		return &v, nil

	case repository.ParentByField:
		if rule.Value == "" {
			return nil, fmt.Errorf("definition %q: parent mode %q requires a field name", def.DataModel.Block, rule.Mode)
		}
		raw, ok := lookupPath(content, rule.Value)
		if !ok {
			// El schema decide si el campo es requerido; sin valor no hay vínculo.
			return nil, nil
		}
		s, ok := raw.(string)
		if !ok || s == "" {
			return nil, &ValidationError{
				Block:  def.DataModel.Block,
				Field:  rule.Value,
				Detail: "parent field must be a non-empty string",
			}
		}
		return &s, nil

	default:
		return nil, fmt.Errorf("definition %q: unknown parent mode %q", def.DataModel.Block, rule.Mode)
	}
}
