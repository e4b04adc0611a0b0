package prism

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// SchemaValidator valida un payload contra un JSON Schema dinámico.
// Es una capability: el engine la resuelve por request desde el registry,
// de modo que los tipos de contenido no necesitan existir en compile time.
type SchemaValidator interface {
	// Validate retorna nil si payload cumple schema, o un *ValidationError.
	Validate(block string, schema map[string]any, payload map[string]any) error
}

// NewSchemaValidator retorna el validador basado en santhosh-tekuri/jsonschema
// (draft 2020-12). Cada llamada compila el schema recibido: las definiciones
// son editables por tenant en runtime, así que no cacheamos compilados.
func NewSchemaValidator() SchemaValidator {
	return &jsonSchemaValidator{}
}

type jsonSchemaValidator struct{}

func (v *jsonSchemaValidator) Validate(block string, schema map[string]any, payload map[string]any) error {
	sch, err := compileSchema(schema)
	if err != nil {
		return &ValidationError{Block: block, Detail: fmt.Sprintf("invalid schema: %v", err)}
	}

	// Round-trip por JSON para obtener la representación canónica que el
	// validador espera (json.Number para numéricos).
	raw, err := json.Marshal(payload)
	if err != nil {
		return &ValidationError{Block: block, Detail: fmt.Sprintf("payload not serializable: %v", err)}
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ValidationError{Block: block, Detail: err.Error()}
	}

	if err := sch.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			leaf := leafCause(verr)
			return &ValidationError{
				Block:  block,
				Field:  strings.Join(leaf.InstanceLocation, "."),
				Detail: leaf.Error(),
			}
		}
		return &ValidationError{Block: block, Detail: err.Error()}
	}
	return nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("schema.json")
}

// leafCause baja hasta la causa más específica para poder nombrar el campo
// ofensivo en el mensaje de error.
func leafCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}
