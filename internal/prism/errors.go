package prism

import (
	"errors"
	"fmt"

	"github.com/dropDatabas3/prism/internal/domain/repository"
)

// Re-exported sentinels so callers of the engine don't need to import the
// repository package for error checks.
var (
	ErrDefinitionNotFound  = repository.ErrDefinitionNotFound
	ErrDuplicateDefinition = repository.ErrDuplicateDefinition
	ErrNotFound            = repository.ErrNotFound
)

// ValidationError indica que un payload no cumple el schema de su definición.
// Field apunta al campo ofensivo cuando el validador puede determinarlo.
type ValidationError struct {
	Block  string
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %q: field %q: %s", e.Block, e.Field, e.Detail)
	}
	return fmt.Sprintf("validation failed for %q: %s", e.Block, e.Detail)
}

// IsValidationError verifica si el error es un *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
