package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: duplicado, constraint violation).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDefinitionNotFound indica que no existe definición para el tipo de
	// contenido. Es recuperable: el caller puede crear la definición y reintentar.
	ErrDefinitionNotFound = errors.New("content definition not found")

	// ErrDuplicateDefinition indica que ya existe una definición para ese
	// (block, tenant).
	ErrDuplicateDefinition = errors.New("content definition already exists")

	// ErrTokenExpired indica que el token ya expiró.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenConsumed indica que el token ya fue consumido.
	ErrTokenConsumed = errors.New("token already consumed")

	// ErrLastOwner indica que no se puede remover o degradar al último OWNER
	// de un tenant u organización.
	ErrLastOwner = errors.New("cannot remove or demote the last OWNER")

	// ErrUnauthorized indica que la operación no está autorizada.
	ErrUnauthorized = errors.New("unauthorized")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsDefinitionNotFound verifica si el error es ErrDefinitionNotFound.
func IsDefinitionNotFound(err error) bool {
	return errors.Is(err, ErrDefinitionNotFound)
}

// IsLastOwner verifica si el error es ErrLastOwner.
func IsLastOwner(err error) bool {
	return errors.Is(err, ErrLastOwner)
}
