package handlers

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/prism/internal/accounts"
	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/http/helpers"
	"github.com/dropDatabas3/prism/internal/prism"
	"github.com/dropDatabas3/prism/internal/roles"
)

// writeDomainError traduce errores de dominio a respuestas HTTP. Los errores
// de token se colapsan en una sola respuesta genérica para no funcionar como
// oráculo (existe / expiró / ya se usó).
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *prism.ValidationError
	if errors.As(err, &ve) {
		e := &helpers.HTTPError{
			Code:    "validation_failed",
			Message: "Payload does not conform to the content schema",
			Detail:  ve.Error(),
			Status:  http.StatusBadRequest,
		}
		helpers.WriteError(w, e)
		return
	}

	var ge *roles.GuardError
	if errors.As(err, &ge) {
		code := "forbidden"
		if ge.Status == http.StatusBadRequest {
			code = "bad_request"
		}
		helpers.WriteError(w, &helpers.HTTPError{
			Code:    code,
			Message: ge.Message,
			Status:  ge.Status,
		})
		return
	}

	var pe *accounts.PolicyError
	if errors.As(err, &pe) {
		helpers.WriteError(w, &helpers.HTTPError{
			Code:    "weak_password",
			Message: "Password does not meet the policy",
			Detail:  pe.Error(),
			Status:  http.StatusBadRequest,
		})
		return
	}

	switch {
	case errors.Is(err, repository.ErrDefinitionNotFound):
		helpers.WriteError(w, &helpers.HTTPError{
			Code:    "definition_not_found",
			Message: "No content definition for this type",
			Status:  http.StatusNotFound,
		})
	case errors.Is(err, repository.ErrDuplicateDefinition):
		helpers.WriteError(w, helpers.ErrConflict.WithDetail("content definition already exists"))
	case errors.Is(err, repository.ErrLastOwner):
		helpers.WriteError(w, helpers.ErrConflict.WithDetail("cannot remove or demote the last owner"))
	case errors.Is(err, repository.ErrTokenExpired),
		errors.Is(err, repository.ErrTokenConsumed):
		writeInvalidToken(w)
	case errors.Is(err, repository.ErrNotFound):
		helpers.WriteError(w, helpers.ErrNotFound)
	case errors.Is(err, repository.ErrInvalidInput):
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail(err.Error()))
	case errors.Is(err, repository.ErrConflict):
		helpers.WriteError(w, helpers.ErrConflict)
	default:
		helpers.WriteError(w, helpers.ErrInternalServerError)
	}
}

// writeInvalidToken es la respuesta única para cualquier token rechazado.
func writeInvalidToken(w http.ResponseWriter) {
	helpers.WriteError(w, &helpers.HTTPError{
		Code:    "invalid_token",
		Message: "Token is invalid or expired",
		Status:  http.StatusBadRequest,
	})
}
