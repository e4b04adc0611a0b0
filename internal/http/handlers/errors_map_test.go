package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropDatabas3/prism/internal/accounts"
	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/prism"
	"github.com/dropDatabas3/prism/internal/roles"
)

func decodeErr(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body: %v (%s)", err, rr.Body.String())
	}
	return body
}

func TestWriteDomainError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &prism.ValidationError{Block: "Article", Detail: "boom"}, http.StatusBadRequest, "validation_failed"},
		{"guard 400", &roles.GuardError{Status: http.StatusBadRequest, Message: "cannot change your own role"}, http.StatusBadRequest, "bad_request"},
		{"guard 403", &roles.GuardError{Status: http.StatusForbidden, Message: "nope"}, http.StatusForbidden, "forbidden"},
		{"weak password", &accounts.PolicyError{Reasons: []string{"too_short"}}, http.StatusBadRequest, "weak_password"},
		{"definition not found", repository.ErrDefinitionNotFound, http.StatusNotFound, "definition_not_found"},
		{"duplicate definition", repository.ErrDuplicateDefinition, http.StatusConflict, "conflict"},
		{"last owner", repository.ErrLastOwner, http.StatusConflict, "conflict"},
		{"not found", repository.ErrNotFound, http.StatusNotFound, "not_found"},
		{"invalid input", repository.ErrInvalidInput, http.StatusBadRequest, "bad_request"},
		{"conflict", repository.ErrConflict, http.StatusConflict, "conflict"},
		{"unknown", assertAnError, http.StatusInternalServerError, "internal_error"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeDomainError(rr, c.err)
			if rr.Code != c.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, c.wantStatus)
			}
			if got := decodeErr(t, rr)["code"]; got != c.wantCode {
				t.Fatalf("code = %v, want %q", got, c.wantCode)
			}
		})
	}
}

// Los tres rechazos de token producen exactamente la misma respuesta: el
// endpoint no debe servir de oráculo sobre el estado del token.
func TestTokenErrorsAreIndistinguishable(t *testing.T) {
	var bodies []string
	var statuses []int
	for _, err := range []error{
		repository.ErrTokenExpired,
		repository.ErrTokenConsumed,
	} {
		rr := httptest.NewRecorder()
		writeDomainError(rr, err)
		bodies = append(bodies, rr.Body.String())
		statuses = append(statuses, rr.Code)
	}
	if bodies[0] != bodies[1] || statuses[0] != statuses[1] {
		t.Fatalf("token rejections differ: %v %v", statuses, bodies)
	}
	if statuses[0] != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", statuses[0])
	}
}

var assertAnError = errorString("boom")

type errorString string

func (e errorString) Error() string { return string(e) }
