package httpx

import (
	"errors"
	"net/http"

	"github.com/quillbooks/quillbooks/internal/shared"
)

// RespondError maps the domain error taxonomy to RFC7807 responses.
// Transition violations are rule violations, so the ErrInvalidTransition
// case is covered by the ErrRuleViolation branch.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrRuleViolation):
		Problem(w, http.StatusUnprocessableEntity, "Rule Violation", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
