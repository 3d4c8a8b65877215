package actions

import (
	"errors"
	"net/http"

	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
)

// StatusFor maps an error of Dispatch to a status code, reporting business rule violations as 403.
func StatusFor(err error) int {
	return statusFor(err, http.StatusForbidden)
}

func statusFor(err error, businessRuleStatus int) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrBusinessRuleViolation):
		return businessRuleStatus
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUpstreamGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
