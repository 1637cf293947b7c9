package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"invaudit/internal/domain"
	"invaudit/internal/extract"
	"invaudit/internal/provider"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapAuditError translates analysis failures to HTTP status codes and error
// codes. A failed analysis is never a 200: callers must be able to tell
// "could not analyze" from "analyzed and found nothing wrong".
func MapAuditError(err error) (status int, code, msg string) {
	var authErr *provider.AuthenticationError
	var unavailErr *provider.BackendUnavailableError
	var rateErr *provider.RateLimitError
	var malformedErr *provider.MalformedResponseError
	var schemaErr *extract.SchemaViolationError

	switch {
	case errors.Is(err, domain.ErrEmptyDocument):
		return http.StatusBadRequest, "EMPTY_DOCUMENT", "document text is empty"
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest, "UNKNOWN_PROVIDER", "unknown extraction provider"
	case errors.As(err, &authErr):
		return http.StatusBadGateway, "PROVIDER_AUTH_FAILED", "extraction backend rejected the configured credential"
	case errors.As(err, &rateErr):
		return http.StatusServiceUnavailable, "PROVIDER_RATE_LIMITED", "extraction backend is rate limiting; retry later"
	case errors.As(err, &unavailErr):
		return http.StatusServiceUnavailable, "PROVIDER_UNAVAILABLE", "extraction backend is unavailable; retry later"
	case errors.As(err, &malformedErr):
		return http.StatusBadGateway, "MALFORMED_RESPONSE", "extraction backend returned an unparseable response"
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, "EXTRACTION_INVALID", "extracted payload is not a structured invoice"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}
