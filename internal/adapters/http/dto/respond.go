package dto

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-aggregator/internal/domain"
)

// GetTraceID returns the current OpenTelemetry trace ID for the request,
// or an empty string if tracing is not active.
func GetTraceID(c *gin.Context) string {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.SpanContext().HasTraceID() {
		return ""
	}

	return span.SpanContext().TraceID().String()
}

// HandleError writes a domain error as an HTTP error response.
// Unknown errors become a generic 500 to avoid leaking internals.
func HandleError(c *gin.Context, err error) {
	status, code := statusForDomainError(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "an internal error occurred"
	}

	resp := NewErrorResponse(code, message)

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) && validationErr.Field != "" {
		resp.Error.Details = map[string]string{
			validationErr.Field: validationErr.Message,
		}
	}

	c.JSON(status, resp.WithTraceID(GetTraceID(c)))
}

// statusForDomainError maps domain error categories to HTTP status and
// machine-readable error codes.
func statusForDomainError(err error) (int, string) {
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, ErrorCodeNotFound
	case domain.IsConflict(err):
		return http.StatusConflict, ErrorCodeConflict
	case domain.IsValidation(err):
		return http.StatusBadRequest, ErrorCodeValidation
	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, ErrorCodeUnavailable
	default:
		return http.StatusInternalServerError, ErrorCodeInternal
	}
}
