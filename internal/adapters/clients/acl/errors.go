package acl

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jsamuelsen/quote-aggregator/internal/adapters/clients"
	"github.com/jsamuelsen/quote-aggregator/internal/domain"
)

// MapHTTPError maps a provider response to a domain error.
//
// Providers are read-only upstreams, so nearly every failure mode collapses
// to domain.ErrUnavailable: the quote source could not serve a quote right
// now. Auth rejections (the generic provider's API key) are included in that
// bucket because the caller cannot fix them per request.
//
// Either resp or clientErr may be nil, never both.
func MapHTTPError(resp *http.Response, clientErr error, serviceName string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.NewUnavailableError(serviceName, "credentials rejected")

	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.NewUnavailableError(serviceName, "rate limit exceeded")

	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
}

// mapClientError translates client-level errors to domain errors.
func mapClientError(err error, serviceName string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, "circuit breaker open")

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName, "max retries exceeded")

	default:
		return domain.NewUnavailableError(serviceName, err.Error())
	}
}
