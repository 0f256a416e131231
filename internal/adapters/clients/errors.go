// Package clients provides the shared HTTP client for upstream quote
// providers.
package clients

import "errors"

// Client errors represent failures in the HTTP client layer. They are
// infrastructure errors; ACL adapters translate them to domain errors.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open and the
	// provider is being shielded from further requests.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded is returned after all retry attempts have been
	// exhausted. The last attempt's error is wrapped for context.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
