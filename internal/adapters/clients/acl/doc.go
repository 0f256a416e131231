// Package acl implements the Anti-Corruption Layer pattern for the upstream
// quote providers. Each adapter owns the provider's wire DTOs and translates
// them to domain types, so the rest of the service never sees a provider
// payload shape.
//
// Both providers share the same array contract: GET /quotes returns a JSON
// array of quote objects and the adapter takes element zero. An empty array
// is a provider contract violation and surfaces as domain.ErrUnavailable.
package acl
