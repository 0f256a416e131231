// Package domain contains core business entities and rules.
package domain

import "unicode/utf8"

// Source identifies the upstream provider a quote originated from.
type Source string

const (
	// SourceCharacter is the character-attributed provider. Its quotes carry
	// a character name, a facing direction, and an image URL.
	SourceCharacter Source = "character-quotes"

	// SourceGeneric is the author-attributed provider. Its quotes carry an
	// author and a category.
	SourceGeneric Source = "generic-quotes"
)

// MaxGenericTextLen is the storage limit, in characters, for
// generic-quotes text. Longer text is cut to this length when a quote
// is first persisted.
const MaxGenericTextLen = 255

// ParseSource validates a caller-supplied source name.
func ParseSource(name string) (Source, error) {
	switch Source(name) {
	case SourceCharacter, SourceGeneric:
		return Source(name), nil
	default:
		return "", NewValidationError("source", "unknown quote source "+name)
	}
}

// StorageText applies the source-specific text rule for newly created
// quotes. The limit counts characters, not bytes, so multibyte text is
// never cut mid-rune.
func (s Source) StorageText(text string) string {
	if s != SourceGeneric || utf8.RuneCountInString(text) <= MaxGenericTextLen {
		return text
	}

	return string([]rune(text)[:MaxGenericTextLen])
}

// Quote is a canonical, deduplicated quotation with provenance and a vote
// count. Text is unique across all stored quotes. A Quote is created only
// through the resolve-or-create path, mutated only by vote increments, and
// never deleted.
type Quote struct {
	// ID is the unique identifier, assigned when the quote is first stored.
	ID string

	// Text is the quotation itself and the deduplication key.
	Text string

	// Author is the provider-supplied attribution (generic-quotes only).
	Author string

	// Category is the provider-supplied theme (generic-quotes only).
	Category string

	// Source names the provider this quote came from.
	Source Source

	// Image is an image URL (character-quotes only).
	Image string

	// Character is the attributed character (character-quotes only).
	Character string

	// CharacterDirection is the character's facing direction in the image
	// (character-quotes only).
	CharacterDirection string

	// Votes counts successful votes for this quote. Never negative.
	Votes int
}

// Vote records a single voter's one-time endorsement of a quote.
// The (QuoteID, VoterID) pair is unique; a Vote is immutable once created.
// A Vote references its Quote by ID only - it does not own it.
type Vote struct {
	// ID is the unique identifier for this vote.
	ID string

	// QuoteID references the quote voted for.
	QuoteID string

	// VoterID is the caller-supplied voter identity. Typically an email
	// address, but treated as an opaque non-empty string and never validated
	// as one.
	VoterID string
}
