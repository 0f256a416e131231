package acl

import (
	"encoding/json"
	"io"

	"github.com/jsamuelsen/quote-aggregator/internal/domain"
)

// characterQuoteDTO is the wire shape of the character quote provider.
// Internal to the ACL, never exposed to callers.
type characterQuoteDTO struct {
	Quote              string `json:"quote"`
	Character          string `json:"character"`
	Image              string `json:"image"`
	CharacterDirection string `json:"characterDirection"`
}

// genericQuoteDTO is the wire shape of the generic quote provider.
type genericQuoteDTO struct {
	Quote    string `json:"quote"`
	Author   string `json:"author"`
	Category string `json:"category"`
}

// translateCharacterQuote converts a character provider payload to a domain
// quote candidate. The candidate carries no ID or vote count; the store
// assigns those when the quote is first persisted.
func translateCharacterQuote(ext *characterQuoteDTO) (*domain.Quote, error) {
	if ext.Quote == "" {
		return nil, domain.NewUnavailableError(ServiceNameCharacter, "provider returned quote without text")
	}

	return &domain.Quote{
		Text:               ext.Quote,
		Source:             domain.SourceCharacter,
		Character:          ext.Character,
		Image:              ext.Image,
		CharacterDirection: ext.CharacterDirection,
	}, nil
}

// translateGenericQuote converts a generic provider payload to a domain
// quote candidate.
func translateGenericQuote(ext *genericQuoteDTO) (*domain.Quote, error) {
	if ext.Quote == "" {
		return nil, domain.NewUnavailableError(ServiceNameGeneric, "provider returned quote without text")
	}

	return &domain.Quote{
		Text:     ext.Quote,
		Source:   domain.SourceGeneric,
		Author:   ext.Author,
		Category: ext.Category,
	}, nil
}

// decodeFirst decodes a provider array response and returns element zero.
//
// Both providers answer with a JSON array even for a single random quote.
// An empty array breaks that contract and the source is reported
// unavailable rather than inventing an empty quote.
func decodeFirst[T any](body io.Reader, serviceName string) (*T, error) {
	var items []T
	if err := json.NewDecoder(body).Decode(&items); err != nil {
		return nil, domain.NewUnavailableError(serviceName, "malformed provider response: "+err.Error())
	}

	if len(items) == 0 {
		return nil, domain.NewUnavailableError(serviceName, "provider returned no quotes")
	}

	return &items[0], nil
}
