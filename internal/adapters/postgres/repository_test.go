package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jsamuelsen/quote-aggregator/internal/domain"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "idx_votes_quote_voter"}

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("creating vote: %w", unique)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestQuoteModelRoundTrip(t *testing.T) {
	quote := &domain.Quote{
		ID:                 "0b68f7f2-0c4b-4df0-bf39-bd4c6f7f2a61",
		Text:               "D'oh!",
		Source:             domain.SourceCharacter,
		Image:              "https://example.com/homer.png",
		Character:          "Homer Simpson",
		CharacterDirection: "Left",
		Votes:              3,
	}

	row := quoteModelFromDomain(quote)
	assert.Equal(t, "quotes", row.TableName())
	assert.Equal(t, quote, row.toDomain())
}

func TestStoreError(t *testing.T) {
	err := storeError(errors.New("connection refused"))

	assert.True(t, domain.IsUnavailable(err))
	assert.Contains(t, err.Error(), "quote-store")
}
