// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrConflict, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-aggregator/internal/domain"
)

// QuoteSource fetches a single quote from one named upstream provider.
// Adapters implement this per provider and translate the provider's wire
// format into the candidate domain.Quote shape.
type QuoteSource interface {
	// Source returns the provider this adapter fetches from.
	Source() domain.Source

	// FetchOne retrieves one quote from the provider. The filter is an
	// opaque provider-specific string (e.g. a character name); empty means
	// unfiltered. The returned quote is a candidate: it has no ID and no
	// votes until it is resolved against the store.
	//
	// Returns domain.ErrUnavailable if the provider is unreachable or
	// violates its contract (e.g. an empty result set).
	FetchOne(ctx context.Context, filter string) (*domain.Quote, error)
}

// QuoteRepository is the transactional store behind deduplication, the vote
// ledger, and the leaderboard. All single calls are atomic; RecordVote is
// the only multi-step atomic scope.
type QuoteRepository interface {
	// FindByText looks up a quote by exact text match.
	// Returns domain.ErrNotFound if no quote has this text.
	FindByText(ctx context.Context, text string) (*domain.Quote, error)

	// FindByID looks up a quote by its identifier.
	// Returns domain.ErrNotFound if the quote does not exist.
	FindByID(ctx context.Context, id string) (*domain.Quote, error)

	// CreateQuote persists a new quote, assigning its ID if empty.
	// The store enforces text uniqueness: a concurrent insert of the same
	// text makes exactly one caller win; the loser gets domain.ErrConflict
	// and must re-read.
	CreateQuote(ctx context.Context, quote *domain.Quote) (*domain.Quote, error)

	// VoteExists reports whether the ledger already holds a vote for the
	// (quoteID, voterID) pair. This is an optimization for a friendly
	// error; RecordVote's uniqueness constraint is the source of truth.
	VoteExists(ctx context.Context, quoteID, voterID string) (bool, error)

	// RecordVote atomically appends the vote to the ledger and increments
	// the quote's counter by one, returning the updated quote. The two
	// writes are a single unit: neither survives without the other.
	//
	// Returns domain.ErrNotFound if the quote does not exist and
	// domain.ErrConflict if the pair is already in the ledger.
	RecordVote(ctx context.Context, vote *domain.Vote) (*domain.Quote, error)

	// TopByVotes returns up to limit quotes ordered by votes descending,
	// ties broken by ascending quote ID. An empty store yields an empty
	// slice, not an error.
	TopByVotes(ctx context.Context, limit int) ([]*domain.Quote, error)
}
