// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quote-aggregator/internal/domain"
	"github.com/jsamuelsen/quote-aggregator/internal/platform/logging"
	"github.com/jsamuelsen/quote-aggregator/internal/ports"
)

// Leaderboard limit bounds. Caller-supplied limits are clamped into this
// range rather than rejected.
const (
	MinTopLimit = 5
	MaxTopLimit = 20
)

// QuoteService orchestrates the aggregation pipeline: fetch from an upstream
// provider, resolve against the deduplicating store, record votes, and serve
// the leaderboard. It depends on port interfaces, not concrete
// implementations.
type QuoteService struct {
	repo    ports.QuoteRepository
	sources map[domain.Source]ports.QuoteSource
	logger  *slog.Logger
}

// QuoteServiceConfig contains dependencies for the quote service.
type QuoteServiceConfig struct {
	Repository ports.QuoteRepository
	Sources    []ports.QuoteSource
	Logger     *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
// Panics if Repository is nil or Sources is empty. Defaults the logger to
// slog.Default() if nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Repository == nil {
		panic("QuoteService: Repository is required")
	}

	if len(cfg.Sources) == 0 {
		panic("QuoteService: at least one QuoteSource is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sources := make(map[domain.Source]ports.QuoteSource, len(cfg.Sources))
	for _, src := range cfg.Sources {
		sources[src.Source()] = src
	}

	return &QuoteService{
		repo:    cfg.Repository,
		sources: sources,
		logger:  logger.With(slog.String("component", "app.QuoteService")),
	}
}

// FetchQuote retrieves one quote from the named source and resolves it to
// the canonical stored record. The filter is passed through to the provider
// untouched; empty means unfiltered.
func (s *QuoteService) FetchQuote(ctx context.Context, source domain.Source, filter string) (*domain.Quote, error) {
	logger := s.ctxLogger(ctx).With(slog.String("source", string(source)))

	src, ok := s.sources[source]
	if !ok {
		return nil, fmt.Errorf("selecting source: %w",
			domain.NewValidationError("source", "unknown quote source "+string(source)))
	}

	candidate, err := src.FetchOne(ctx, filter)
	if err != nil {
		logger.ErrorContext(ctx, "failed to fetch quote", slog.Any("error", err))
		return nil, fmt.Errorf("fetching from %s: %w", source, err)
	}

	quote, err := s.resolve(ctx, candidate)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "fetched quote",
		slog.String("quote_id", quote.ID),
		slog.Int("votes", quote.Votes),
	)

	return quote, nil
}

// resolve returns the canonical stored record for a candidate quote: the
// existing record if the text is already known, otherwise a newly created
// one with zero votes. The existing record always wins; differing candidate
// fields are discarded, never merged.
func (s *QuoteService) resolve(ctx context.Context, candidate *domain.Quote) (*domain.Quote, error) {
	// Dedup keys on the text as it would be stored, since the storage
	// rule may shorten the candidate's text.
	stored := newStoredQuote(candidate)

	existing, err := s.repo.FindByText(ctx, stored.Text)
	if err == nil {
		return existing, nil
	}

	if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("looking up quote text: %w", err)
	}

	created, err := s.repo.CreateQuote(ctx, stored)
	if err == nil {
		return created, nil
	}

	// A concurrent resolve won the insert race; its record is canonical.
	if domain.IsConflict(err) {
		winner, lookupErr := s.repo.FindByText(ctx, stored.Text)
		if lookupErr != nil {
			return nil, fmt.Errorf("re-reading after insert race: %w", lookupErr)
		}

		return winner, nil
	}

	return nil, fmt.Errorf("creating quote: %w", err)
}

// newStoredQuote builds the record to persist for a first-seen candidate.
// Only the fields relevant to the candidate's source are carried, and the
// source text rule (generic truncation) applies here, on the create path
// only.
func newStoredQuote(candidate *domain.Quote) *domain.Quote {
	stored := &domain.Quote{
		Text:   candidate.Source.StorageText(candidate.Text),
		Source: candidate.Source,
		Votes:  0,
	}

	switch candidate.Source {
	case domain.SourceCharacter:
		stored.Character = candidate.Character
		stored.CharacterDirection = candidate.CharacterDirection
		stored.Image = candidate.Image
	case domain.SourceGeneric:
		stored.Author = candidate.Author
		stored.Category = candidate.Category
	}

	return stored
}

// Vote records a single vote by voterID for the quote with quoteID and
// returns the quote with its updated counter.
func (s *QuoteService) Vote(ctx context.Context, quoteID, voterID string) (*domain.Quote, error) {
	logger := s.ctxLogger(ctx).With(slog.String("quote_id", quoteID))

	if quoteID == "" {
		return nil, fmt.Errorf("validating input: %w", domain.NewValidationError("quoteId", "cannot be empty"))
	}

	if voterID == "" {
		return nil, fmt.Errorf("validating input: %w", domain.NewValidationError("voterId", "cannot be empty"))
	}

	if _, err := s.repo.FindByID(ctx, quoteID); err != nil {
		return nil, fmt.Errorf("loading quote: %w", err)
	}

	// Friendly pre-check; the ledger's uniqueness constraint inside
	// RecordVote is the actual guarantee under race.
	voted, err := s.repo.VoteExists(ctx, quoteID, voterID)
	if err != nil {
		return nil, fmt.Errorf("checking ledger: %w", err)
	}

	if voted {
		return nil, domain.NewAlreadyVotedError(quoteID, voterID)
	}

	quote, err := s.repo.RecordVote(ctx, &domain.Vote{QuoteID: quoteID, VoterID: voterID})
	if err != nil {
		if domain.IsConflict(err) {
			return nil, domain.NewAlreadyVotedError(quoteID, voterID)
		}

		return nil, fmt.Errorf("recording vote: %w", err)
	}

	logger.InfoContext(ctx, "vote recorded", slog.Int("votes", quote.Votes))

	return quote, nil
}

// TopQuotes returns the leaderboard: up to limit quotes ordered by votes
// descending, ties broken by ascending quote ID. The limit is clamped into
// [MinTopLimit, MaxTopLimit] regardless of caller input.
func (s *QuoteService) TopQuotes(ctx context.Context, limit int) ([]*domain.Quote, error) {
	quotes, err := s.repo.TopByVotes(ctx, ClampTopLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}

	return quotes, nil
}

// ClampTopLimit forces a leaderboard limit into [MinTopLimit, MaxTopLimit].
func ClampTopLimit(limit int) int {
	if limit < MinTopLimit {
		return MinTopLimit
	}

	if limit > MaxTopLimit {
		return MaxTopLimit
	}

	return limit
}

// ctxLogger prefers the request-scoped logger (with request/correlation IDs)
// over the service logger.
func (s *QuoteService) ctxLogger(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}

	return s.logger
}
