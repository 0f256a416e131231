// Package memory provides an in-memory QuoteRepository.
// It backs the local profile and tests; the mutex-serialized critical
// sections mirror the uniqueness guarantees the Postgres adapter gets from
// its unique indexes.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-aggregator/internal/domain"
)

// Store is a thread-safe in-memory implementation of ports.QuoteRepository.
type Store struct {
	mu sync.RWMutex

	quotes map[string]*domain.Quote // by ID
	byText map[string]string        // text -> ID
	votes  map[voteKey]*domain.Vote
}

type voteKey struct {
	quoteID string
	voterID string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		quotes: make(map[string]*domain.Quote),
		byText: make(map[string]string),
		votes:  make(map[voteKey]*domain.Vote),
	}
}

// FindByText looks up a quote by exact text match.
func (s *Store) FindByText(_ context.Context, text string) (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byText[text]
	if !ok {
		return nil, domain.NewNotFoundError("quote", "")
	}

	return copyQuote(s.quotes[id]), nil
}

// FindByID looks up a quote by its identifier.
func (s *Store) FindByID(_ context.Context, id string) (*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quote, ok := s.quotes[id]
	if !ok {
		return nil, domain.NewNotFoundError("quote", id)
	}

	return copyQuote(quote), nil
}

// CreateQuote persists a new quote, assigning an ID if empty. Text
// uniqueness is enforced under the write lock: a second insert of the same
// text gets domain.ErrConflict.
func (s *Store) CreateQuote(_ context.Context, quote *domain.Quote) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byText[quote.Text]; exists {
		return nil, domain.NewConflictError("quote", "text already stored")
	}

	stored := copyQuote(quote)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	s.quotes[stored.ID] = stored
	s.byText[stored.Text] = stored.ID

	return copyQuote(stored), nil
}

// VoteExists reports whether the ledger holds a vote for the pair.
func (s *Store) VoteExists(_ context.Context, quoteID, voterID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.votes[voteKey{quoteID: quoteID, voterID: voterID}]

	return exists, nil
}

// RecordVote appends the vote and increments the quote counter as one unit
// under the write lock.
func (s *Store) RecordVote(_ context.Context, vote *domain.Vote) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quote, ok := s.quotes[vote.QuoteID]
	if !ok {
		return nil, domain.NewNotFoundError("quote", vote.QuoteID)
	}

	key := voteKey{quoteID: vote.QuoteID, voterID: vote.VoterID}
	if _, exists := s.votes[key]; exists {
		return nil, domain.NewConflictError("vote", "pair already in ledger")
	}

	stored := &domain.Vote{
		ID:      vote.ID,
		QuoteID: vote.QuoteID,
		VoterID: vote.VoterID,
	}
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	s.votes[key] = stored
	quote.Votes++

	return copyQuote(quote), nil
}

// TopByVotes returns up to limit quotes ordered by votes descending, ties
// broken by ascending quote ID.
func (s *Store) TopByVotes(_ context.Context, limit int) ([]*domain.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quotes := make([]*domain.Quote, 0, len(s.quotes))
	for _, quote := range s.quotes {
		quotes = append(quotes, copyQuote(quote))
	}

	sort.Slice(quotes, func(i, j int) bool {
		if quotes[i].Votes != quotes[j].Votes {
			return quotes[i].Votes > quotes[j].Votes
		}

		return quotes[i].ID < quotes[j].ID
	})

	if len(quotes) > limit {
		quotes = quotes[:limit]
	}

	return quotes, nil
}

// Name returns the health check name for this store.
// Implements ports.HealthChecker.
func (s *Store) Name() string {
	return "quote-store"
}

// Check implements ports.HealthChecker. The in-memory store is always ready.
func (s *Store) Check(_ context.Context) error {
	return nil
}

func copyQuote(quote *domain.Quote) *domain.Quote {
	copied := *quote
	return &copied
}
