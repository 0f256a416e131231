package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/quote-aggregator/internal/adapters/clients"
	"github.com/jsamuelsen/quote-aggregator/internal/domain"
	"github.com/jsamuelsen/quote-aggregator/internal/platform/logging"
)

// ServiceNameCharacter identifies the character quote provider in errors,
// logs, and health reports.
const ServiceNameCharacter = "character-quote-api"

// quotesPath is the shared provider endpoint for random quotes.
const quotesPath = "/quotes"

// CharacterQuoteClientConfig contains configuration for the character
// quote client.
type CharacterQuoteClientConfig struct {
	// Client is the instrumented HTTP client, with BaseURL pointing at the
	// character quote API.
	Client *clients.Client

	// Logger is the structured logger.
	Logger *slog.Logger
}

// CharacterQuoteClient implements ports.QuoteSource for the character quote
// provider (Simpsons-style API). Quotes carry a character name, portrait
// image, and facing direction; author and category stay empty.
type CharacterQuoteClient struct {
	client *clients.Client
	logger *slog.Logger
}

// NewCharacterQuoteClient creates a new character quote adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewCharacterQuoteClient(cfg CharacterQuoteClientConfig) *CharacterQuoteClient {
	if cfg.Client == nil {
		panic("CharacterQuoteClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CharacterQuoteClient{
		client: cfg.Client,
		logger: logger.With(slog.String("source", string(domain.SourceCharacter))),
	}
}

// Source identifies this adapter's quote source.
// Implements ports.QuoteSource.
func (c *CharacterQuoteClient) Source() domain.Source {
	return domain.SourceCharacter
}

// FetchOne fetches one random quote from the provider. A non-empty filter
// narrows the draw to quotes by that character.
// Implements ports.QuoteSource.
func (c *CharacterQuoteClient) FetchOne(ctx context.Context, filter string) (*domain.Quote, error) {
	path := quotesPath
	if filter != "" {
		path += "?character=" + url.QueryEscape(filter)
	}

	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))

	resp, err := c.client.Get(ctx, path)
	if err != nil {
		return nil, MapHTTPError(nil, err, ServiceNameCharacter)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return nil, MapHTTPError(resp, nil, ServiceNameCharacter)
	}

	dto, err := decodeFirst[characterQuoteDTO](resp.Body, ServiceNameCharacter)
	if err != nil {
		return nil, err
	}

	quote, err := translateCharacterQuote(dto)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched character quote",
		slog.String("character", quote.Character))

	return quote, nil
}

// Name returns the health check name for this provider.
// Implements ports.HealthChecker.
func (c *CharacterQuoteClient) Name() string {
	return ServiceNameCharacter
}

// Check verifies connectivity by fetching a quote.
// Implements ports.HealthChecker.
func (c *CharacterQuoteClient) Check(ctx context.Context) error {
	resp, err := c.client.Get(ctx, quotesPath)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("character quote API returned status %d", resp.StatusCode)
	}

	return nil
}
