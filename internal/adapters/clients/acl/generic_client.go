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

// ServiceNameGeneric identifies the generic quote provider in errors, logs,
// and health reports.
const ServiceNameGeneric = "generic-quote-api"

// HeaderAPIKey is the generic provider's API key header.
const HeaderAPIKey = "X-Api-Key"

// GenericQuoteClientConfig contains configuration for the generic quote
// client.
type GenericQuoteClientConfig struct {
	// Client is the instrumented HTTP client, with BaseURL pointing at the
	// generic quote API. The provider's API key should be injected through
	// the client's AuthFunc (see APIKeyAuth).
	Client *clients.Client

	// Logger is the structured logger.
	Logger *slog.Logger
}

// GenericQuoteClient implements ports.QuoteSource for the generic quote
// provider (Ninjas-style API). Quotes carry an author and a category;
// character fields stay empty.
type GenericQuoteClient struct {
	client *clients.Client
	logger *slog.Logger
}

// APIKeyAuth returns a clients.Config AuthFunc that sets the provider's
// API key header on every attempt.
func APIKeyAuth(key string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set(HeaderAPIKey, key)
	}
}

// NewGenericQuoteClient creates a new generic quote adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewGenericQuoteClient(cfg GenericQuoteClientConfig) *GenericQuoteClient {
	if cfg.Client == nil {
		panic("GenericQuoteClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GenericQuoteClient{
		client: cfg.Client,
		logger: logger.With(slog.String("source", string(domain.SourceGeneric))),
	}
}

// Source identifies this adapter's quote source.
// Implements ports.QuoteSource.
func (c *GenericQuoteClient) Source() domain.Source {
	return domain.SourceGeneric
}

// FetchOne fetches one random quote from the provider. A non-empty filter
// narrows the draw to quotes in that category.
// Implements ports.QuoteSource.
func (c *GenericQuoteClient) FetchOne(ctx context.Context, filter string) (*domain.Quote, error) {
	path := quotesPath
	if filter != "" {
		path += "?category=" + url.QueryEscape(filter)
	}

	c.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))

	resp, err := c.client.Get(ctx, path)
	if err != nil {
		return nil, MapHTTPError(nil, err, ServiceNameGeneric)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return nil, MapHTTPError(resp, nil, ServiceNameGeneric)
	}

	dto, err := decodeFirst[genericQuoteDTO](resp.Body, ServiceNameGeneric)
	if err != nil {
		return nil, err
	}

	quote, err := translateGenericQuote(dto)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "fetched generic quote",
		slog.String("author", quote.Author),
		slog.String("category", quote.Category))

	return quote, nil
}

// Name returns the health check name for this provider.
// Implements ports.HealthChecker.
func (c *GenericQuoteClient) Name() string {
	return ServiceNameGeneric
}

// Check verifies connectivity by fetching a quote.
// Implements ports.HealthChecker.
func (c *GenericQuoteClient) Check(ctx context.Context) error {
	resp, err := c.client.Get(ctx, quotesPath)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generic quote API returned status %d", resp.StatusCode)
	}

	return nil
}
