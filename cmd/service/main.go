// Package main is the entry point for the service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/quote-aggregator/internal/adapters/clients"
	"github.com/jsamuelsen/quote-aggregator/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-aggregator/internal/adapters/http"
	"github.com/jsamuelsen/quote-aggregator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-aggregator/internal/adapters/memory"
	"github.com/jsamuelsen/quote-aggregator/internal/adapters/postgres"
	"github.com/jsamuelsen/quote-aggregator/internal/app"
	"github.com/jsamuelsen/quote-aggregator/internal/domain"
	"github.com/jsamuelsen/quote-aggregator/internal/platform/config"
	"github.com/jsamuelsen/quote-aggregator/internal/platform/logging"
	"github.com/jsamuelsen/quote-aggregator/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-aggregator/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 5. Create health registry
	healthRegistry := ports.NewHealthRegistry()

	// 6. Open the quote store
	var (
		repo        ports.QuoteRepository
		repoChecker ports.HealthChecker
	)

	switch cfg.Database.Driver {
	case "postgres":
		pg, openErr := postgres.Open(postgres.Config{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			AutoMigrate:  cfg.Database.AutoMigrate,
		}, logger)
		if openErr != nil {
			return fmt.Errorf("opening quote store: %w", openErr)
		}

		defer func() {
			if closeErr := pg.Close(); closeErr != nil {
				logger.Error("closing quote store", slog.Any("error", closeErr))
			}
		}()

		repo, repoChecker = pg, pg

	default:
		store := memory.NewStore()
		repo, repoChecker = store, store
	}

	if err := healthRegistry.Register(repoChecker); err != nil {
		return fmt.Errorf("registering quote store health check: %w", err)
	}

	// 7. Create instrumented HTTP clients for the upstream providers
	characterHTTP, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Character.BaseURL,
		ServiceName: cfg.Services.Character.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating character quote client: %w", err)
	}

	var genericAuth func(req *nethttp.Request)
	if cfg.Services.Generic.APIKey != "" {
		genericAuth = acl.APIKeyAuth(cfg.Services.Generic.APIKey)
	}

	genericHTTP, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Generic.BaseURL,
		ServiceName: cfg.Services.Generic.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		AuthFunc:    genericAuth,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating generic quote client: %w", err)
	}

	// 8. Create quote source adapters (ACL pattern)
	characterSource := acl.NewCharacterQuoteClient(acl.CharacterQuoteClientConfig{
		Client: characterHTTP,
		Logger: logger,
	})

	genericSource := acl.NewGenericQuoteClient(acl.GenericQuoteClientConfig{
		Client: genericHTTP,
		Logger: logger,
	})

	for _, checker := range []ports.HealthChecker{characterSource, genericSource} {
		if err := healthRegistry.Register(checker); err != nil {
			return fmt.Errorf("registering provider health check: %w", err)
		}
	}

	// 9. Create quote service (application layer)
	quoteService := app.NewQuoteService(app.QuoteServiceConfig{
		Repository: repo,
		Sources:    []ports.QuoteSource{characterSource, genericSource},
		Logger:     logger,
	})

	// 10. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo)
	quoteHandler := handlers.NewQuoteHandler(quoteService, map[string]string{
		string(domain.SourceCharacter): cfg.Services.Character.BaseURL,
		string(domain.SourceGeneric):   cfg.Services.Generic.BaseURL,
	})

	// 11. Create HTTP server
	server := http.New(&cfg.Server, logger)

	// 12. Setup router with all middleware and routes
	routerCfg := http.NewDefaultRouterConfig(logger, &cfg.App, healthHandler, quoteHandler)
	http.SetupRouter(server.Engine(), routerCfg)

	// 13. Start server (non-blocking)
	serverErr := server.Start()

	// 14. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	// Listen for OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		// Server error during startup or runtime
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	// Graceful shutdown sequence
	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
