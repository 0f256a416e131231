// Package postgres implements ports.QuoteRepository on PostgreSQL via GORM.
// Deduplication and vote uniqueness are enforced by unique indexes; the
// repository translates constraint violations into domain errors.
package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jsamuelsen/quote-aggregator/internal/domain"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// Config contains settings for opening the database.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string

	// MaxOpenConns bounds the connection pool. Zero keeps the driver default.
	MaxOpenConns int

	// MaxIdleConns bounds idle pooled connections. Zero keeps the default.
	MaxIdleConns int

	// AutoMigrate creates/updates the quotes and votes tables at startup.
	AutoMigrate bool
}

// Repository is the PostgreSQL implementation of ports.QuoteRepository.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to PostgreSQL and returns a ready repository.
func Open(cfg Config, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, domain.NewUnavailableError("quote-store", err.Error())
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, domain.NewUnavailableError("quote-store", err.Error())
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&quoteModel{}, &voteModel{}); err != nil {
			return nil, domain.NewUnavailableError("quote-store", "migrating schema: "+err.Error())
		}
	}

	return NewRepository(db, logger), nil
}

// NewRepository wraps an existing GORM handle.
func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}

	return &Repository{db: db, logger: logger}
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// FindByText looks up a quote by exact text match.
func (r *Repository) FindByText(ctx context.Context, text string) (*domain.Quote, error) {
	var row quoteModel

	err := r.db.WithContext(ctx).
		Where("quote_text = ?", text).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("quote", "")
		}

		return nil, storeError(err)
	}

	return row.toDomain(), nil
}

// FindByID looks up a quote by its identifier.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Quote, error) {
	var row quoteModel

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("quote", id)
		}

		return nil, storeError(err)
	}

	return row.toDomain(), nil
}

// CreateQuote inserts a new quote. The unique index on quote_text decides
// insert races: the loser gets domain.ErrConflict and should re-read.
func (r *Repository) CreateQuote(ctx context.Context, quote *domain.Quote) (*domain.Quote, error) {
	row := quoteModelFromDomain(quote)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.NewConflictError("quote", "text already stored")
		}

		return nil, storeError(err)
	}

	return row.toDomain(), nil
}

// VoteExists reports whether the ledger already holds the pair.
func (r *Repository) VoteExists(ctx context.Context, quoteID, voterID string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("quote_id = ? AND voter_id = ?", quoteID, voterID).
		Count(&count).
		Error
	if err != nil {
		return false, storeError(err)
	}

	return count > 0, nil
}

// RecordVote appends the ledger entry and increments the quote counter
// inside one transaction; a failure at any step rolls back both writes.
func (r *Repository) RecordVote(ctx context.Context, vote *domain.Vote) (*domain.Quote, error) {
	row := voteModel{
		ID:      vote.ID,
		QuoteID: vote.QuoteID,
		VoterID: vote.VoterID,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	var updated quoteModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quote quoteModel
		if err := tx.Where("id = ?", vote.QuoteID).First(&quote).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("quote", vote.QuoteID)
			}

			return storeError(err)
		}

		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.NewConflictError("vote", "pair already in ledger")
			}

			return storeError(err)
		}

		result := tx.Model(&quoteModel{}).
			Where("id = ?", vote.QuoteID).
			UpdateColumn("votes", gorm.Expr("votes + 1"))
		if result.Error != nil {
			return storeError(result.Error)
		}

		if err := tx.Where("id = ?", vote.QuoteID).First(&updated).Error; err != nil {
			return storeError(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated.toDomain(), nil
}

// TopByVotes returns up to limit quotes ordered by votes descending, ties
// broken by ascending quote ID.
func (r *Repository) TopByVotes(ctx context.Context, limit int) ([]*domain.Quote, error) {
	var rows []quoteModel

	err := r.db.WithContext(ctx).
		Order("votes DESC, id ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, storeError(err)
	}

	quotes := make([]*domain.Quote, 0, len(rows))
	for _, row := range rows {
		quotes = append(quotes, row.toDomain())
	}

	return quotes, nil
}

// Name returns the health check name for this repository.
// Implements ports.HealthChecker.
func (r *Repository) Name() string {
	return "quote-store"
}

// Check pings the database.
// Implements ports.HealthChecker.
func (r *Repository) Check(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func storeError(err error) error {
	return domain.NewUnavailableError("quote-store", err.Error())
}
