package database

import (
	"context"
	"time"

	"chitfund-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind connection poolers like PgBouncer.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Member{},
		&domain.Listing{},
		&domain.ListingMember{},
		&domain.SettlementEvent{},
	)
}

const (
	retryAttempts = 3
	retryBaseWait = 100 * time.Millisecond
)

// WithRetry runs fn up to 3 times with linear backoff, for transient storage
// faults at the persistence boundary. Domain errors should not pass through
// here; callers retry whole read/write round-trips, not business decisions.
func WithRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if attempt < retryAttempts {
			log.Warn().Str("op", op).Int("attempt", attempt).Err(err).Msg("storage call failed, retrying")
			select {
			case <-time.After(time.Duration(attempt) * retryBaseWait):
			case <-ctx.Done():
				return err
			}
		}
	}
	return err
}
