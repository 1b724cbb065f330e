package database

import (
	"context"
	"errors"
	"testing"

	"chitfund-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAutoMigrate_CreatesAllTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, AutoMigrate(db))

	for _, model := range []interface{}{
		&domain.User{}, &domain.Member{}, &domain.Listing{},
		&domain.ListingMember{}, &domain.SettlementEvent{},
	} {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
}

func TestWithRetry_SucceedsAfterTransientFault(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), "test op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("down")
	err := WithRetry(context.Background(), "test op", func() error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetry(ctx, "test op", func() error {
		calls++
		return errors.New("down")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
