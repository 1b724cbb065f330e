package members

import (
	"context"
	"fmt"
	"time"

	"chitfund-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	DB *gorm.DB
	// QueryTimeout bounds each persistence round-trip; zero means no bound.
	QueryTimeout time.Duration
}

func (s *Service) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.QueryTimeout)
}

// ResolveOrCreate returns the Member with the given (userID, phone), creating
// it with a zero ledger balance when absent. The insert uses ON CONFLICT DO
// NOTHING on the (user_id, phone) unique index, so concurrent calls cannot
// produce duplicates where a check-then-create would race.
// Pass the transaction handle when resolving inside a larger write.
func ResolveOrCreate(ctx context.Context, db *gorm.DB, userID uuid.UUID, name string, phone int64) (*domain.Member, error) {
	m := &domain.Member{
		UserID:             userID,
		Name:               name,
		Phone:              phone,
		CalculatedBidPrice: 0,
	}
	res := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "phone"}},
		DoNothing: true,
	}).Create(m)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to resolve member: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return m, nil
	}
	// Conflict: the row already existed, fetch it. Name is not compared; the
	// stored member wins, identity is phone alone.
	var existing domain.Member
	if err := db.WithContext(ctx).
		Where("user_id = ? AND phone = ?", userID, phone).
		First(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve member: %w", err)
	}
	return &existing, nil
}

// ResolveOrCreate on the service uses the service DB handle and timeout.
func (s *Service) ResolveOrCreate(ctx context.Context, userID uuid.UUID, name string, phone int64) (*domain.Member, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	return ResolveOrCreate(ctx, s.DB, userID, name, phone)
}

// Create adds a standalone member. The initial ledger balance is seeded with
// the summed price of the user's already-closed listings, so a late joiner
// starts level with members who sat through those pools.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name string, phone int64) (*domain.Member, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	var seed float64
	if err := s.DB.WithContext(ctx).Model(&domain.Listing{}).
		Where("user_id = ? AND end_date <= ?", userID, time.Now()).
		Select("COALESCE(SUM(price), 0)").
		Scan(&seed).Error; err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	m := &domain.Member{
		UserID:             userID,
		Name:               name,
		Phone:              phone,
		CalculatedBidPrice: seed,
	}
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "phone"}},
		DoNothing: true,
	}).Create(m)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicateMember
	}
	return m, nil
}

// ListForUser returns all members owned by the user.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Member, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	var out []domain.Member
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
