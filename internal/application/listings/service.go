package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chitfund-backend/internal/application/members"
	"chitfund-backend/internal/domain"
	"chitfund-backend/internal/infrastructure/database"
	"chitfund-backend/internal/lifecycle"
	"chitfund-backend/internal/proration"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
	// QueryTimeout bounds each persistence round-trip; zero means no bound.
	QueryTimeout time.Duration
}

// MemberInput is one raw roster entry from the create request. The same
// (name, phone) may appear more than once; each appearance is one unit.
type MemberInput struct {
	Name  string `json:"name"`
	Phone int64  `json:"phone"`
}

type CreateListingInput struct {
	Title     string
	Price     float64
	StartDate time.Time
	EndDate   time.Time
	Members   []MemberInput
}

func (s *Service) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.QueryTimeout)
}

// CreateListing resolves the raw member list into Member rows and persists the
// listing with its ordered roster in one transaction, so a fault cannot leave
// a listing referencing half a roster. CurrentMonth is the calendar-month
// distance from startDate at this instant and is frozen thereafter.
func (s *Service) CreateListing(ctx context.Context, userID uuid.UUID, in CreateListingInput) (*domain.Listing, error) {
	if len(in.Members) == 0 {
		return nil, proration.ErrInvalidRoster
	}
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	now := time.Now()
	currentMonth := lifecycle.MonthsBetween(now, in.StartDate)

	listing := &domain.Listing{
		UserID:       userID,
		Title:        in.Title,
		Price:        in.Price,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		CurrentBid:   0,
		CurrentMonth: &currentMonth,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		roster := make([]domain.ListingMember, 0, len(in.Members))
		for i, md := range in.Members {
			m, err := members.ResolveOrCreate(ctx, tx, userID, md.Name, md.Phone)
			if err != nil {
				return err
			}
			roster = append(roster, domain.ListingMember{Position: i, MemberID: m.MemberID})
		}
		listing.Roster = roster
		if err := tx.Create(listing).Error; err != nil {
			return fmt.Errorf("Failed to create listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// ViewAllActive returns the user's listings whose endDate is still in the
// future. A listing ending today at an earlier hour is already archived.
func (s *Service) ViewAllActive(ctx context.Context, userID uuid.UUID) ([]domain.Listing, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	var listings []domain.Listing
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND end_date > ?", userID, time.Now()).
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("Failed to load listings: %w", err)
	}
	return listings, nil
}

// ListingDetail is the single-listing read: the stored record with its roster
// expanded to full Member rows, plus elapsedMonths derived fresh from the
// clock (the stored currentMonth stays frozen at creation).
type ListingDetail struct {
	domain.Listing
	Members       []domain.Member  `json:"members"`
	Status        lifecycle.Status `json:"status"`
	ElapsedMonths int              `json:"elapsedMonths"`
}

// GetListing returns one listing with its roster expanded, in roster order.
// The read is scoped to the owning user; another user's listing id behaves
// like a missing one. Archived listings get currentMonth projected to null
// on the way out.
func (s *Service) GetListing(ctx context.Context, userID, id uuid.UUID) (*ListingDetail, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	listing, err := s.loadWithRoster(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.UserID != userID {
		return nil, ErrListingNotFound
	}

	now := time.Now()
	detail := &ListingDetail{
		Listing:       *listing,
		Members:       make([]domain.Member, 0, len(listing.Roster)),
		Status:        lifecycle.Classify(listing.EndDate, now),
		ElapsedMonths: lifecycle.MonthsBetween(now, listing.StartDate),
	}
	for _, rm := range listing.Roster {
		if rm.Member != nil {
			detail.Members = append(detail.Members, *rm.Member)
		}
	}
	if detail.Status == lifecycle.Archived {
		detail.CurrentMonth = nil
	}
	return detail, nil
}

// Archived returns the user's ended listings with currentMonth projected to
// null. The projection is read-time only; the stored value is untouched.
func (s *Service) Archived(ctx context.Context, userID uuid.UUID) ([]domain.Listing, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	var listings []domain.Listing
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND end_date <= ?", userID, time.Now()).
		Find(&listings).Error; err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].CurrentMonth = nil
	}
	return listings, nil
}

// settlementData is the audit payload appended with each ledger credit.
type settlementData struct {
	OldBid     float64 `json:"oldBid"`
	NewBid     float64 `json:"newBid"`
	PerUnit    float64 `json:"perUnit"`
	Units      int     `json:"units"`
	RosterSize int     `json:"rosterSize"`
}

// UpdateBid records a new auction bid and settles it into every roster
// member's durable ledger: each unit earns (price - newBid) / rosterSize, so a
// member holding k units is credited k times that. Listing update, member
// credits, and audit events commit in one transaction so a failure cannot
// leave some members credited and others not.
// Callers must invoke this at most once per real bid change; the settlement
// itself does not deduplicate.
func (s *Service) UpdateBid(ctx context.Context, userID, id uuid.UUID, newBid float64) (*domain.Listing, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	listing, err := s.loadWithRoster(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.UserID != userID {
		return nil, ErrListingNotFound
	}
	if lifecycle.Classify(listing.EndDate, time.Now()) == lifecycle.Archived {
		return nil, ErrListingExpired
	}

	perUnit, err := proration.PerUnit(listing.Price, newBid, len(listing.Roster))
	if err != nil {
		return nil, err
	}

	// Unit counts per distinct member; duplicates earn once per unit.
	units := make(map[uuid.UUID]int)
	order := make([]uuid.UUID, 0, len(listing.Roster))
	for _, rm := range listing.Roster {
		if units[rm.MemberID] == 0 {
			order = append(order, rm.MemberID)
		}
		units[rm.MemberID]++
	}

	oldBid := listing.CurrentBid
	now := time.Now()

	err = database.WithRetry(ctx, "settle bid", func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, memberID := range order {
				amount := perUnit * float64(units[memberID])
				if err := tx.Model(&domain.Member{}).
					Where("member_id = ?", memberID).
					Update("calculated_bid_price", gorm.Expr("calculated_bid_price + ?", amount)).Error; err != nil {
					return fmt.Errorf("failed to update member ledger: %w", err)
				}
				data, err := json.Marshal(settlementData{
					OldBid:     oldBid,
					NewBid:     newBid,
					PerUnit:    perUnit,
					Units:      units[memberID],
					RosterSize: len(listing.Roster),
				})
				if err != nil {
					return err
				}
				event := &domain.SettlementEvent{
					ListingID: listing.ListingID,
					MemberID:  memberID,
					UserID:    userID,
					Amount:    amount,
					EventData: data,
				}
				if err := tx.Create(event).Error; err != nil {
					return fmt.Errorf("failed to append settlement event: %w", err)
				}
			}
			return tx.Model(&domain.Listing{}).
				Where("listing_id = ?", listing.ListingID).
				Updates(map[string]interface{}{
					"current_bid":  newBid,
					"last_updated": now,
				}).Error
		})
	})
	if err != nil {
		return nil, err
	}

	listing.CurrentBid = newBid
	listing.LastUpdated = &now
	return listing, nil
}

// Delete removes a listing and its roster entries. Members are never deleted.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("listing_id = ? AND user_id = ?", id, userID).Delete(&domain.Listing{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrListingNotFound
		}
		return tx.Where("listing_id = ?", id).Delete(&domain.ListingMember{}).Error
	})
}

func (s *Service) loadWithRoster(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	err := s.DB.WithContext(ctx).
		Where("listing_id = ?", id).
		Preload("Roster", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Roster.Member").
		First(&listing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}
