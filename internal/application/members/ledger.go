package members

import (
	"context"
	"fmt"
	"time"

	"chitfund-backend/internal/domain"
	"chitfund-backend/internal/proration"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// BreakdownEntry is one active listing's contribution to a member's ledger.
// CurrentBidPrice is rounded to 2 decimals for
// display; Count is the member's unit count in that roster.
type BreakdownEntry struct {
	StartDate       time.Time `json:"startDate"`
	Price           float64   `json:"price"`
	CurrentBidPrice float64   `json:"currentBidPrice"`
	Count           int       `json:"count"`
}

// MemberLedger is the /members response row: the member, their per-listing
// breakdown, and the total payable across active listings. The total is the
// sum of full-precision shares, rounded once; entries round independently, so
// they may not add up to the total exactly. That is display behavior, not a
// bug.
type MemberLedger struct {
	Member        MemberInfo       `json:"member"`
	Findlisting   []BreakdownEntry `json:"findlisting"`
	TotalBidPrice float64          `json:"totalBidPrice"`
}

// MemberInfo is the identity slice of a member exposed on the ledger.
type MemberInfo struct {
	Name  string `json:"name"`
	Phone int64  `json:"phone"`
}

// activeListingsFor returns the user's listings that contain the member and
// have not ended, roster preloaded in position order.
func (s *Service) activeListingsFor(ctx context.Context, m *domain.Member, now time.Time) ([]domain.Listing, error) {
	sub := s.DB.Model(&domain.ListingMember{}).
		Select("listing_id").
		Where("member_id = ?", m.MemberID)

	var listings []domain.Listing
	err := s.DB.WithContext(ctx).
		Where("listing_id IN (?)", sub).
		Where("user_id = ? AND end_date > ?", m.UserID, now).
		Preload("Roster", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Roster.Member").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// LedgerFor recomputes the member's payable total from currently-active
// listings. Stored totals are never trusted for active listings; only the
// durable CalculatedBidPrice (fed by settled bid updates) persists.
func (s *Service) LedgerFor(ctx context.Context, m *domain.Member) (*MemberLedger, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	listings, err := s.activeListingsFor(ctx, m, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listings for member: %w", err)
	}

	ledger := &MemberLedger{
		Member:      MemberInfo{Name: m.Name, Phone: m.Phone},
		Findlisting: []BreakdownEntry{},
	}

	total := 0.0
	for _, l := range listings {
		roster := rosterEntries(l.Roster)
		share, err := proration.ShareFor(l.Price, l.CurrentBid, roster, m.Name, m.Phone)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", l.ListingID, err)
		}
		total += share
		ledger.Findlisting = append(ledger.Findlisting, BreakdownEntry{
			StartDate:       l.StartDate,
			Price:           l.Price,
			CurrentBidPrice: proration.Round2(share),
			Count:           proration.Occurrences(roster, m.Name, m.Phone),
		})
	}
	ledger.TotalBidPrice = proration.Round2(total)
	return ledger, nil
}

// LedgerForID looks the member up first; ErrMemberNotFound if absent or owned
// by another user.
func (s *Service) LedgerForID(ctx context.Context, userID, memberID uuid.UUID) (*MemberLedger, error) {
	lookupCtx, cancel := s.boundCtx(ctx)
	defer cancel()

	var m domain.Member
	if err := s.DB.WithContext(lookupCtx).
		Where("member_id = ? AND user_id = ?", memberID, userID).
		First(&m).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return s.LedgerFor(ctx, &m)
}

// MemberLedgers runs the full sweep for all of the user's members.
// A failure computing one member's ledger is logged
// and that member skipped; it never aborts the sweep.
func (s *Service) MemberLedgers(ctx context.Context, userID uuid.UUID) ([]MemberLedger, error) {
	ms, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, ErrNoMembers
	}

	out := make([]MemberLedger, 0, len(ms))
	for i := range ms {
		ledger, err := s.LedgerFor(ctx, &ms[i])
		if err != nil {
			log.Warn().
				Str("member_id", ms[i].MemberID.String()).
				Err(err).
				Msg("skipping member in ledger sweep")
			continue
		}
		out = append(out, *ledger)
	}
	return out, nil
}

// rosterEntries keeps one entry per roster row so the per-unit denominator is
// the roster length even if a referenced member failed to load.
func rosterEntries(roster []domain.ListingMember) []proration.RosterEntry {
	out := make([]proration.RosterEntry, len(roster))
	for i, rm := range roster {
		if rm.Member != nil {
			out[i] = proration.RosterEntry{Name: rm.Member.Name, Phone: rm.Member.Phone}
		}
	}
	return out
}
