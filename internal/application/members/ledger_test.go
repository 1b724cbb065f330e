package members

import (
	"context"
	"testing"
	"time"

	"chitfund-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedListing inserts a listing whose roster references the given members by
// index, duplicates allowed.
func seedListing(t *testing.T, db *gorm.DB, userID uuid.UUID, price, currentBid float64, end time.Time, roster ...*domain.Member) *domain.Listing {
	t.Helper()
	l := &domain.Listing{
		UserID:     userID,
		Title:      "Chit",
		Price:      price,
		StartDate:  time.Now().AddDate(0, -1, 0),
		EndDate:    end,
		CurrentBid: currentBid,
	}
	require.NoError(t, db.Create(l).Error)
	for i, m := range roster {
		require.NoError(t, db.Create(&domain.ListingMember{
			ListingID: l.ListingID,
			Position:  i,
			MemberID:  m.MemberID,
		}).Error)
	}
	return l
}

func TestLedgerFor_MultiUnitShares(t *testing.T) {
	svc, db := setupMembersTest(t)
	userID := uuid.New()
	ctx := context.Background()

	asha, err := svc.ResolveOrCreate(ctx, userID, "Asha", 111)
	require.NoError(t, err)
	binu, err := svc.ResolveOrCreate(ctx, userID, "Binu", 222)
	require.NoError(t, err)

	// perUnit = (100000 - 10000) / 3 = 30000; Asha holds 2 units
	seedListing(t, db, userID, 100000, 10000, time.Now().AddDate(1, 0, 0), asha, binu, asha)

	ledger, err := svc.LedgerFor(ctx, asha)
	require.NoError(t, err)
	require.Len(t, ledger.Findlisting, 1)
	assert.Equal(t, 2, ledger.Findlisting[0].Count)
	assert.InDelta(t, 60000, ledger.Findlisting[0].CurrentBidPrice, 0.01)
	assert.InDelta(t, 60000, ledger.TotalBidPrice, 0.01)

	other, err := svc.LedgerFor(ctx, binu)
	require.NoError(t, err)
	assert.Equal(t, 1, other.Findlisting[0].Count)
	assert.InDelta(t, 30000, other.TotalBidPrice, 0.01)
}

func TestLedgerFor_RoundsAtPresentationOnly(t *testing.T) {
	svc, db := setupMembersTest(t)
	userID := uuid.New()
	ctx := context.Background()

	asha, err := svc.ResolveOrCreate(ctx, userID, "Asha", 111)
	require.NoError(t, err)
	binu, err := svc.ResolveOrCreate(ctx, userID, "Binu", 222)
	require.NoError(t, err)
	chitra, err := svc.ResolveOrCreate(ctx, userID, "Chitra", 333)
	require.NoError(t, err)

	// perUnit = 100000 / 3 = 33333.333...; Asha's 2 units round once, to
	// 66666.67, never 2 x 33333.33
	seedListing(t, db, userID, 100000, 0, time.Now().AddDate(1, 0, 0), asha, binu, chitra)
	seedListing(t, db, userID, 100000, 0, time.Now().AddDate(1, 0, 0), asha, asha, binu)

	ledger, err := svc.LedgerFor(ctx, asha)
	require.NoError(t, err)
	require.Len(t, ledger.Findlisting, 2)
	// 33333.333... + 66666.666... = 100000 exactly after one rounding
	assert.InDelta(t, 100000, ledger.TotalBidPrice, 0.001)
}

func TestLedgerFor_ExcludesEndedListings(t *testing.T) {
	svc, db := setupMembersTest(t)
	userID := uuid.New()
	ctx := context.Background()

	asha, err := svc.ResolveOrCreate(ctx, userID, "Asha", 111)
	require.NoError(t, err)

	seedListing(t, db, userID, 50000, 0, time.Now().Add(-time.Hour), asha)

	ledger, err := svc.LedgerFor(ctx, asha)
	require.NoError(t, err)
	assert.Empty(t, ledger.Findlisting)
	assert.Equal(t, float64(0), ledger.TotalBidPrice)
}

func TestLedgerFor_MemberNotOnAnyListing(t *testing.T) {
	svc, _ := setupMembersTest(t)
	userID := uuid.New()
	ctx := context.Background()

	asha, err := svc.ResolveOrCreate(ctx, userID, "Asha", 111)
	require.NoError(t, err)

	ledger, err := svc.LedgerFor(ctx, asha)
	require.NoError(t, err)
	assert.Equal(t, MemberInfo{Name: "Asha", Phone: 111}, ledger.Member)
	assert.Empty(t, ledger.Findlisting)
}

func TestLedgerForID_OwnershipScoped(t *testing.T) {
	svc, _ := setupMembersTest(t)
	userID := uuid.New()
	ctx := context.Background()

	asha, err := svc.ResolveOrCreate(ctx, userID, "Asha", 111)
	require.NoError(t, err)

	ledger, err := svc.LedgerForID(ctx, userID, asha.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", ledger.Member.Name)

	_, err = svc.LedgerForID(ctx, uuid.New(), asha.MemberID)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMemberLedgers_NoMembers(t *testing.T) {
	svc, _ := setupMembersTest(t)
	_, err := svc.MemberLedgers(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNoMembers)
}

func TestMemberLedgers_SweepAllMembers(t *testing.T) {
	svc, db := setupMembersTest(t)
	userID := uuid.New()
	ctx := context.Background()

	asha, err := svc.ResolveOrCreate(ctx, userID, "Asha", 111)
	require.NoError(t, err)
	binu, err := svc.ResolveOrCreate(ctx, userID, "Binu", 222)
	require.NoError(t, err)

	seedListing(t, db, userID, 100000, 10000, time.Now().AddDate(1, 0, 0), asha, binu, asha)

	ledgers, err := svc.MemberLedgers(ctx, userID)
	require.NoError(t, err)
	require.Len(t, ledgers, 2)

	sum := 0.0
	for _, l := range ledgers {
		sum += l.TotalBidPrice
	}
	// All shares together cover the outstanding pot
	assert.InDelta(t, 90000, sum, 0.01)
}

func TestMemberLedgers_SkipsFailingMember(t *testing.T) {
	svc, db := setupMembersTest(t)
	userID := uuid.New()
	ctx := context.Background()

	asha, err := svc.ResolveOrCreate(ctx, userID, "Asha", 111)
	require.NoError(t, err)
	binu, err := svc.ResolveOrCreate(ctx, userID, "Binu", 222)
	require.NoError(t, err)

	// Asha's only listing carries a bid above its price, so her ledger fails.
	seedListing(t, db, userID, 1000, 2000, time.Now().AddDate(1, 0, 0), asha)
	seedListing(t, db, userID, 100000, 10000, time.Now().AddDate(1, 0, 0), binu)

	ledgers, err := svc.MemberLedgers(ctx, userID)
	require.NoError(t, err)
	require.Len(t, ledgers, 1)
	assert.Equal(t, "Binu", ledgers[0].Member.Name)
	assert.InDelta(t, 90000, ledgers[0].TotalBidPrice, 0.01)
}
