package listings

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"chitfund-backend/internal/domain"
	"chitfund-backend/internal/proration"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupListingsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Member{}, &domain.Listing{},
		&domain.ListingMember{}, &domain.SettlementEvent{},
	))
	return &Service{DB: db}, db
}

func mustCreate(t *testing.T, svc *Service, userID uuid.UUID, price float64, start, end time.Time, roster ...MemberInput) *domain.Listing {
	t.Helper()
	listing, err := svc.CreateListing(context.Background(), userID, CreateListingInput{
		Title:     "Family chit",
		Price:     price,
		StartDate: start,
		EndDate:   end,
		Members:   roster,
	})
	require.NoError(t, err)
	return listing
}

func memberBalance(t *testing.T, db *gorm.DB, userID uuid.UUID, phone int64) float64 {
	t.Helper()
	var m domain.Member
	require.NoError(t, db.Where("user_id = ? AND phone = ?", userID, phone).First(&m).Error)
	return m.CalculatedBidPrice
}

func TestCreateListing_ResolvesRosterInOrder(t *testing.T) {
	svc, db := setupListingsTest(t)
	userID := uuid.New()
	now := time.Now()
	// First of the month two months back, so the calendar diff is exactly 2.
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -2, 0)
	end := now.AddDate(0, 10, 0)

	listing := mustCreate(t, svc, userID, 100000, start, end,
		MemberInput{Name: "Asha", Phone: 111},
		MemberInput{Name: "Binu", Phone: 222},
		MemberInput{Name: "Asha", Phone: 111},
	)

	// Three roster rows, two distinct members
	var roster []domain.ListingMember
	require.NoError(t, db.Where("listing_id = ?", listing.ListingID).Order("position ASC").Find(&roster).Error)
	require.Len(t, roster, 3)
	assert.Equal(t, roster[0].MemberID, roster[2].MemberID)
	assert.NotEqual(t, roster[0].MemberID, roster[1].MemberID)

	var memberCount int64
	require.NoError(t, db.Model(&domain.Member{}).Where("user_id = ?", userID).Count(&memberCount).Error)
	assert.EqualValues(t, 2, memberCount)

	// currentMonth frozen at creation: 2 calendar months elapsed
	require.NotNil(t, listing.CurrentMonth)
	assert.Equal(t, 2, *listing.CurrentMonth)
	assert.Equal(t, float64(0), listing.CurrentBid)
}

func TestCreateListing_EmptyRoster(t *testing.T) {
	svc, _ := setupListingsTest(t)
	_, err := svc.CreateListing(context.Background(), uuid.New(), CreateListingInput{
		Title:     "Empty",
		Price:     1000,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(1, 0, 0),
	})
	assert.ErrorIs(t, err, proration.ErrInvalidRoster)
}

func TestUpdateBid_SettlesSharesAcrossRoster(t *testing.T) {
	svc, db := setupListingsTest(t)
	userID := uuid.New()
	listing := mustCreate(t, svc, userID, 100000, time.Now(), time.Now().AddDate(1, 0, 0),
		MemberInput{Name: "Asha", Phone: 111},
		MemberInput{Name: "Binu", Phone: 222},
		MemberInput{Name: "Asha", Phone: 111},
	)

	updated, err := svc.UpdateBid(context.Background(), userID, listing.ListingID, 10000)
	require.NoError(t, err)
	assert.Equal(t, float64(10000), updated.CurrentBid)
	assert.NotNil(t, updated.LastUpdated)

	// perUnit = (100000 - 10000) / 3 = 30000; Asha holds 2 units
	assert.InDelta(t, 60000, memberBalance(t, db, userID, 111), 0.0001)
	assert.InDelta(t, 30000, memberBalance(t, db, userID, 222), 0.0001)

	// One settlement event per distinct member, with the audit payload
	var events []domain.SettlementEvent
	require.NoError(t, db.Where("listing_id = ?", listing.ListingID).Find(&events).Error)
	require.Len(t, events, 2)
	total := 0.0
	for _, ev := range events {
		total += ev.Amount
		var data map[string]interface{}
		require.NoError(t, json.Unmarshal(ev.EventData, &data))
		assert.EqualValues(t, 10000, data["newBid"])
		assert.EqualValues(t, 3, data["rosterSize"])
	}
	assert.InDelta(t, 90000, total, 0.0001)
}

func TestUpdateBid_AccumulatesAcrossUpdates(t *testing.T) {
	svc, db := setupListingsTest(t)
	userID := uuid.New()
	listing := mustCreate(t, svc, userID, 1200, time.Now(), time.Now().AddDate(1, 0, 0),
		MemberInput{Name: "Asha", Phone: 111},
		MemberInput{Name: "Binu", Phone: 222},
	)

	_, err := svc.UpdateBid(context.Background(), userID, listing.ListingID, 200)
	require.NoError(t, err)
	_, err = svc.UpdateBid(context.Background(), userID, listing.ListingID, 400)
	require.NoError(t, err)

	// (1200-200)/2 + (1200-400)/2 = 500 + 400
	assert.InDelta(t, 900, memberBalance(t, db, userID, 111), 0.0001)
	assert.InDelta(t, 900, memberBalance(t, db, userID, 222), 0.0001)
}

func TestUpdateBid_ExpiredListingUnchanged(t *testing.T) {
	svc, db := setupListingsTest(t)
	userID := uuid.New()
	listing := mustCreate(t, svc, userID, 100000, time.Now().AddDate(-1, 0, 0), time.Now().Add(-time.Hour),
		MemberInput{Name: "Asha", Phone: 111},
	)

	_, err := svc.UpdateBid(context.Background(), userID, listing.ListingID, 10000)
	assert.ErrorIs(t, err, ErrListingExpired)

	// Nothing settled, bid untouched
	assert.Equal(t, float64(0), memberBalance(t, db, userID, 111))
	var stored domain.Listing
	require.NoError(t, db.First(&stored, "listing_id = ?", listing.ListingID).Error)
	assert.Equal(t, float64(0), stored.CurrentBid)
	assert.Nil(t, stored.LastUpdated)
}

func TestUpdateBid_RejectsBidAbovePrice(t *testing.T) {
	svc, db := setupListingsTest(t)
	userID := uuid.New()
	listing := mustCreate(t, svc, userID, 1000, time.Now(), time.Now().AddDate(1, 0, 0),
		MemberInput{Name: "Asha", Phone: 111},
	)

	_, err := svc.UpdateBid(context.Background(), userID, listing.ListingID, 1500)
	assert.ErrorIs(t, err, proration.ErrInvalidBid)
	assert.Equal(t, float64(0), memberBalance(t, db, userID, 111))
}

func TestUpdateBid_WrongUser(t *testing.T) {
	svc, _ := setupListingsTest(t)
	userID := uuid.New()
	listing := mustCreate(t, svc, userID, 1000, time.Now(), time.Now().AddDate(1, 0, 0),
		MemberInput{Name: "Asha", Phone: 111},
	)

	_, err := svc.UpdateBid(context.Background(), uuid.New(), listing.ListingID, 500)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestGetListing_ExpandsRoster(t *testing.T) {
	svc, _ := setupListingsTest(t)
	userID := uuid.New()
	listing := mustCreate(t, svc, userID, 1000, time.Now(), time.Now().AddDate(1, 0, 0),
		MemberInput{Name: "Asha", Phone: 111},
		MemberInput{Name: "Binu", Phone: 222},
		MemberInput{Name: "Asha", Phone: 111},
	)

	detail, err := svc.GetListing(context.Background(), userID, listing.ListingID)
	require.NoError(t, err)
	require.Len(t, detail.Members, 3)
	assert.Equal(t, "Asha", detail.Members[0].Name)
	assert.Equal(t, "Binu", detail.Members[1].Name)
	assert.Equal(t, "Asha", detail.Members[2].Name)
	assert.Equal(t, "active", string(detail.Status))
	assert.NotNil(t, detail.CurrentMonth)
}

func TestGetListing_WrongUser(t *testing.T) {
	svc, _ := setupListingsTest(t)
	userID := uuid.New()
	listing := mustCreate(t, svc, userID, 1000, time.Now(), time.Now().AddDate(1, 0, 0),
		MemberInput{Name: "Asha", Phone: 111},
	)

	// Another user's listing id behaves like a missing one.
	_, err := svc.GetListing(context.Background(), uuid.New(), listing.ListingID)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestGetListing_NotFound(t *testing.T) {
	svc, _ := setupListingsTest(t)
	_, err := svc.GetListing(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestGetListing_ArchivedProjectsNullMonth(t *testing.T) {
	svc, db := setupListingsTest(t)
	userID := uuid.New()
	listing := mustCreate(t, svc, userID, 1000, time.Now().AddDate(-1, 0, 0), time.Now().Add(-time.Hour),
		MemberInput{Name: "Asha", Phone: 111},
	)

	detail, err := svc.GetListing(context.Background(), userID, listing.ListingID)
	require.NoError(t, err)
	assert.Equal(t, "archived", string(detail.Status))
	assert.Nil(t, detail.CurrentMonth)

	// Projection is read-time only; the stored value survives
	var stored domain.Listing
	require.NoError(t, db.First(&stored, "listing_id = ?", listing.ListingID).Error)
	assert.NotNil(t, stored.CurrentMonth)
}

func TestViewAllActive_And_Archived(t *testing.T) {
	svc, _ := setupListingsTest(t)
	userID := uuid.New()
	active := mustCreate(t, svc, userID, 1000, time.Now(), time.Now().AddDate(1, 0, 0),
		MemberInput{Name: "Asha", Phone: 111},
	)
	ended := mustCreate(t, svc, userID, 2000, time.Now().AddDate(-1, 0, 0), time.Now().Add(-time.Minute),
		MemberInput{Name: "Asha", Phone: 111},
	)

	activeOut, err := svc.ViewAllActive(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, activeOut, 1)
	assert.Equal(t, active.ListingID, activeOut[0].ListingID)

	archivedOut, err := svc.Archived(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, archivedOut, 1)
	assert.Equal(t, ended.ListingID, archivedOut[0].ListingID)
	assert.Nil(t, archivedOut[0].CurrentMonth)

	// Another user sees nothing
	other, err := svc.ViewAllActive(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestDelete_RemovesListingAndRoster(t *testing.T) {
	svc, db := setupListingsTest(t)
	userID := uuid.New()
	listing := mustCreate(t, svc, userID, 1000, time.Now(), time.Now().AddDate(1, 0, 0),
		MemberInput{Name: "Asha", Phone: 111},
		MemberInput{Name: "Binu", Phone: 222},
	)

	require.NoError(t, svc.Delete(context.Background(), userID, listing.ListingID))

	var listingCount, rosterCount, memberCount int64
	require.NoError(t, db.Model(&domain.Listing{}).Count(&listingCount).Error)
	require.NoError(t, db.Model(&domain.ListingMember{}).Count(&rosterCount).Error)
	require.NoError(t, db.Model(&domain.Member{}).Count(&memberCount).Error)
	assert.EqualValues(t, 0, listingCount)
	assert.EqualValues(t, 0, rosterCount)
	assert.EqualValues(t, 2, memberCount)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := setupListingsTest(t)
	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrListingNotFound)
}
