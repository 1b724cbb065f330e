package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Listing is one chit pool run by a user.
// The roster lives in ListingMembers; duplicate entries are allowed and
// each counts as one unit when prorating the bid.
type Listing struct {
	ListingID    uuid.UUID       `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Title        string          `gorm:"column:title;not null" json:"title"`
	Price        float64         `gorm:"column:price;type:decimal(18,2);not null" json:"price"`
	StartDate    time.Time       `gorm:"column:start_date;not null" json:"startDate"`
	EndDate      time.Time       `gorm:"column:end_date;not null" json:"endDate"`
	CurrentBid   float64         `gorm:"column:current_bid;type:decimal(18,2);not null;default:0" json:"currentBid"`
	CurrentMonth *int            `gorm:"column:current_month" json:"currentMonth"`
	LastUpdated  *time.Time      `gorm:"column:last_updated" json:"lastUpdated"`
	Roster       []ListingMember `gorm:"foreignKey:ListingID;references:ListingID" json:"-"`
	CreatedAt    time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Listing) TableName() string {
	return "Listings"
}

// BeforeCreate sets listing_id if not already set (DBs without default uuid).
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ListingID == uuid.Nil {
		l.ListingID = uuid.New()
	}
	return nil
}

// ListingMember is one roster entry. Position preserves submission order, and
// the same member may appear at several positions (multi-unit enrolment).
type ListingMember struct {
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	Position  int       `gorm:"column:position;primaryKey" json:"position"`
	MemberID  uuid.UUID `gorm:"column:member_id;type:uuid;not null;index" json:"member_id"`
	Member    *Member   `gorm:"foreignKey:MemberID;references:MemberID" json:"member,omitempty"`
}

func (ListingMember) TableName() string {
	return "ListingMembers"
}
