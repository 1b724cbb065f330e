package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Member is a chit participant owned by one user.
// (phone, user_id) is unique: the same phone under two different users
// yields two distinct Member rows.
type Member struct {
	MemberID           uuid.UUID `gorm:"column:member_id;type:uuid;primaryKey" json:"member_id"`
	UserID             uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_members_phone_user" json:"user_id"`
	Name               string    `gorm:"column:name;not null" json:"name"`
	Phone              int64     `gorm:"column:phone;not null;uniqueIndex:idx_members_phone_user" json:"phone"`
	CalculatedBidPrice float64   `gorm:"column:calculated_bid_price;type:decimal(18,2);not null;default:0" json:"calculatedBidPrice"`
}

func (Member) TableName() string {
	return "Members"
}

// BeforeCreate sets member_id if not already set (DBs without default uuid).
func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.MemberID == uuid.Nil {
		m.MemberID = uuid.New()
	}
	return nil
}
