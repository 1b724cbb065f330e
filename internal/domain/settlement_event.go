package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SettlementEvent is one member's ledger credit from one bid update, appended
// in the same transaction that bumps Member.CalculatedBidPrice. The durable
// balance stays the fast path; events make the accumulation auditable.
type SettlementEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	ListingID uuid.UUID      `gorm:"column:listing_id;type:uuid;not null;index" json:"listing_id"`
	MemberID  uuid.UUID      `gorm:"column:member_id;type:uuid;not null;index" json:"member_id"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	Amount    float64        `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	EventData datatypes.JSON `gorm:"column:event_data;type:jsonb;not null" json:"event_data"`
	CreatedAt time.Time      `gorm:"column:createdAt" json:"createdAt"`
}

func (SettlementEvent) TableName() string {
	return "SettlementEvents"
}

func (e *SettlementEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
