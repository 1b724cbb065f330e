package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is an account that runs chit pools.
type User struct {
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	Username     string          `gorm:"column:username;not null;uniqueIndex" json:"username"`
	PasswordHash string          `gorm:"column:password_hash;not null" json:"-"`
	DOB          *datatypes.Date `gorm:"column:dob" json:"dob"`
	CreatedAt    time.Time       `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"column:updatedAt" json:"updatedAt"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets user_id if not already set (DBs without default uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}
