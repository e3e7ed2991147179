package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered marketplace account.
//
// Name is the public display name and doubles as the login identifier; it is
// unique and never changes after registration.
type User struct {
	UID          uuid.UUID `json:"uid" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName keeps the legacy singular table name.
func (User) TableName() string {
	return "user"
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UID == uuid.Nil {
		u.UID = uuid.New()
	}
	return nil
}
