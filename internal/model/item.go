package model

import (
	"time"

	"github.com/google/uuid"
)

// Item status values as stored in the status column.
const (
	StatusInactive  = 0
	StatusAvailable = 1
	StatusReserved  = 2
)

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s int) bool {
	return s == StatusInactive || s == StatusAvailable || s == StatusReserved
}

// Item represents a listing offered for sale.
//
// Seller is set at creation and never mutated. Customer stays NULL until a
// successful purchase, which also flips IsPurchased/IsActive exactly once.
type Item struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Seller      uuid.UUID  `json:"seller" gorm:"type:char(36);not null;index"`
	Customer    *uuid.UUID `json:"customer" gorm:"type:char(36);index"`
	Name        string     `json:"name" gorm:"size:255;not null"`
	Detail      string     `json:"detail" gorm:"type:text"`
	Image       string     `json:"image" gorm:"size:2048"`
	Status      int        `json:"status" gorm:"not null;default:1"`
	IsPurchased bool       `json:"is_purchased" gorm:"not null;default:false"`
	IsActive    bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	SellerUser   *User `json:"-" gorm:"foreignKey:Seller;references:UID"`
	CustomerUser *User `json:"-" gorm:"foreignKey:Customer;references:UID"`
}

// TableName keeps the legacy singular table name.
func (Item) TableName() string {
	return "item"
}

// ItemWithNames is an Item row joined with the display names of its seller
// and customer. Names are nil when the referenced account is missing.
type ItemWithNames struct {
	Item
	SellerName   *string `json:"seller_name" gorm:"column:seller_name"`
	CustomerName *string `json:"customer_name" gorm:"column:customer_name"`
}
