package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item listed by a user. Availability is the only
// field mutated by the cross-service deactivation cascade.
type Product struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"size:255;not null;index"`
	Description     string          `json:"description" gorm:"type:text"`
	Price           decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	IsAvailable     bool            `json:"is_available" gorm:"not null;default:true;index"`
	CreatedByUserID uint            `json:"created_by_user_id" gorm:"not null;index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
