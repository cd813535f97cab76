package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the store catalog.
// Stock is authoritative: it is only reduced through a conditional decrement,
// so it can never go negative.
type Product struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string          `json:"name" validate:"required,min=3,max=100"`
	Description   string          `json:"description" validate:"omitempty,max=500"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(12,2)"`
	Stock         int             `json:"stock" validate:"gte=0"`
	ImageFilename string          `json:"image_filename,omitempty" gorm:"type:varchar(255)"`
	gorm.Model                    // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
