package models

import "gorm.io/gorm"

// PaymentMethod is an admin-configurable checkout option. Purely
// presentational configuration, not part of the transactional core.
type PaymentMethod struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Name         string `json:"name" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Enabled      bool   `json:"enabled"`
	DisplayOrder int    `json:"display_order"`
	gorm.Model
}
