package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. An order is created only after a payment provider has
// confirmed approval; "paid_partial" marks orders where one or more lines
// could not be fulfilled at finalization time.
const (
	OrderStatusPaid        = "paid"
	OrderStatusPaidPartial = "paid_partial"
	OrderStatusShipped     = "shipped"
	OrderStatusDelivered   = "delivered"
	OrderStatusCancelled   = "cancelled"
)

// OrderItem is an immutable snapshot of one cart line at purchase time.
type OrderItem struct {
	ID        uint            `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string          `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36)"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2)"` // Price at the time of order
	Fulfilled bool            `json:"fulfilled"`
}

// Order represents a confirmed purchase. It is never mutated after creation
// except for its status.
type Order struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string          `json:"user_id" gorm:"index;type:varchar(36)"`
	SessionID   string          `json:"-" gorm:"type:varchar(64)"`
	ProviderRef string          `json:"-" gorm:"uniqueIndex;type:varchar(128)"`
	Items       []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(12,2)"`
	Status      string          `json:"status" gorm:"type:varchar(20)"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
