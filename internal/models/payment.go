package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pending payment states. A pending payment is created when a provider
// session is opened and consumed exactly once: the only transition out of
// "initiated" that authorizes finalization is "confirmed".
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusDeclined  = "declined"
	PaymentStatusAbandoned = "abandoned"
)

// PendingPayment correlates a provider session with the cart snapshot and
// total it was created for.
type PendingPayment struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProviderRef string          `json:"provider_ref" gorm:"uniqueIndex;type:varchar(128)"`
	Provider    string          `json:"provider" gorm:"type:varchar(20)"`
	SessionID   string          `json:"-" gorm:"index;type:varchar(64)"`
	UserID      string          `json:"-" gorm:"type:varchar(36)"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(12,2)"`
	Status      string          `json:"status" gorm:"type:varchar(20)"`
	Reason      string          `json:"reason,omitempty" gorm:"type:varchar(255)"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
