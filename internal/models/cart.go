package models

import "github.com/shopspring/decimal"

// CartItem is one product line inside a session's cart. UnitPrice, Name and
// Image are snapshots taken when the line was added; they do not follow later
// catalog changes.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Cart is the shopping cart owned by one browser session. It is an explicit
// value loaded and saved through a CartStore rather than ambient session
// state, so the checkout flow can reason about exactly one snapshot.
type Cart struct {
	SessionID string              `json:"session_id"`
	Items     map[string]CartItem `json:"items"`
}

// NewCart returns an empty cart for the given session.
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Items:     make(map[string]CartItem),
	}
}

// Total sums quantity times snapshotted unit price over all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Count sums the quantities of all lines.
func (c *Cart) Count() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
