package services

import (
	"errors"
	"fmt"
)

// Local validation errors. These are recovered in place: the user is returned
// to the cart or checkout view with an actionable message and no state is
// mutated.
var (
	ErrInvalidQuantity = errors.New("quantity must be a positive whole number")
	ErrEmptyCart       = errors.New("cart is empty, nothing to checkout")
	ErrUnknownProvider = errors.New("unknown payment provider")
	ErrPaymentConsumed = errors.New("payment was already declined or abandoned")
)

// InsufficientStockError is raised when an add or update would push a cart
// line past the product's current stock.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d units of %s available (requested %d)", e.Available, e.Name, e.Requested)
}

// StockConflictError is the checkout-time variant: the line was valid when it
// was added, but stock has since changed under a concurrent purchase.
type StockConflictError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock changed for %s: only %d units available (cart has %d)", e.Name, e.Available, e.Requested)
}

// DeclinedError is raised when the provider refuses to confirm a payment.
// It must route the user to the cancel page, never to success.
type DeclinedError struct {
	Provider string
	Reason   string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("%s declined the payment: %s", e.Provider, e.Reason)
}
