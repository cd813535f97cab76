// Package payments adapts the external payment providers behind one
// interface: create a provider session the user is redirected to, then
// explicitly confirm its outcome. Only a confirmed approval ever authorizes
// order finalization; the unauthenticated success redirect is never trusted
// on its own.
package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrProviderUnavailable means the provider credentials are missing or
// malformed. It is returned before any network call is attempted.
var ErrProviderUnavailable = errors.New("payment provider is not configured")

// TransportError wraps a network or provider-API failure. It is retryable
// from the user's point of view and never mutates local state.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s provider error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// LineItem is one cart line in provider terms.
type LineItem struct {
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// UnitAmountCents returns the unit price in minor currency units.
func (li LineItem) UnitAmountCents() int64 {
	return li.UnitPrice.Mul(decimal.NewFromInt(100)).IntPart()
}

// CreateSessionRequest carries everything a provider needs to open a
// payment session. Total is always the server-side recomputed amount.
type CreateSessionRequest struct {
	Total      decimal.Decimal
	Currency   string
	Items      []LineItem
	SuccessURL string
	CancelURL  string
}

// ProviderSession is the result of opening a payment session: where to send
// the user, and the opaque reference to confirm against later.
type ProviderSession struct {
	Provider    string
	Reference   string
	RedirectURL string
}

// Outcome is the provider's confirmed verdict on a payment.
type Outcome struct {
	Approved bool
	Reason   string
}

// Gateway is the capability both provider variants implement.
type Gateway interface {
	Name() string
	CreateSession(ctx context.Context, req CreateSessionRequest) (*ProviderSession, error)
	Confirm(ctx context.Context, providerRef, payerRef string) (*Outcome, error)
}
