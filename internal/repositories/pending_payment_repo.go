package repositories

import (
	"greenmarket/internal/models"
)

// PendingPaymentRepository tracks provider payment sessions from creation to
// confirmation. TransitionStatus is the idempotency gate of the checkout
// protocol: it must succeed at most once per (from, to) pair for a given
// provider reference.
type PendingPaymentRepository interface {
	Create(payment *models.PendingPayment) error
	GetByProviderRef(providerRef string) (*models.PendingPayment, error)
	// TransitionStatus moves a payment from one status to another with a
	// guarded update and reports whether the transition happened. A false
	// return with nil error means another request already moved it.
	TransitionStatus(providerRef, from, to, reason string) (bool, error)
}
