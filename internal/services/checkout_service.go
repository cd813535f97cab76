package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"greenmarket/internal/models"
	"greenmarket/internal/payments"
	"greenmarket/internal/repositories"
	"greenmarket/pkg/metrics"

	"github.com/shopspring/decimal"
)

// checkoutCurrency is fixed; the store sells in USD only.
const checkoutCurrency = "USD"

// CheckoutSummary is the validated view of a cart immediately before the
// provider handoff: line items in provider terms and the authoritative total
// recomputed server-side. Client-supplied amounts are never used.
type CheckoutSummary struct {
	Items []payments.LineItem
	Total decimal.Decimal
}

// BeginResult tells the handler where to redirect the user.
type BeginResult struct {
	Provider    string
	ProviderRef string
	RedirectURL string
}

// CheckoutService drives the cart-to-order protocol: validate the cart
// against live inventory, open a provider session, and on provider-confirmed
// approval hand over to the order finalizer.
type CheckoutService struct {
	products  repositories.ProductRepository
	carts     repositories.CartStore
	payments  repositories.PendingPaymentRepository
	gateways  map[string]payments.Gateway
	finalizer *OrderFinalizer
	orders    repositories.OrderRepository
	metrics   *metrics.CheckoutMetrics
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	products repositories.ProductRepository,
	carts repositories.CartStore,
	pendingPayments repositories.PendingPaymentRepository,
	orders repositories.OrderRepository,
	gateways []payments.Gateway,
	finalizer *OrderFinalizer,
	checkoutMetrics *metrics.CheckoutMetrics,
) *CheckoutService {
	byName := make(map[string]payments.Gateway, len(gateways))
	for _, g := range gateways {
		byName[g.Name()] = g
	}
	return &CheckoutService{
		products:  products,
		carts:     carts,
		payments:  pendingPayments,
		gateways:  byName,
		finalizer: finalizer,
		orders:    orders,
		metrics:   checkoutMetrics,
	}
}

// Validate reconciles the cart against current inventory. This is the
// last-moment re-check before the provider handoff: lines that were valid at
// add time may have been outrun by concurrent purchases.
func (s *CheckoutService) Validate(cart *models.Cart) (*CheckoutSummary, error) {
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	summary := &CheckoutSummary{Total: decimal.Zero}
	for _, line := range cart.Items {
		product, err := s.products.GetByID(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s no longer available: %w", line.ProductID, err)
		}
		if line.Quantity > product.Stock {
			if s.metrics != nil {
				s.metrics.StockConflicts.Inc()
			}
			return nil, &StockConflictError{
				ProductID: line.ProductID,
				Name:      product.Name,
				Requested: line.Quantity,
				Available: product.Stock,
			}
		}
		summary.Items = append(summary.Items, payments.LineItem{
			Name:        line.Name,
			Description: product.Description,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
		})
		summary.Total = summary.Total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return summary, nil
}

// Begin validates the cart and opens a payment session with the named
// provider. The cart itself is untouched: stock is only decremented at
// finalization, never at checkout initiation.
func (s *CheckoutService) Begin(ctx context.Context, sessionID, userID, provider, successURL, cancelURL string) (*BeginResult, error) {
	gateway, ok := s.gateways[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}

	cart, err := s.carts.Load(sessionID)
	if err != nil {
		return nil, err
	}
	summary, err := s.Validate(cart)
	if err != nil {
		return nil, err
	}

	providerSession, err := gateway.CreateSession(ctx, payments.CreateSessionRequest{
		Total:      summary.Total,
		Currency:   checkoutCurrency,
		Items:      summary.Items,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	})
	if err != nil {
		return nil, err
	}

	pending := &models.PendingPayment{
		ProviderRef: providerSession.Reference,
		Provider:    provider,
		SessionID:   sessionID,
		UserID:      userID,
		Amount:      summary.Total,
		Status:      models.PaymentStatusInitiated,
	}
	if err := s.payments.Create(pending); err != nil {
		return nil, fmt.Errorf("failed to record pending payment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SessionsStarted.WithLabelValues(provider).Inc()
	}
	log.Printf("Opened %s payment session %s for %s", provider, providerSession.Reference, summary.Total.StringFixed(2))

	return &BeginResult{
		Provider:    provider,
		ProviderRef: providerSession.Reference,
		RedirectURL: providerSession.RedirectURL,
	}, nil
}

// Confirm resolves a provider redirect back into a payment outcome and, on
// approval, finalizes the order. Replaying an already-confirmed reference
// returns the existing order without touching stock or creating a second
// order. A decline or transport failure never mutates inventory or the cart.
func (s *CheckoutService) Confirm(ctx context.Context, providerRef, payerRef string) (*models.Order, error) {
	pending, err := s.payments.GetByProviderRef(providerRef)
	if err != nil {
		return nil, err
	}

	switch pending.Status {
	case models.PaymentStatusConfirmed:
		return s.orders.GetByProviderRef(providerRef)
	case models.PaymentStatusDeclined, models.PaymentStatusAbandoned:
		return nil, fmt.Errorf("payment %s: %w", providerRef, ErrPaymentConsumed)
	}

	gateway, ok := s.gateways[pending.Provider]
	if !ok {
		return nil, ErrUnknownProvider
	}

	outcome, err := gateway.Confirm(ctx, providerRef, payerRef)
	if err != nil {
		// Transport errors leave the pending payment initiated so the user
		// can retry the confirmation.
		return nil, err
	}

	if !outcome.Approved {
		if _, terr := s.payments.TransitionStatus(providerRef, models.PaymentStatusInitiated, models.PaymentStatusDeclined, outcome.Reason); terr != nil {
			log.Printf("Failed to mark payment %s declined: %v", providerRef, terr)
		}
		if s.metrics != nil {
			s.metrics.PaymentsDeclined.WithLabelValues(pending.Provider).Inc()
		}
		return nil, &DeclinedError{Provider: pending.Provider, Reason: outcome.Reason}
	}

	cart, err := s.carts.Load(pending.SessionID)
	if err != nil {
		return nil, err
	}

	order, err := s.finalizer.Finalize(pending, cart)
	if errors.Is(err, errAlreadyFinalized) {
		return s.orders.GetByProviderRef(providerRef)
	}
	return order, err
}
