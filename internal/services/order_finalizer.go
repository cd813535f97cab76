package services

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"greenmarket/internal/models"
	"greenmarket/internal/repositories"
	"greenmarket/pkg/metrics"

	"github.com/google/uuid"
)

// EventPublisher publishes order lifecycle events after finalization.
// Satisfied by the RabbitMQ client; a nil publisher disables publication.
type EventPublisher interface {
	PublishOrderFinalized(event map[string]interface{}) error
}

// errAlreadyFinalized signals that another request consumed the pending
// payment first. The caller resolves it to the already-created order.
var errAlreadyFinalized = errors.New("payment already finalized")

// OrderFinalizer commits the side effects of a confirmed payment: stock
// decrements, the order record, the pending-payment transition and the cart
// clear, all inside one transaction.
type OrderFinalizer struct {
	uow       repositories.UnitOfWork
	publisher EventPublisher
	metrics   *metrics.CheckoutMetrics

	// PartialFulfillment controls what happens when a line can no longer be
	// covered by stock at finalization time. True (the default) skips the
	// decrement for that line only and marks the order partially fulfilled;
	// false aborts the whole finalization.
	PartialFulfillment bool
}

// NewOrderFinalizer creates a new OrderFinalizer.
func NewOrderFinalizer(uow repositories.UnitOfWork, publisher EventPublisher, checkoutMetrics *metrics.CheckoutMetrics) *OrderFinalizer {
	return &OrderFinalizer{
		uow:                uow,
		publisher:          publisher,
		metrics:            checkoutMetrics,
		PartialFulfillment: true,
	}
}

// Finalize runs steps 1-4 of the completion protocol for a payment the
// provider has confirmed as approved. It is idempotent per provider
// reference: a replayed confirmation finds the pending payment already
// consumed and returns the existing order untouched.
func (f *OrderFinalizer) Finalize(pending *models.PendingPayment, cart *models.Cart) (*models.Order, error) {
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	var order *models.Order
	err := f.uow.Transact(func(r repositories.Repos) error {
		// Consume the pending payment first. Zero rows moved means a
		// concurrent or replayed confirmation won the race.
		moved, err := r.Payments.TransitionStatus(pending.ProviderRef, models.PaymentStatusInitiated, models.PaymentStatusConfirmed, "")
		if err != nil {
			return err
		}
		if !moved {
			return errAlreadyFinalized
		}

		// Deterministic order avoids deadlocks between concurrent
		// finalizations touching the same products.
		productIDs := make([]string, 0, len(cart.Items))
		for id := range cart.Items {
			productIDs = append(productIDs, id)
		}
		sort.Strings(productIDs)

		items := make([]models.OrderItem, 0, len(cart.Items))
		status := models.OrderStatusPaid
		for _, id := range productIDs {
			line := cart.Items[id]
			fulfilled := true
			if err := r.Products.DecrementStock(id, line.Quantity); err != nil {
				if !errors.Is(err, repositories.ErrInsufficientStock) {
					return err
				}
				if !f.PartialFulfillment {
					available := 0
					if p, perr := r.Products.GetByID(id); perr == nil {
						available = p.Stock
					}
					return &StockConflictError{
						ProductID: id,
						Name:      line.Name,
						Requested: line.Quantity,
						Available: available,
					}
				}
				// Source policy: skip this line only, keep the order. The
				// unfulfilled item stays on the record for manual resolution.
				fulfilled = false
				status = models.OrderStatusPaidPartial
				if f.metrics != nil {
					f.metrics.StockConflicts.Inc()
				}
			}
			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				Name:      line.Name,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Fulfilled: fulfilled,
			})
		}

		order = &models.Order{
			ID:          uuid.New().String(),
			UserID:      pending.UserID,
			SessionID:   cart.SessionID,
			ProviderRef: pending.ProviderRef,
			Items:       items,
			TotalAmount: cart.Total(),
			Status:      status,
		}
		if err := r.Orders.Create(order); err != nil {
			return fmt.Errorf("failed to persist order: %w", err)
		}

		return r.Carts.Delete(cart.SessionID)
	})
	if err != nil {
		return nil, err
	}

	if f.metrics != nil {
		f.metrics.PaymentsConfirmed.WithLabelValues(pending.Provider).Inc()
	}
	f.publishFinalized(order, pending)

	return order, nil
}

func (f *OrderFinalizer) publishFinalized(order *models.Order, pending *models.PendingPayment) {
	if f.publisher == nil {
		log.Println("Event publisher is not initialized. Skipping order event publication.")
		return
	}

	event := map[string]interface{}{
		"orderID":     order.ID,
		"userID":      order.UserID,
		"provider":    pending.Provider,
		"providerRef": pending.ProviderRef,
		"status":      order.Status,
		"total":       order.TotalAmount.StringFixed(2),
	}
	if err := f.publisher.PublishOrderFinalized(event); err != nil {
		log.Printf("Warning: Failed to publish order finalized event for order %s: %v", order.ID, err)
	} else {
		log.Printf("Published order finalized event for order %s", order.ID)
	}
}
