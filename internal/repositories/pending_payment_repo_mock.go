package repositories

import (
	"fmt"
	"sync"

	"greenmarket/internal/models"

	"github.com/google/uuid"
)

// MockPendingPaymentRepository is an in-memory implementation of
// PendingPaymentRepository.
type MockPendingPaymentRepository struct {
	payments map[string]models.PendingPayment // keyed by provider reference
	mu       sync.RWMutex
}

// NewMockPendingPaymentRepository creates a new instance of
// MockPendingPaymentRepository.
func NewMockPendingPaymentRepository() *MockPendingPaymentRepository {
	return &MockPendingPaymentRepository{
		payments: make(map[string]models.PendingPayment),
	}
}

// Create records a newly opened provider payment session.
func (r *MockPendingPaymentRepository) Create(payment *models.PendingPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusInitiated
	}
	if _, exists := r.payments[payment.ProviderRef]; exists {
		return fmt.Errorf("pending payment %s already exists", payment.ProviderRef)
	}
	r.payments[payment.ProviderRef] = *payment
	return nil
}

// GetByProviderRef retrieves a pending payment by its provider reference.
func (r *MockPendingPaymentRepository) GetByProviderRef(providerRef string) (*models.PendingPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[providerRef]
	if !ok {
		return nil, fmt.Errorf("pending payment %s not found", providerRef)
	}
	return &payment, nil
}

// TransitionStatus performs the guarded status move under one lock.
func (r *MockPendingPaymentRepository) TransitionStatus(providerRef, from, to, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[providerRef]
	if !ok || payment.Status != from {
		return false, nil
	}
	payment.Status = to
	payment.Reason = reason
	r.payments[providerRef] = payment
	return true, nil
}
