package repositories

import (
	"fmt"

	"greenmarket/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPendingPaymentRepository is a GORM implementation of
// PendingPaymentRepository.
type GORMPendingPaymentRepository struct {
	db *gorm.DB
}

// NewGORMPendingPaymentRepository creates a new instance of
// GORMPendingPaymentRepository.
func NewGORMPendingPaymentRepository(db *gorm.DB) *GORMPendingPaymentRepository {
	return &GORMPendingPaymentRepository{
		db: db,
	}
}

// Create records a newly opened provider payment session.
func (r *GORMPendingPaymentRepository) Create(payment *models.PendingPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusInitiated
	}
	if err := r.db.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create pending payment: %w", err)
	}
	return nil
}

// GetByProviderRef retrieves a pending payment by its provider reference.
func (r *GORMPendingPaymentRepository) GetByProviderRef(providerRef string) (*models.PendingPayment, error) {
	var payment models.PendingPayment
	if err := r.db.First(&payment, "provider_ref = ?", providerRef).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("pending payment %s not found", providerRef)
		}
		return nil, fmt.Errorf("failed to get pending payment %s: %w", providerRef, err)
	}
	return &payment, nil
}

// TransitionStatus performs the guarded status move. The WHERE clause on the
// current status makes the transition consume the row exactly once even when
// two confirmation requests race.
func (r *GORMPendingPaymentRepository) TransitionStatus(providerRef, from, to, reason string) (bool, error) {
	res := r.db.Model(&models.PendingPayment{}).
		Where("provider_ref = ? AND status = ?", providerRef, from).
		Updates(map[string]interface{}{"status": to, "reason": reason})
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition payment %s to %s: %w", providerRef, to, res.Error)
	}
	return res.RowsAffected > 0, nil
}
