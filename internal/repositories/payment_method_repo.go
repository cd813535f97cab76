package repositories

import (
	"fmt"

	"greenmarket/internal/models"

	"gorm.io/gorm"
)

// PaymentMethodRepository defines the interface for payment method access.
type PaymentMethodRepository interface {
	GetAll() ([]models.PaymentMethod, error)
	GetEnabled() ([]models.PaymentMethod, error)
	GetByID(id uint) (*models.PaymentMethod, error)
	Create(method *models.PaymentMethod) error
	Update(method *models.PaymentMethod) error
	Count() (int64, error)
}

// GORMPaymentMethodRepository is a GORM implementation of
// PaymentMethodRepository.
type GORMPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGORMPaymentMethodRepository creates a new instance of
// GORMPaymentMethodRepository.
func NewGORMPaymentMethodRepository(db *gorm.DB) *GORMPaymentMethodRepository {
	return &GORMPaymentMethodRepository{
		db: db,
	}
}

// GetAll retrieves all payment methods ordered for display.
func (r *GORMPaymentMethodRepository) GetAll() ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.db.Order("display_order").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to get payment methods: %w", err)
	}
	return methods, nil
}

// GetEnabled retrieves the enabled payment methods ordered for display.
func (r *GORMPaymentMethodRepository) GetEnabled() ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.db.Where("enabled = ?", true).Order("display_order").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to get enabled payment methods: %w", err)
	}
	return methods, nil
}

// GetByID retrieves one payment method.
func (r *GORMPaymentMethodRepository) GetByID(id uint) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.First(&method, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payment method %d not found", id)
		}
		return nil, fmt.Errorf("failed to get payment method %d: %w", id, err)
	}
	return &method, nil
}

// Create adds a new payment method.
func (r *GORMPaymentMethodRepository) Create(method *models.PaymentMethod) error {
	if err := r.db.Create(method).Error; err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

// Update saves changes to an existing payment method.
func (r *GORMPaymentMethodRepository) Update(method *models.PaymentMethod) error {
	res := r.db.Save(method)
	if res.Error != nil {
		return fmt.Errorf("failed to update payment method: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("payment method %d not found for update", method.ID)
	}
	return nil
}

// Count returns how many payment methods exist, used for default seeding.
func (r *GORMPaymentMethodRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.PaymentMethod{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count payment methods: %w", err)
	}
	return count, nil
}
