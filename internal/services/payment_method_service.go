package services

import (
	"fmt"

	"greenmarket/internal/models"
	"greenmarket/internal/repositories"
)

// PaymentMethodService handles the admin-configurable checkout options.
type PaymentMethodService struct {
	repo repositories.PaymentMethodRepository
}

// NewPaymentMethodService creates a new PaymentMethodService.
func NewPaymentMethodService(repo repositories.PaymentMethodRepository) *PaymentMethodService {
	return &PaymentMethodService{
		repo: repo,
	}
}

// ListAll returns every payment method in display order.
func (s *PaymentMethodService) ListAll() ([]models.PaymentMethod, error) {
	return s.repo.GetAll()
}

// ListEnabled returns the enabled payment methods in display order.
func (s *PaymentMethodService) ListEnabled() ([]models.PaymentMethod, error) {
	return s.repo.GetEnabled()
}

// Toggle flips the enabled flag of one payment method and returns it.
func (s *PaymentMethodService) Toggle(id uint) (*models.PaymentMethod, error) {
	method, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	method.Enabled = !method.Enabled
	if err := s.repo.Update(method); err != nil {
		return nil, err
	}
	return method, nil
}

// Reorder assigns new display positions by payment method ID.
func (s *PaymentMethodService) Reorder(positions map[uint]int) error {
	for id, position := range positions {
		method, err := s.repo.GetByID(id)
		if err != nil {
			return fmt.Errorf("cannot reorder payment method %d: %w", id, err)
		}
		method.DisplayOrder = position
		if err := s.repo.Update(method); err != nil {
			return fmt.Errorf("cannot reorder payment method %d: %w", id, err)
		}
	}
	return nil
}
