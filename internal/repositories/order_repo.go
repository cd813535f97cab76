package repositories

import (
	"greenmarket/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	GetByProviderRef(providerRef string) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status string) error
	// Deletion of orders is intentionally not supported: orders are an
	// immutable purchase record.
}
