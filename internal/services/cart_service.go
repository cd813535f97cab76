package services

import (
	"fmt"

	"greenmarket/internal/models"
	"greenmarket/internal/repositories"
)

// CartService handles business logic for the session shopping cart. A cart
// is owned by one session and mutated only by the request holding that
// session, so no locking happens here; the store serializes persistence.
type CartService struct {
	products repositories.ProductRepository
	carts    repositories.CartStore
}

// NewCartService creates a new CartService.
func NewCartService(products repositories.ProductRepository, carts repositories.CartStore) *CartService {
	return &CartService{
		products: products,
		carts:    carts,
	}
}

// Get returns the cart for a session.
func (s *CartService) Get(sessionID string) (*models.Cart, error) {
	return s.carts.Load(sessionID)
}

// Add puts quantity units of a product into the cart, merging with any
// existing line. The line snapshots the product's current price, name and
// image; later catalog changes do not touch it.
func (s *CartService) Add(sessionID, productID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", productID, err)
	}

	cart, err := s.carts.Load(sessionID)
	if err != nil {
		return nil, err
	}

	newQuantity := quantity
	if line, ok := cart.Items[productID]; ok {
		newQuantity += line.Quantity
	}
	if newQuantity > product.Stock {
		return nil, &InsufficientStockError{
			ProductID: productID,
			Name:      product.Name,
			Requested: newQuantity,
			Available: product.Stock,
		}
	}

	if line, ok := cart.Items[productID]; ok {
		// Keep the original snapshot; only the quantity grows.
		line.Quantity = newQuantity
		cart.Items[productID] = line
	} else {
		cart.Items[productID] = models.CartItem{
			ProductID: productID,
			Name:      product.Name,
			Image:     product.ImageFilename,
			UnitPrice: product.Price,
			Quantity:  quantity,
		}
	}

	if err := s.carts.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Update replaces a line's quantity. A quantity of zero or less removes the
// line; a quantity above current stock fails and leaves the line untouched.
func (s *CartService) Update(sessionID, productID string, quantity int) (*models.Cart, error) {
	cart, err := s.carts.Load(sessionID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		delete(cart.Items, productID)
		if err := s.carts.Save(cart); err != nil {
			return nil, err
		}
		return cart, nil
	}

	product, err := s.products.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", productID, err)
	}
	if quantity > product.Stock {
		return nil, &InsufficientStockError{
			ProductID: productID,
			Name:      product.Name,
			Requested: quantity,
			Available: product.Stock,
		}
	}

	if line, ok := cart.Items[productID]; ok {
		line.Quantity = quantity
		cart.Items[productID] = line
	}

	if err := s.carts.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove deletes a line from the cart unconditionally.
func (s *CartService) Remove(sessionID, productID string) (*models.Cart, error) {
	cart, err := s.carts.Load(sessionID)
	if err != nil {
		return nil, err
	}
	delete(cart.Items, productID)
	if err := s.carts.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart unconditionally.
func (s *CartService) Clear(sessionID string) error {
	return s.carts.Delete(sessionID)
}
