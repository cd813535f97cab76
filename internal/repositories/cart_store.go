package repositories

import (
	"sync"

	"greenmarket/internal/models"
)

// CartStore persists per-session carts. Load never fails on an unknown
// session; it returns a fresh empty cart, matching how a browser session
// starts out.
type CartStore interface {
	Load(sessionID string) (*models.Cart, error)
	Save(cart *models.Cart) error
	Delete(sessionID string) error
}

// MemoryCartStore is an in-memory CartStore for tests and single-process use.
type MemoryCartStore struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMemoryCartStore creates a new instance of MemoryCartStore.
func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{
		carts: make(map[string]models.Cart),
	}
}

// Load returns the cart for a session, or a new empty cart.
func (s *MemoryCartStore) Load(sessionID string) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[sessionID]
	if !ok {
		return models.NewCart(sessionID), nil
	}
	// Copy the item map so callers mutate their own snapshot.
	items := make(map[string]models.CartItem, len(cart.Items))
	for k, v := range cart.Items {
		items[k] = v
	}
	return &models.Cart{SessionID: cart.SessionID, Items: items}, nil
}

// Save stores the cart under its session ID.
func (s *MemoryCartStore) Save(cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[string]models.CartItem, len(cart.Items))
	for k, v := range cart.Items {
		items[k] = v
	}
	s.carts[cart.SessionID] = models.Cart{SessionID: cart.SessionID, Items: items}
	return nil
}

// Delete removes the cart for a session.
func (s *MemoryCartStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}
