package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"greenmarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRecord is the persisted form of a session cart: one row per session
// with the item lines serialized as JSON.
type CartRecord struct {
	SessionID string    `gorm:"primaryKey;type:varchar(64)"`
	Items     string    `gorm:"type:text"`
	UpdatedAt time.Time
}

// TableName keeps the table name short.
func (CartRecord) TableName() string { return "carts" }

// GORMCartStore is a GORM implementation of CartStore. Because carts live in
// the same database as products and orders, cart clearing can join the
// finalization transaction.
type GORMCartStore struct {
	db *gorm.DB
}

// NewGORMCartStore creates a new instance of GORMCartStore.
func NewGORMCartStore(db *gorm.DB) *GORMCartStore {
	return &GORMCartStore{
		db: db,
	}
}

// Load returns the cart for a session, or a new empty cart if none exists.
func (s *GORMCartStore) Load(sessionID string) (*models.Cart, error) {
	var record CartRecord
	if err := s.db.First(&record, "session_id = ?", sessionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.NewCart(sessionID), nil
		}
		return nil, fmt.Errorf("failed to load cart for session %s: %w", sessionID, err)
	}

	items := make(map[string]models.CartItem)
	if record.Items != "" {
		if err := json.Unmarshal([]byte(record.Items), &items); err != nil {
			return nil, fmt.Errorf("failed to decode cart for session %s: %w", sessionID, err)
		}
	}
	return &models.Cart{SessionID: sessionID, Items: items}, nil
}

// Save upserts the cart row for its session.
func (s *GORMCartStore) Save(cart *models.Cart) error {
	body, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("failed to encode cart for session %s: %w", cart.SessionID, err)
	}

	record := CartRecord{SessionID: cart.SessionID, Items: string(body)}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save cart for session %s: %w", cart.SessionID, err)
	}
	return nil
}

// Delete removes the cart row for a session. Deleting an absent cart is not
// an error; the session simply has an empty cart.
func (s *GORMCartStore) Delete(sessionID string) error {
	if err := s.db.Delete(&CartRecord{}, "session_id = ?", sessionID).Error; err != nil {
		return fmt.Errorf("failed to delete cart for session %s: %w", sessionID, err)
	}
	return nil
}
