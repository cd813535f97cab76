package repositories

import (
	"fmt"

	"greenmarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SiteConfigRepository defines the interface for site appearance settings.
type SiteConfigRepository interface {
	Get(key string) (string, error)
	Set(key, value string) error
	All() (map[string]string, error)
}

// GORMSiteConfigRepository is a GORM implementation of SiteConfigRepository.
type GORMSiteConfigRepository struct {
	db *gorm.DB
}

// NewGORMSiteConfigRepository creates a new instance of
// GORMSiteConfigRepository.
func NewGORMSiteConfigRepository(db *gorm.DB) *GORMSiteConfigRepository {
	return &GORMSiteConfigRepository{
		db: db,
	}
}

// Get returns the value for a config key, or an empty string if unset.
func (r *GORMSiteConfigRepository) Get(key string) (string, error) {
	var config models.SiteConfig
	if err := r.db.First(&config, "config_key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to get site config %s: %w", key, err)
	}
	return config.ConfigValue, nil
}

// Set upserts a config key.
func (r *GORMSiteConfigRepository) Set(key, value string) error {
	config := models.SiteConfig{ConfigKey: key, ConfigValue: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "config_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"config_value", "updated_at"}),
	}).Create(&config).Error
	if err != nil {
		return fmt.Errorf("failed to set site config %s: %w", key, err)
	}
	return nil
}

// All returns every stored config pair.
func (r *GORMSiteConfigRepository) All() (map[string]string, error) {
	var configs []models.SiteConfig
	if err := r.db.Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("failed to list site config: %w", err)
	}
	out := make(map[string]string, len(configs))
	for _, c := range configs {
		out[c.ConfigKey] = c.ConfigValue
	}
	return out, nil
}
