package models

import "time"

// SiteConfig is one key/value pair of site appearance configuration.
type SiteConfig struct {
	ConfigKey   string    `json:"config_key" gorm:"primaryKey;type:varchar(100)"`
	ConfigValue string    `json:"config_value" gorm:"type:varchar(255)"`
	UpdatedAt   time.Time `json:"updated_at"`
}
