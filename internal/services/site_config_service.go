package services

import (
	"greenmarket/internal/repositories"
)

// themeDefaults are the stock appearance values used until an admin
// customizes them.
var themeDefaults = map[string]string{
	"primary_color":   "#2d7a3e",
	"secondary_color": "#4caf50",
	"light_color":     "#81c784",
	"bg_color":        "#f5f5f5",
}

// SiteConfigService reads and updates the site appearance settings.
type SiteConfigService struct {
	repo repositories.SiteConfigRepository
}

// NewSiteConfigService creates a new SiteConfigService.
func NewSiteConfigService(repo repositories.SiteConfigRepository) *SiteConfigService {
	return &SiteConfigService{
		repo: repo,
	}
}

// Theme returns the current appearance settings, falling back to defaults
// for keys that were never customized.
func (s *SiteConfigService) Theme() (map[string]string, error) {
	stored, err := s.repo.All()
	if err != nil {
		return nil, err
	}
	theme := make(map[string]string, len(themeDefaults))
	for key, def := range themeDefaults {
		if v, ok := stored[key]; ok && v != "" {
			theme[key] = v
		} else {
			theme[key] = def
		}
	}
	return theme, nil
}

// UpdateTheme upserts the given appearance keys; unknown keys are ignored so
// the config table only ever holds theme values.
func (s *SiteConfigService) UpdateTheme(values map[string]string) error {
	for key, value := range values {
		if _, ok := themeDefaults[key]; !ok {
			continue
		}
		if err := s.repo.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}
