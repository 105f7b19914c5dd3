// Package config provides configuration loading for the workflow service.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultCacheTTLSeconds = 60
	defaultRevalidateCron  = "@hourly"
)

// ServiceConfig is the invokeai.yaml service configuration: the resource
// catalog the validator checks references against, the optional redis cache
// in front of it, the revalidation schedule, and extra template packs.
type ServiceConfig struct {
	Catalog      CatalogConfig      `yaml:"catalog"`
	AccessCache  AccessCacheConfig  `yaml:"access_cache"`
	Revalidation RevalidationConfig `yaml:"revalidation"`
	Templates    TemplatesConfig    `yaml:"templates"`
}

// CatalogConfig points at the resource catalog API. An empty base URL
// disables resource access checks entirely.
type CatalogConfig struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,http_url"`
}

// AccessCacheConfig configures the redis cache in front of the catalog
// checkers. An empty redis URL disables caching.
type AccessCacheConfig struct {
	RedisURL   string `yaml:"redis_url"`
	TTLSeconds int    `yaml:"ttl_seconds" validate:"min=0"`
}

// TTL returns the cache entry lifetime.
func (c AccessCacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RevalidationConfig configures the periodic sweep over the workflow
// library.
type RevalidationConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// TemplatesConfig points at an optional JSON template pack loaded on top of
// the built-in templates.
type TemplatesConfig struct {
	Path string `yaml:"path"`
}

// DefaultServiceConfig returns the configuration used when no file is
// present: no catalog, no cache, revalidation parked on an hourly schedule.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		AccessCache:  AccessCacheConfig{TTLSeconds: defaultCacheTTLSeconds},
		Revalidation: RevalidationConfig{Cron: defaultRevalidateCron},
	}
}

// LoadServiceConfig loads service configuration from a YAML file, fills in
// defaults, and validates the result.
func LoadServiceConfig(filepath string) (ServiceConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return ServiceConfig{}, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	var config ServiceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return ServiceConfig{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if config.AccessCache.TTLSeconds == 0 {
		config.AccessCache.TTLSeconds = defaultCacheTTLSeconds
	}

	if config.Revalidation.Cron == "" {
		config.Revalidation.Cron = defaultRevalidateCron
	}

	if err := ValidateServiceConfig(config); err != nil {
		return ServiceConfig{}, err
	}

	return config, nil
}

// LoadServiceConfigOrDefault attempts to load service config from a file,
// falling back to the default configuration if the file cannot be read.
func LoadServiceConfigOrDefault(filepath string) ServiceConfig {
	config, err := LoadServiceConfig(filepath)
	if err != nil {
		return DefaultServiceConfig()
	}

	return config
}

// ValidateServiceConfig validates the service configuration.
func ValidateServiceConfig(config ServiceConfig) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid service config: %w", err)
	}

	if config.AccessCache.RedisURL != "" && config.Catalog.BaseURL == "" {
		return fmt.Errorf("access_cache.redis_url requires catalog.base_url")
	}

	if config.Revalidation.Enabled {
		if _, err := cron.ParseStandard(config.Revalidation.Cron); err != nil {
			return fmt.Errorf("revalidation.cron is not a valid cron expression: %w", err)
		}
	}

	return nil
}
