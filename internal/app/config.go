package app

import (
	"fmt"
	"slices"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/linkbot/core/config"
	coredatabase "github.com/m3rciful/linkbot/core/database"
	"github.com/m3rciful/linkbot/internal/catalog"
)

// Catalog sources.
const (
	SourcePreset   = "preset"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// CatalogConfig selects where the link menu comes from. The postgres source
// seeds Preset into empty tables.
type CatalogConfig struct {
	Source string `yaml:"source" envconfig:"CATALOG_SOURCE"`
	File   string `yaml:"file" envconfig:"CATALOG_FILE"`
	Preset string `yaml:"preset" envconfig:"CATALOG_PRESET"`
}

// OrdersConfig toggles the order form.
type OrdersConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"ORDERS_ENABLED"`
	// Timezone for admin notifications, e.g. "Europe/Moscow"; empty -> local.
	Timezone string `yaml:"timezone" envconfig:"ORDERS_TIMEZONE"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Catalog  CatalogConfig       `yaml:"catalog"`
	Orders   OrdersConfig        `yaml:"orders"`
}

// CoreConfig exposes the shared core section.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads YAML at path (optional) and the environment.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalize(cfg *Config) error {
	cc := &cfg.Catalog
	cc.Source = strings.ToLower(strings.TrimSpace(cc.Source))
	if cc.Source == "" {
		cc.Source = SourcePreset
	}
	cc.Preset = strings.ToLower(strings.TrimSpace(cc.Preset))
	if cc.Preset == "" {
		cc.Preset = "links"
	}
	if !slices.Contains(catalog.PresetNames(), cc.Preset) {
		return fmt.Errorf("invalid catalog.preset %q; allowed: %s", cc.Preset, strings.Join(catalog.PresetNames(), ", "))
	}

	switch cc.Source {
	case SourcePreset:
	case SourceFile:
		if strings.TrimSpace(cc.File) == "" {
			return fmt.Errorf("catalog.file is required when catalog.source is 'file'")
		}
	case SourcePostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required when catalog.source is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid catalog.source %q; allowed: preset, file, postgres", cc.Source)
	}

	if tz := strings.TrimSpace(cfg.Orders.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid orders.timezone %q: %w", tz, err)
		}
	}
	return nil
}

func (c OrdersConfig) location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
