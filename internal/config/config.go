// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Filename string `yaml:"filename"`
}

// MirrorConfig enables the S3 state mirror when a bucket is set.
type MirrorConfig struct {
	Bucket string `yaml:"bucket,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
}

// LeagueConfig is one league's rule set and window calendar.
type LeagueConfig struct {
	// Participants in draft order. Also the standings fallback when no
	// ranking data exists yet.
	Participants []string `yaml:"participants"`
	// MaxGW is the final gameweek of the season (defaults to 38).
	MaxGW int `yaml:"max_gw,omitempty"`
	// AllowUndrafted lets transfers claim never-drafted catalog players.
	AllowUndrafted bool `yaml:"allow_undrafted,omitempty"`
	// EnforcePositions requires like-for-like position swaps.
	EnforcePositions bool `yaml:"enforce_positions,omitempty"`
	// Windows maps a trigger gameweek to the rounds it unlocks. When empty
	// the built-in schedule for the league tag applies.
	Windows map[int]int `yaml:"windows,omitempty"`
	// OpenCron, when set, opens windows automatically on this cron spec.
	OpenCron string `yaml:"open_cron,omitempty"`
	// CurrentGW is consulted by the scheduled opener and by normalization.
	CurrentGW int `yaml:"current_gw,omitempty"`
	// CatalogFile points at the league's player catalog JSON. Optional.
	CatalogFile string `yaml:"catalog_file,omitempty"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		MetricsPort int    `yaml:"metrics_port"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Mirror   MirrorConfig   `yaml:"mirror"`

	Leagues map[string]LeagueConfig `yaml:"leagues"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Deploy-time values come from the environment
	if bucket := os.Getenv("MIRROR_BUCKET"); bucket != "" {
		cfg.Mirror.Bucket = bucket
	}
	if filename := os.Getenv("DATABASE_FILENAME"); filename != "" {
		cfg.Database.Filename = filename
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.Database.Filename == "" {
		return fmt.Errorf("database filename is required")
	}
	if len(c.Leagues) == 0 {
		return fmt.Errorf("at least one league is required")
	}

	for tag, league := range c.Leagues {
		if len(league.Participants) == 0 {
			return fmt.Errorf("league %s: participants are required", tag)
		}
		for gw, rounds := range league.Windows {
			if gw <= 0 {
				return fmt.Errorf("league %s: window gameweek %d must be positive", tag, gw)
			}
			if rounds < 0 {
				return fmt.Errorf("league %s: rounds for gameweek %d cannot be negative", tag, gw)
			}
		}
		if league.MaxGW < 0 {
			return fmt.Errorf("league %s: max_gw cannot be negative", tag)
		}
	}

	return nil
}
