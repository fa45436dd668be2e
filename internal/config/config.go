// Package config loads runtime configuration from YAML with defaults
// for every knob, so a missing file yields a fully working setup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Limits holds the capacity bounds of the in-memory stores.
type Limits struct {
	// MaxOpportunities caps the ranked opportunity list.
	MaxOpportunities int `yaml:"max_opportunities"`
	// MaxTrackedPools caps how many pools keep transaction history.
	MaxTrackedPools int `yaml:"max_tracked_pools"`
	// MaxTransactionsPerPool caps each pool's transaction list.
	MaxTransactionsPerPool int `yaml:"max_transactions_per_pool"`
	// MaxTriggeredAlerts caps the triggered-alert log.
	MaxTriggeredAlerts int `yaml:"max_triggered_alerts"`
}

// Alerting holds alert-evaluation knobs.
type Alerting struct {
	// Cooldown is the minimum time between two triggers of the same rule.
	Cooldown time.Duration `yaml:"cooldown"`
}

// SafetyRules holds safety-classification knobs.
type SafetyRules struct {
	// MinUnverifiedTVL is the TVL floor below which a pool with no
	// verified mint is classified danger.
	MinUnverifiedTVL float64 `yaml:"min_unverified_tvl"`
}

// Sources holds upstream endpoints for the data-fetch collaborator.
type Sources struct {
	PoolsURL          string        `yaml:"pools_url"`
	VerifiedTokensURL string        `yaml:"verified_tokens_url"`
	TransactionsWSURL string        `yaml:"transactions_ws_url"`
	RefreshInterval   time.Duration `yaml:"refresh_interval"`
}

// Storage holds persistence collaborator settings. Empty DSNs mean
// in-memory stores only.
type Storage struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
}

// Server holds HTTP server settings.
type Server struct {
	Listen string `yaml:"listen"`
}

// Config is the full runtime configuration.
type Config struct {
	Limits   Limits      `yaml:"limits"`
	Alerting Alerting    `yaml:"alerting"`
	Safety   SafetyRules `yaml:"safety"`
	Sources  Sources     `yaml:"sources"`
	Storage  Storage     `yaml:"storage"`
	Server   Server      `yaml:"server"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Limits: Limits{
			MaxOpportunities:       12,
			MaxTrackedPools:        8,
			MaxTransactionsPerPool: 15,
			MaxTriggeredAlerts:     50,
		},
		Alerting: Alerting{
			Cooldown: 10 * time.Minute,
		},
		Safety: SafetyRules{
			MinUnverifiedTVL: 10000,
		},
		Sources: Sources{
			RefreshInterval: 30 * time.Second,
		},
		Server: Server{
			Listen: ":8080",
		},
	}
}

// Load reads YAML from path on top of defaults. A missing file is not
// an error; a malformed file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Limits.MaxOpportunities <= 0 {
		return fmt.Errorf("limits.max_opportunities must be positive, got %d", c.Limits.MaxOpportunities)
	}
	if c.Limits.MaxTrackedPools <= 0 {
		return fmt.Errorf("limits.max_tracked_pools must be positive, got %d", c.Limits.MaxTrackedPools)
	}
	if c.Limits.MaxTransactionsPerPool <= 0 {
		return fmt.Errorf("limits.max_transactions_per_pool must be positive, got %d", c.Limits.MaxTransactionsPerPool)
	}
	if c.Limits.MaxTriggeredAlerts <= 0 {
		return fmt.Errorf("limits.max_triggered_alerts must be positive, got %d", c.Limits.MaxTriggeredAlerts)
	}
	if c.Alerting.Cooldown <= 0 {
		return fmt.Errorf("alerting.cooldown must be positive, got %s", c.Alerting.Cooldown)
	}
	return nil
}
