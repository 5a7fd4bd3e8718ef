// Package config loads application configuration from file, environment
// and defaults using Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/aba-necessity-server/internal/domain"
)

// Manager loads and validates the application configuration
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/aba-necessity-server/")

	viper.SetEnvPrefix("ABA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars cover everything
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit", 25)
	viper.SetDefault("server.rate_burst", 50)

	// Storage defaults
	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.sqlite_path", "./data/claims.db")
	viper.SetDefault("storage.migrations_path", "./migrations")
	viper.SetDefault("storage.policy_cache_size", 64)

	// Postgres defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "aba_necessity")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.min_open_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.conn_max_idle_time", "5m")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// Documented default payer policy, used for clinic-side estimation
	// when no payer profile is selected
	viper.SetDefault("default_policy.name", "Default")
	viper.SetDefault("default_policy.max_hours", 40)
	viper.SetDefault("default_policy.min_hours", 10)
	viper.SetDefault("default_policy.adaptive_weight", 1.0)
	viper.SetDefault("default_policy.skill_weight", 1.0)
	viper.SetDefault("default_policy.behavioral_weight", 1.0)
	viper.SetDefault("default_policy.environmental_weight", 1.0)
	viper.SetDefault("default_policy.age_mult_young", 1.2)
	viper.SetDefault("default_policy.age_mult_mid", 1.0)
	viper.SetDefault("default_policy.age_mult_teen", 0.85)
	viper.SetDefault("default_policy.parent_training_min", 2)
	viper.SetDefault("default_policy.parent_training_max", 8)
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetStorageConfig returns storage configuration
func (m *Manager) GetStorageConfig() *domain.StorageConfig {
	return &m.config.Storage
}

// GetDatabaseConfig returns Postgres configuration
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// DefaultPolicy returns the configured default payer policy profile.
func (m *Manager) DefaultPolicy() domain.PolicyProfile {
	return m.config.DefaultPolicy.Profile()
}

// Validate checks the configuration for consistency
func (m *Manager) Validate() error {
	cfg := m.config

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Storage.Driver {
	case "sqlite":
		if cfg.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if cfg.Database.Host == "" || cfg.Database.Database == "" {
			return fmt.Errorf("database host and name are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}

	policy := m.DefaultPolicy()
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("invalid default policy: %w", err)
	}

	return nil
}
