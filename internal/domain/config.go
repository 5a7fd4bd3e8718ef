package domain

import "time"

// Configuration Models

// Config represents the main application configuration
type Config struct {
	Server        ServerConfig   `mapstructure:"server"`
	Storage       StorageConfig  `mapstructure:"storage"`
	Database      DatabaseConfig `mapstructure:"database"`
	Logging       LoggingConfig  `mapstructure:"logging"`
	DefaultPolicy PolicyConfig   `mapstructure:"default_policy"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file path when Driver is "sqlite".
	SQLitePath string `mapstructure:"sqlite_path"`
	// MigrationsPath holds the Postgres migration files.
	MigrationsPath string `mapstructure:"migrations_path"`
	// PolicyCacheSize bounds the in-process payer profile cache.
	PolicyCacheSize int `mapstructure:"policy_cache_size"`
}

// DatabaseConfig represents Postgres connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MinOpenConns    int           `mapstructure:"min_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PolicyConfig is the documented default payer policy used for clinic-side
// estimation when no payer profile is selected. It is injected wherever a
// default is needed rather than living as a package-level singleton.
type PolicyConfig struct {
	Name                string  `mapstructure:"name"`
	MaxHours            float64 `mapstructure:"max_hours"`
	MinHours            float64 `mapstructure:"min_hours"`
	AdaptiveWeight      float64 `mapstructure:"adaptive_weight"`
	SkillWeight         float64 `mapstructure:"skill_weight"`
	BehavioralWeight    float64 `mapstructure:"behavioral_weight"`
	EnvironmentalWeight float64 `mapstructure:"environmental_weight"`
	AgeMultYoung        float64 `mapstructure:"age_mult_young"`
	AgeMultMid          float64 `mapstructure:"age_mult_mid"`
	AgeMultTeen         float64 `mapstructure:"age_mult_teen"`
	ParentTrainingMin   float64 `mapstructure:"parent_training_min"`
	ParentTrainingMax   float64 `mapstructure:"parent_training_max"`
}

// Profile converts the configured default policy into a PolicyProfile.
func (p PolicyConfig) Profile() PolicyProfile {
	return PolicyProfile{
		Name:                p.Name,
		MaxHours:            p.MaxHours,
		MinHours:            p.MinHours,
		AdaptiveWeight:      p.AdaptiveWeight,
		SkillWeight:         p.SkillWeight,
		BehavioralWeight:    p.BehavioralWeight,
		EnvironmentalWeight: p.EnvironmentalWeight,
		AgeMultipliers: AgeMultipliers{
			Young: p.AgeMultYoung,
			Mid:   p.AgeMultMid,
			Teen:  p.AgeMultTeen,
		},
		ParentTraining: HourRange{
			Min: p.ParentTrainingMin,
			Max: p.ParentTrainingMax,
		},
	}
}
