package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCleanManager(t *testing.T) *Manager {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	m, err := NewManager()
	require.NoError(t, err)
	return m
}

func TestNewManagerDefaults(t *testing.T) {
	m := newCleanManager(t)

	server := m.GetServerConfig()
	assert.Equal(t, "0.0.0.0", server.Host)
	assert.Equal(t, 8080, server.Port)
	assert.Equal(t, float64(25), server.RateLimit)
	assert.Equal(t, 50, server.RateBurst)

	storage := m.GetStorageConfig()
	assert.Equal(t, "sqlite", storage.Driver)
	assert.Equal(t, "./data/claims.db", storage.SQLitePath)
	assert.Equal(t, "./migrations", storage.MigrationsPath)
	assert.Equal(t, 64, storage.PolicyCacheSize)

	db := m.GetDatabaseConfig()
	assert.Equal(t, "localhost", db.Host)
	assert.Equal(t, 5432, db.Port)
	assert.Equal(t, "aba_necessity", db.Database)

	logging := m.GetConfig().Logging
	assert.Equal(t, "info", logging.Level)
	assert.Equal(t, "json", logging.Format)
}

func TestDefaultPolicyProfile(t *testing.T) {
	m := newCleanManager(t)

	policy := m.DefaultPolicy()
	assert.Equal(t, "Default", policy.Name)
	assert.Equal(t, float64(40), policy.MaxHours)
	assert.Equal(t, float64(10), policy.MinHours)
	assert.Equal(t, 1.0, policy.AdaptiveWeight)
	assert.Equal(t, 1.2, policy.AgeMultipliers.Young)
	assert.Equal(t, 1.0, policy.AgeMultipliers.Mid)
	assert.Equal(t, 0.85, policy.AgeMultipliers.Teen)
	assert.Equal(t, float64(2), policy.ParentTraining.Min)
	assert.Equal(t, float64(8), policy.ParentTraining.Max)

	assert.NoError(t, policy.Validate())
}

func TestValidatePassesOnDefaults(t *testing.T) {
	m := newCleanManager(t)
	assert.NoError(t, m.Validate())
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Manager)
	}{
		{"port out of range", func(m *Manager) { m.config.Server.Port = 70000 }},
		{"zero port", func(m *Manager) { m.config.Server.Port = 0 }},
		{"unknown storage driver", func(m *Manager) { m.config.Storage.Driver = "mysql" }},
		{"sqlite without path", func(m *Manager) { m.config.Storage.SQLitePath = "" }},
		{
			"postgres without host",
			func(m *Manager) {
				m.config.Storage.Driver = "postgres"
				m.config.Database.Host = ""
			},
		},
		{"default policy min above max", func(m *Manager) { m.config.DefaultPolicy.MinHours = 50 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newCleanManager(t)
			tt.mutate(m)
			assert.Error(t, m.Validate())
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("ABA_SERVER_PORT", "9090")
	t.Setenv("ABA_STORAGE_DRIVER", "postgres")
	t.Setenv("ABA_LOGGING_LEVEL", "debug")

	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, 9090, m.GetServerConfig().Port)
	assert.Equal(t, "postgres", m.GetStorageConfig().Driver)
	assert.Equal(t, "debug", m.GetConfig().Logging.Level)
}
