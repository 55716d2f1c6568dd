package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "vital-focus:patient:", cfg.Vitals.Cache.RecordKeyPrefix)
	assert.Equal(t, ":record", cfg.Vitals.Cache.RecordSuffix)
	assert.Equal(t, ":insights", cfg.Vitals.Cache.InsightsSuffix)
	assert.Equal(t, 30, cfg.Vitals.Cache.InsightsTTL)
	assert.Equal(t, "vitals:alert-state:", cfg.Vitals.Cache.StateKeyPrefix)

	assert.Equal(t, 5, cfg.Vitals.PollInterval)
	assert.Equal(t, 10, cfg.Vitals.Evaluation.BatchSize)
	assert.Equal(t, 120.0, cfg.Vitals.Engine.HighBPMThreshold)
	assert.Equal(t, 55.0, cfg.Vitals.Engine.LowBPMThreshold)

	assert.Equal(t, "wisefido/vitals/readings", cfg.Vitals.Ingest.Topic)
	assert.Equal(t, "", cfg.Vitals.Notifier.Endpoint)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_DatabaseDefaultsIncludePool(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, 5, cfg.Database.MaxIdle)
}

func TestLoad_DatabaseEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_DATABASE", "vitalsdb")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "vitalsdb", cfg.Database.Database)
	// Untouched fields keep their defaults.
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxConns)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("POLL_INTERVAL", "15")
	t.Setenv("ALERT_ENDPOINT", "https://alerts.example.com/send")
	t.Setenv("MQTT_BROKER", "tcp://broker.internal:1883")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 15, cfg.Vitals.PollInterval)
	assert.Equal(t, "https://alerts.example.com/send", cfg.Vitals.Notifier.Endpoint)
	assert.Equal(t, "tcp://broker.internal:1883", cfg.MQTT.Broker)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Vitals.PollInterval)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "vitals",
		Password: "secret",
		Database: "owlrd",
		SSLMode:  "disable",
	}

	dsn := cfg.GetDSN()

	assert.Equal(t, "host=db.internal port=5432 user=vitals password=secret dbname=owlrd sslmode=disable", dsn)
}
