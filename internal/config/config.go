package config

import (
	"os"
	"strconv"
)

// Config is the vitals service configuration.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	Vitals struct {
		// Redis cache key layout. The record cache holds the legacy
		// nested document per patient; the insights cache holds the
		// latest engine evaluation for the presentation layer.
		Cache struct {
			RecordKeyPrefix string // e.g. "vital-focus:patient:"
			RecordSuffix    string // e.g. ":record"
			InsightsSuffix  string // e.g. ":insights"
			InsightsTTL     int    // seconds
			StateKeyPrefix  string // e.g. "vitals:alert-state:"
			StateTTL        int    // seconds
		}

		// Poll loop over the patient roster.
		PollInterval int // seconds

		Evaluation struct {
			BatchSize int
		}

		// Heart-rate alert thresholds (all four of the last readings
		// must breach the same bound).
		Engine struct {
			HighBPMThreshold float64
			LowBPMThreshold  float64
		}

		Ingest struct {
			Topic string
		}

		Notifier struct {
			Endpoint string // HTTP email-alert endpoint; empty disables dispatch
			Timeout  int    // seconds
		}
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load builds the configuration from environment variables with
// defaults suitable for local development.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database = DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "owlrd",
		SSLMode:  "disable",
		MaxConns: 25,
		MaxIdle:  5,
	}
	cfg.Database.LoadFromEnv("DB")

	cfg.Redis = RedisConfig{
		Addr: "localhost:6379",
		DB:   0,
	}
	cfg.Redis.LoadFromEnv("REDIS")

	cfg.MQTT = MQTTConfig{
		ClientID: "wisefido-vitals",
		QoS:      1,
	}
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Vitals.Cache.RecordKeyPrefix = getEnv("CACHE_RECORD_PREFIX", "vital-focus:patient:")
	cfg.Vitals.Cache.RecordSuffix = ":record"
	cfg.Vitals.Cache.InsightsSuffix = ":insights"
	cfg.Vitals.Cache.InsightsTTL = getEnvInt("CACHE_INSIGHTS_TTL", 30)
	cfg.Vitals.Cache.StateKeyPrefix = getEnv("CACHE_STATE_PREFIX", "vitals:alert-state:")
	cfg.Vitals.Cache.StateTTL = getEnvInt("CACHE_STATE_TTL", 86400)

	cfg.Vitals.PollInterval = getEnvInt("POLL_INTERVAL", 5)
	cfg.Vitals.Evaluation.BatchSize = getEnvInt("EVALUATION_BATCH_SIZE", 10)

	cfg.Vitals.Engine.HighBPMThreshold = 120
	cfg.Vitals.Engine.LowBPMThreshold = 55

	cfg.Vitals.Ingest.Topic = getEnv("INGEST_TOPIC", "wisefido/vitals/readings")

	cfg.Vitals.Notifier.Endpoint = getEnv("ALERT_ENDPOINT", "")
	cfg.Vitals.Notifier.Timeout = getEnvInt("ALERT_TIMEOUT", 10)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
