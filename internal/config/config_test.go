package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/raw", cfg.InputDir)
	assert.Equal(t, "data/processed", cfg.ProcessedDir)
	assert.Equal(t, "data/reports", cfg.ReportDir)
	assert.Equal(t, "inner", cfg.JoinMode)
	assert.Equal(t, 2, cfg.FreshnessDays)
	assert.Equal(t, 2, cfg.EnergyFreshnessDays)
	assert.Equal(t, 2, cfg.WeatherFreshnessDays)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, time.Duration(0), cfg.RunInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("INPUT_DIR", "/srv/raw")
	t.Setenv("JOIN_MODE", "left-on-energy")
	t.Setenv("FRESHNESS_DAYS", "5")
	t.Setenv("WEATHER_FRESHNESS_DAYS", "1")
	t.Setenv("RUN_INTERVAL", "15m")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/raw", cfg.InputDir)
	assert.Equal(t, "left-on-energy", cfg.JoinMode)
	assert.Equal(t, 5, cfg.FreshnessDays)
	// Unset per-kind threshold inherits the general one.
	assert.Equal(t, 5, cfg.EnergyFreshnessDays)
	assert.Equal(t, 1, cfg.WeatherFreshnessDays)
	assert.Equal(t, 15*time.Minute, cfg.RunInterval)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.KafkaBrokers)
}

func TestLoadValidation(t *testing.T) {
	t.Run("invalid join mode", func(t *testing.T) {
		t.Setenv("JOIN_MODE", "outer")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative freshness", func(t *testing.T) {
		t.Setenv("FRESHNESS_DAYS", "-1")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("non-numeric freshness", func(t *testing.T) {
		t.Setenv("ENERGY_FRESHNESS_DAYS", "soon")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid run interval", func(t *testing.T) {
		t.Setenv("RUN_INTERVAL", "often")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative shutdown timeout", func(t *testing.T) {
		t.Setenv("SHUTDOWN_TIMEOUT", "-5s")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("kafka enabled without brokers", func(t *testing.T) {
		t.Setenv("KAFKA_ENABLED", "true")
		t.Setenv("KAFKA_BROKERS", " , ")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitBrokers("a:9092,b:9092"))
	assert.Equal(t, []string{"a:9092"}, splitBrokers(" a:9092 ,"))
	assert.Nil(t, splitBrokers(""))
}
