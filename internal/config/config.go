// Package config loads service settings from environment variables,
// with defaults suited to a local checkout and fail-fast validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	InputDir     string
	ProcessedDir string
	ReportDir    string

	JoinMode string

	// Freshness thresholds in days. The per-kind values default to the
	// general one; callers choose, the quality package never hardcodes.
	FreshnessDays        int
	EnergyFreshnessDays  int
	WeatherFreshnessDays int

	CityMetadataPath string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	RunInterval     time.Duration // 0 means run once and exit
	ShutdownTimeout time.Duration

	// Optional Kafka run-summary announcer.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaAnnounceTopic string
}

// Load reads configuration from the environment, applying defaults
// where unset. A .env file in the working directory is honored when
// present.
func Load() (*Config, error) {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	freshness, err := envInt("FRESHNESS_DAYS", 2)
	if err != nil {
		return nil, err
	}
	energyFreshness, err := envInt("ENERGY_FRESHNESS_DAYS", freshness)
	if err != nil {
		return nil, err
	}
	weatherFreshness, err := envInt("WEATHER_FRESHNESS_DAYS", freshness)
	if err != nil {
		return nil, err
	}

	runInterval, err := envDuration("RUN_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		InputDir:     envOrDefault("INPUT_DIR", "data/raw"),
		ProcessedDir: envOrDefault("PROCESSED_DIR", "data/processed"),
		ReportDir:    envOrDefault("REPORT_DIR", "data/reports"),

		JoinMode: envOrDefault("JOIN_MODE", "inner"),

		FreshnessDays:        freshness,
		EnergyFreshnessDays:  energyFreshness,
		WeatherFreshnessDays: weatherFreshness,

		CityMetadataPath: os.Getenv("CITY_METADATA_PATH"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		RunInterval:     runInterval,
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaAnnounceTopic: envOrDefault("KAFKA_ANNOUNCE_TOPIC", "reconciliation-runs"),
	}

	if cfg.InputDir == "" {
		return nil, errors.New("INPUT_DIR is required")
	}
	if cfg.JoinMode != "inner" && cfg.JoinMode != "left-on-energy" {
		return nil, fmt.Errorf("invalid JOIN_MODE %q (want inner or left-on-energy)", cfg.JoinMode)
	}
	if cfg.FreshnessDays < 0 || cfg.EnergyFreshnessDays < 0 || cfg.WeatherFreshnessDays < 0 {
		return nil, errors.New("freshness thresholds must be non-negative")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaAnnounceTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_ANNOUNCE_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must be non-negative", key)
	}
	return d, nil
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
