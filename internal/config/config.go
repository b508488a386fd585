package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/quake-map/internal/domain"
)

// Default data sources.
const (
	DefaultFeedBaseURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary"
	DefaultPlatesURL   = "https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_boundaries.json"
	DefaultOrogensURL  = "https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_orogens.json"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Page and data sources.
	PageVariant   string
	FeedBaseURL   string
	FeedTimeout   time.Duration
	PlatesURL     string
	OrogensURL    string
	DefaultPeriod string

	// Render journal.
	JournalEnabled    bool
	KafkaBrokers      []string
	KafkaJournalTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is read first if present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("FEED_TIMEOUT", "30s"))
	if err != nil || feedTimeout <= 0 {
		return nil, errors.New("invalid FEED_TIMEOUT")
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}
	journalEnabled := len(brokers) > 0
	if v := os.Getenv("JOURNAL_ENABLED"); v != "" {
		journalEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		PageVariant:   sharedcfg.EnvOrDefault("PAGE_VARIANT", "visualization"),
		FeedBaseURL:   sharedcfg.EnvOrDefault("FEED_BASE_URL", DefaultFeedBaseURL),
		FeedTimeout:   feedTimeout,
		PlatesURL:     sharedcfg.EnvOrDefault("PLATES_URL", DefaultPlatesURL),
		OrogensURL:    sharedcfg.EnvOrDefault("OROGENS_URL", DefaultOrogensURL),
		DefaultPeriod: sharedcfg.EnvOrDefault("DEFAULT_PERIOD", domain.PeriodPast30Days),

		JournalEnabled:    journalEnabled,
		KafkaBrokers:      brokers,
		KafkaJournalTopic: sharedcfg.EnvOrDefault("KAFKA_JOURNAL_TOPIC", "quake-map-renders"),
	}

	if cfg.PageVariant != "visualization" && cfg.PageVariant != "heatmap" {
		return nil, fmt.Errorf("invalid PAGE_VARIANT %q: want visualization or heatmap", cfg.PageVariant)
	}
	if _, err := domain.NewPeriods(cfg.FeedBaseURL).Lookup(cfg.DefaultPeriod); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_PERIOD: %w", err)
	}
	if cfg.JournalEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("JOURNAL_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.JournalEnabled && cfg.KafkaJournalTopic == "" {
		return nil, errors.New("KAFKA_JOURNAL_TOPIC is required when the journal is enabled")
	}

	return cfg, nil
}
