package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	DataDir         string
	SourcesFile     string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Collection intervals.
	NewsInterval    time.Duration
	WeatherInterval time.Duration
	AlertsInterval  time.Duration
	CleanupInterval time.Duration
	FuelInterval    time.Duration

	// Retention window for cleanup.
	RetentionPeriod time.Duration

	// Weather API configuration.
	WeatherAPIKey     string
	WeatherAPIBaseURL string
	WeatherTimeout    time.Duration

	// Scraper configuration.
	ScrapeTimeout time.Duration

	// Kafka alert publishing (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	KafkaBrokers    []string
	KafkaAlertTopic string
	KafkaEnabled    bool
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is merged in first,
// without overriding variables already set in the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	newsInterval, err := parseDuration("NEWS_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}
	weatherInterval, err := parseDuration("WEATHER_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	alertsInterval, err := parseDuration("ALERTS_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	cleanupInterval, err := parseDuration("CLEANUP_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	fuelInterval, err := parseDuration("FUEL_INTERVAL", "360h")
	if err != nil {
		return nil, err
	}
	retention, err := parseDuration("RETENTION_PERIOD", "168h")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	scrapeTimeout, err := parseDuration("SCRAPE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DataDir:         envOrDefault("DATA_DIR", "data"),
		SourcesFile:     envOrDefault("SOURCES_FILE", "sources.yaml"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NewsInterval:    newsInterval,
		WeatherInterval: weatherInterval,
		AlertsInterval:  alertsInterval,
		CleanupInterval: cleanupInterval,
		FuelInterval:    fuelInterval,
		RetentionPeriod: retention,

		WeatherAPIKey:     os.Getenv("WEATHER_API_KEY"),
		WeatherAPIBaseURL: envOrDefault("WEATHER_API_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		WeatherTimeout:    weatherTimeout,

		ScrapeTimeout: scrapeTimeout,

		KafkaBrokers:    brokers,
		KafkaAlertTopic: envOrDefault("KAFKA_ALERT_TOPIC", "situation-alerts"),
		KafkaEnabled:    kafkaEnabled,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}
