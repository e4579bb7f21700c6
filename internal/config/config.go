package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	defaultAreaURL     = "http://www.jma.go.jp/bosai/common/const/area.json"
	defaultForecastURL = "https://www.jma.go.jp/bosai/forecast/data/forecast/{area_code}.json"

	// AreaCodePlaceholder is substituted with the office code in JMAForecastURL.
	AreaCodePlaceholder = "{area_code}"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// JMA API configuration.
	JMAAreaURL     string
	JMAForecastURL string
	JMATimeout     time.Duration
	JMARateLimit   float64 // requests per second

	// Local store configuration.
	StoreEnabled bool
	StorePath    string

	// Forecast-refreshed event publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Scheduled refresh of watched areas.
	PrefetchAreas    []string
	PrefetchSchedule string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	jmaTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("JMA_TIMEOUT", "10s"))
	if err != nil || jmaTimeout <= 0 {
		return nil, errors.New("invalid JMA_TIMEOUT")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("JMA_RATE_LIMIT", "5"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid JMA_RATE_LIMIT")
	}

	storeEnabled, err := parseBool("STORE_ENABLED", true)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		JMAAreaURL:     sharedcfg.EnvOrDefault("JMA_AREA_URL", defaultAreaURL),
		JMAForecastURL: sharedcfg.EnvOrDefault("JMA_FORECAST_URL", defaultForecastURL),
		JMATimeout:     jmaTimeout,
		JMARateLimit:   rateLimit,

		StoreEnabled: storeEnabled,
		StorePath:    sharedcfg.EnvOrDefault("STORE_PATH", "weather_app.db"),

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "jma-forecast-refreshed"),

		PrefetchAreas:    parseList(os.Getenv("PREFETCH_AREAS")),
		PrefetchSchedule: sharedcfg.EnvOrDefault("PREFETCH_SCHEDULE", "@every 1h"),
	}

	if !strings.Contains(cfg.JMAForecastURL, AreaCodePlaceholder) {
		return nil, errors.New("JMA_FORECAST_URL must contain " + AreaCodePlaceholder)
	}
	if cfg.StoreEnabled && cfg.StorePath == "" {
		return nil, errors.New("STORE_PATH is required when STORE_ENABLED is true")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
	}
	if len(cfg.PrefetchAreas) > 0 && !cfg.StoreEnabled {
		return nil, errors.New("PREFETCH_AREAS requires STORE_ENABLED")
	}

	return cfg, nil
}

// ForecastURL returns the forecast endpoint for an area code.
func (c *Config) ForecastURL(areaCode string) string {
	return strings.ReplaceAll(c.JMAForecastURL, AreaCodePlaceholder, areaCode)
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return b, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
