package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataPath        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// View parameters.
	Threshold          float64
	RecentWindowMonths int
	TopN               int
	PoorQualityTopN    int
	HistogramBins      int

	// Optional Kafka view publisher.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaViewsTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	threshold, err := parsePositiveFloat("PM25_THRESHOLD", 150)
	if err != nil {
		return nil, err
	}
	window, err := parsePositiveInt("RECENT_WINDOW_MONTHS", 6)
	if err != nil {
		return nil, err
	}
	topN, err := parsePositiveInt("TOP_N", 5)
	if err != nil {
		return nil, err
	}
	poorQualityTopN, err := parseNonNegativeInt("POOR_QUALITY_TOP_N", 0)
	if err != nil {
		return nil, err
	}
	bins, err := parsePositiveInt("HISTOGRAM_BINS", 30)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DataPath:           sharedcfg.EnvOrDefault("DATA_PATH", "data/main_data.csv"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		Threshold:          threshold,
		RecentWindowMonths: window,
		TopN:               topN,
		PoorQualityTopN:    poorQualityTopN,
		HistogramBins:      bins,
		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       brokers,
		KafkaViewsTopic:    sharedcfg.EnvOrDefault("KAFKA_VIEWS_TOPIC", "air-quality-views"),
	}

	if cfg.DataPath == "" {
		return nil, errors.New("DATA_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaViewsTopic == "" {
		return nil, errors.New("KAFKA_VIEWS_TOPIC is required")
	}

	return cfg, nil
}

// Options returns the view parameters of a run.
func (c *Config) Options() domain.Options {
	return domain.Options{
		Threshold:       c.Threshold,
		WindowMonths:    c.RecentWindowMonths,
		TopN:            c.TopN,
		PoorQualityTopN: c.PoorQualityTopN,
		HistogramBins:   c.HistogramBins,
	}
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer, got %q", key, s)
	}
	return n, nil
}

// parseNonNegativeInt reads a limit where 0 means unlimited.
func parseNonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: must be a non-negative integer, got %q", key, s)
	}
	return n, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("invalid %s: must be a positive number, got %q", key, s)
	}
	return v, nil
}
