package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string      `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaSourceTopic string        `envconfig:"KAFKA_SOURCE_TOPIC" default:"country-risk-results"`
	KafkaSinkTopic   string        `envconfig:"KAFKA_SINK_TOPIC" default:"adjusted-economic-losses"`
	KafkaGroupID     string        `envconfig:"KAFKA_GROUP_ID" default:"country-risk-etl"`
	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout  time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	BatchSize int `envconfig:"BATCH_SIZE" default:"50"`

	// Indicator table location: an explicit path wins over the data
	// directory convention.
	IndicatorTablePath string `envconfig:"INDICATOR_TABLE" default:""`
	DataDir            string `envconfig:"DATA_DIR" default:"data"`

	// GrowthRate is the default annual exposure growth used by calibration.
	GrowthRate float64 `envconfig:"GROWTH_RATE" default:"0.02"`

	// World Bank GDP fallback configuration.
	WorldBankEnabled bool          `envconfig:"WORLDBANK_ENABLED" default:"false"`
	WorldBankTimeout time.Duration `envconfig:"WORLDBANK_TIMEOUT" default:"5s"`
	GDPCacheSize     int           `envconfig:"GDP_CACHE_SIZE" default:"1000"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("BATCH_SIZE must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.GrowthRate <= -1 {
		return nil, errors.New("GROWTH_RATE must be greater than -1")
	}
	if cfg.WorldBankEnabled && cfg.WorldBankTimeout <= 0 {
		return nil, errors.New("WORLDBANK_TIMEOUT must be positive")
	}
	if cfg.GDPCacheSize <= 0 {
		return nil, errors.New("GDP_CACHE_SIZE must be positive")
	}

	return &cfg, nil
}
