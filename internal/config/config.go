// Package config centralises configuration parsing for the activities service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures runtime configuration values for the activities service.
type Config struct {
	HTTPAddress        string        `mapstructure:"http_address"`
	MetricsAddress     string        `mapstructure:"metrics_address"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CORSAllowedOrigin  string        `mapstructure:"cors_allowed_origin"`
	LogLevel           string        `mapstructure:"log_level"`
	LogFormat          string        `mapstructure:"log_format"`
	TracingEnabled     bool          `mapstructure:"tracing_enabled"`
	CatalogPath        string        `mapstructure:"catalog_path"`
	CatalogPostgresURL string        `mapstructure:"catalog_postgres_url"`
	KafkaBrokers       []string      `mapstructure:"-"`
	KafkaTopic         string        `mapstructure:"kafka_topic"`
	KafkaGroupID       string        `mapstructure:"kafka_group_id"`
}

var defaults = map[string]any{
	"http_address":         ":8000",
	"metrics_address":      ":9195",
	"read_timeout":         5 * time.Second,
	"write_timeout":        10 * time.Second,
	"idle_timeout":         60 * time.Second,
	"shutdown_timeout":     15 * time.Second,
	"cors_allowed_origin":  "*",
	"log_level":            "info",
	"log_format":           "console",
	"tracing_enabled":      false,
	"catalog_path":         "",
	"catalog_postgres_url": "",
	"kafka_brokers":        "",
	"kafka_topic":          "registration_events",
	"kafka_group_id":       "roster-consumer",
}

// Load reads an optional .env file, an optional config.yaml (./configs or .)
// and environment variables, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return load(v)
}

func load(v *viper.Viper) (Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.KafkaBrokers = splitAndTrim(v.GetString("kafka_brokers"))

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return errors.New("http_address is required")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be > 0")
	}
	if len(c.KafkaBrokers) > 0 && strings.TrimSpace(c.KafkaTopic) == "" {
		return errors.New("kafka_topic is required when kafka_brokers is set")
	}
	return nil
}

// EventsEnabled reports whether registration events should go to Kafka.
func (c Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
