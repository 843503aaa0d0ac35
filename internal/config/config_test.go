package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	require.Equal(t, ":8000", cfg.HTTPAddress)
	require.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "console", cfg.LogFormat)
	require.Empty(t, cfg.KafkaBrokers)
	require.False(t, cfg.EventsEnabled())
	require.Equal(t, "registration_events", cfg.KafkaTopic)
	require.False(t, cfg.TracingEnabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9000")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("CATALOG_PATH", "/etc/school/catalog.yaml")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.HTTPAddress)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.EventsEnabled())
	require.Equal(t, "/etc/school/catalog.yaml", cfg.CatalogPath)
	require.True(t, cfg.TracingEnabled)
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")

	_, err := load(viper.New())
	require.Error(t, err)
}

func TestLoadRequiresTopicWhenBrokersSet(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("KAFKA_TOPIC", " ")

	_, err := load(viper.New())
	require.Error(t, err)
}

func TestSplitAndTrim(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitAndTrim(" a ,b,, "))
	require.Empty(t, splitAndTrim(""))
}
