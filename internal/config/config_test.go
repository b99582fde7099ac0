package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "origin-products", cfg.KafkaSourceTopic)
	assert.Equal(t, "strec-results", cfg.KafkaSinkTopic)
	assert.Equal(t, "quake-strec", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, SourceKafka, cfg.SourceMode)

	assert.True(t, cfg.ComCat.Enabled)
	assert.Equal(t, "https://earthquake.usgs.gov/fdsnws/event/1/query", cfg.ComCat.URL)
	assert.Equal(t, 10*time.Second, cfg.ComCat.Timeout)
	assert.Equal(t, 1000, cfg.ComCat.CacheSize)
	assert.Equal(t, time.Hour, cfg.ComCat.CacheTTL)

	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, filepath.Join(home, "strec_output"), cfg.Archive.Dir)

	assert.False(t, cfg.PDL.Enabled)
	assert.True(t, cfg.PDL.Dev)
	assert.Equal(t, filepath.Join(home, "ProductClient"), cfg.PDL.Dir)
	assert.Equal(t, filepath.Join(home, "ProductClient", "dev_config.ini"), cfg.PDL.ConfigFile)
	assert.Equal(t, "java", cfg.PDL.Java)

	assert.Equal(t, Fallback{Strike: 0, Dip: 90, Rake: 0}, cfg.Fallback)

	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
	assert.Equal(t, "quake-strec-etl", cfg.Tracing.ServiceName)
	assert.InDelta(t, 1.0, cfg.Tracing.SampleRatio, 0)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("SOURCE_MODE", "inbox")
	t.Setenv("INBOX_DIR", "/var/spool/strec")
	t.Setenv("COMCAT_ENABLED", "false")
	t.Setenv("ARCHIVE_DIR", "/data/strec")
	t.Setenv("PDL_ENABLED", "true")
	t.Setenv("PDL_DIR", "/opt/pdl")
	t.Setenv("PDL_DEV", "false")
	t.Setenv("PDL_TIMEOUT", "2m")
	t.Setenv("FALLBACK_STRIKE", "45")
	t.Setenv("FALLBACK_DIP", "60")
	t.Setenv("FALLBACK_RAKE", "-90")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("TRACING_EXPORTER", "otlp")
	t.Setenv("OTLP_ENDPOINT", "collector:4318")
	t.Setenv("TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, SourceInbox, cfg.SourceMode)
	assert.Equal(t, "/var/spool/strec", cfg.InboxDir)
	assert.False(t, cfg.ComCat.Enabled)
	assert.Equal(t, "/data/strec", cfg.Archive.Dir)
	assert.True(t, cfg.PDL.Enabled)
	assert.Equal(t, filepath.Join("/opt/pdl", "config.ini"), cfg.PDL.ConfigFile)
	assert.Equal(t, 2*time.Minute, cfg.PDL.Timeout)
	assert.Equal(t, Fallback{Strike: 45, Dip: 60, Rake: -90}, cfg.Fallback)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "otlp", cfg.Tracing.Exporter)
	assert.Equal(t, "collector:4318", cfg.Tracing.OTLPEndpoint)
	assert.InDelta(t, 0.25, cfg.Tracing.SampleRatio, 1e-12)
}

func TestLoad_ExplicitPDLConfigFile(t *testing.T) {
	t.Setenv("PDL_CONFIG_FILE", "/etc/pdl/strec.ini")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/etc/pdl/strec.ini", cfg.PDL.ConfigFile)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown source mode", map[string]string{"SOURCE_MODE": "ftp"}, "SOURCE_MODE"},
		{"non-positive comcat timeout", map[string]string{"COMCAT_TIMEOUT": "0s"}, "COMCAT_TIMEOUT"},
		{"non-positive cache size", map[string]string{"COMCAT_CACHE_SIZE": "0"}, "COMCAT_CACHE_SIZE"},
		{"pdl without archive", map[string]string{"PDL_ENABLED": "true", "ARCHIVE_ENABLED": "false"}, "ARCHIVE_ENABLED"},
		{"sample ratio above one", map[string]string{"TRACING_SAMPLE_RATIO": "1.5"}, "TRACING_SAMPLE_RATIO"},
		{"unparsable duration", map[string]string{"PDL_TIMEOUT": "soon"}, "parse env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
