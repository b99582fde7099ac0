package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Source modes.
const (
	SourceKafka = "kafka"
	SourceInbox = "inbox"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// SourceMode selects where notifications come from: kafka or inbox.
	SourceMode string
	InboxDir   string

	ComCat   ComCat
	Archive  Archive
	PDL      PDL
	Fallback Fallback
	Tracing  Tracing
}

// ComCat configures the remote moment-tensor lookup.
type ComCat struct {
	Enabled   bool          `env:"COMCAT_ENABLED"    envDefault:"true"`
	URL       string        `env:"COMCAT_URL"        envDefault:"https://earthquake.usgs.gov/fdsnws/event/1/query"`
	Timeout   time.Duration `env:"COMCAT_TIMEOUT"    envDefault:"10s"`
	CacheSize int           `env:"COMCAT_CACHE_SIZE" envDefault:"1000"`
	CacheTTL  time.Duration `env:"COMCAT_CACHE_TTL"  envDefault:"1h"`
}

// Archive configures the versioned on-disk result store.
type Archive struct {
	Enabled bool   `env:"ARCHIVE_ENABLED" envDefault:"true"`
	Dir     string `env:"ARCHIVE_DIR"     envDefault:"${HOME}/strec_output" envExpand:"true"`
}

// PDL configures the ProductClient dispatcher that publishes archived results.
type PDL struct {
	Enabled bool   `env:"PDL_ENABLED" envDefault:"false"`
	Dir     string `env:"PDL_DIR"     envDefault:"${HOME}/ProductClient" envExpand:"true"`
	// ConfigFile defaults to dev_config.ini or config.ini inside Dir.
	ConfigFile string        `env:"PDL_CONFIG_FILE" envExpand:"true"`
	Dev        bool          `env:"PDL_DEV"         envDefault:"true"`
	Java       string        `env:"PDL_JAVA"        envDefault:"java"`
	Timeout    time.Duration `env:"PDL_TIMEOUT"     envDefault:"60s"`
}

// Fallback is the focal mechanism used when neither the catalog nor the
// origin document supplies one.
type Fallback struct {
	Strike float64 `env:"FALLBACK_STRIKE" envDefault:"0"`
	Dip    float64 `env:"FALLBACK_DIP"    envDefault:"90"`
	Rake   float64 `env:"FALLBACK_RAKE"   envDefault:"0"`
}

// Tracing configures OpenTelemetry export.
type Tracing struct {
	Enabled      bool    `env:"TRACING_ENABLED"      envDefault:"false"`
	Exporter     string  `env:"TRACING_EXPORTER"     envDefault:"stdout"`
	OTLPEndpoint string  `env:"OTLP_ENDPOINT"`
	ServiceName  string  `env:"TRACING_SERVICE_NAME" envDefault:"quake-strec-etl"`
	SampleRatio  float64 `env:"TRACING_SAMPLE_RATIO" envDefault:"1"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "origin-products"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "strec-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "quake-strec"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
		SourceMode:         sharedcfg.EnvOrDefault("SOURCE_MODE", SourceKafka),
		InboxDir:           sharedcfg.EnvOrDefault("INBOX_DIR", "inbox"),
	}

	for _, target := range []any{&cfg.ComCat, &cfg.Archive, &cfg.PDL, &cfg.Fallback, &cfg.Tracing} {
		if err := env.Parse(target); err != nil {
			return nil, fmt.Errorf("parse env: %w", err)
		}
	}
	if cfg.PDL.ConfigFile == "" {
		name := "config.ini"
		if cfg.PDL.Dev {
			name = "dev_config.ini"
		}
		cfg.PDL.ConfigFile = filepath.Join(cfg.PDL.Dir, name)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.SourceMode {
	case SourceKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return errors.New("KAFKA_SOURCE_TOPIC is required")
		}
	case SourceInbox:
		if cfg.InboxDir == "" {
			return errors.New("INBOX_DIR is required when SOURCE_MODE is inbox")
		}
	default:
		return fmt.Errorf("invalid SOURCE_MODE %q: must be %s or %s", cfg.SourceMode, SourceKafka, SourceInbox)
	}
	if cfg.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}

	if cfg.ComCat.Enabled {
		if cfg.ComCat.URL == "" {
			return errors.New("COMCAT_ENABLED is true but COMCAT_URL is not set")
		}
		if cfg.ComCat.Timeout <= 0 {
			return errors.New("invalid COMCAT_TIMEOUT: must be positive")
		}
		if cfg.ComCat.CacheSize <= 0 {
			return errors.New("invalid COMCAT_CACHE_SIZE: must be positive")
		}
	}
	if cfg.Archive.Enabled && cfg.Archive.Dir == "" {
		return errors.New("ARCHIVE_ENABLED is true but ARCHIVE_DIR is not set")
	}
	if cfg.PDL.Enabled {
		if !cfg.Archive.Enabled {
			return errors.New("PDL_ENABLED requires ARCHIVE_ENABLED")
		}
		if cfg.PDL.Timeout <= 0 {
			return errors.New("invalid PDL_TIMEOUT: must be positive")
		}
	}
	if r := cfg.Tracing.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("invalid TRACING_SAMPLE_RATIO %v: must be within [0,1]", r)
	}
	return nil
}
