package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all process configuration, loaded from COREGW_* environment
// variables so main stays lean.
type Config struct {
	Addr string `envconfig:"ADDR" default:":8080"`

	// PostgresDSN selects the subscriber store. When empty the process runs
	// on the in-memory store (local development and tests).
	PostgresDSN  string        `envconfig:"POSTGRES_DSN"`
	StoreTimeout time.Duration `envconfig:"STORE_TIMEOUT" default:"5s"`

	// Upstream network functions for the live-state proxy.
	MMEBaseURL      string        `envconfig:"MME_BASE_URL" default:"http://mme:9091"`
	AMFBaseURL      string        `envconfig:"AMF_BASE_URL" default:"http://amf:9091"`
	SMFBaseURL      string        `envconfig:"SMF_BASE_URL" default:"http://smf:9091"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"5s"`

	// Kafka audit trail. Disabled when no brokers are configured; mutations
	// are then audited to the process log instead.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	AuditTopic   string   `envconfig:"AUDIT_TOPIC" default:"coregw.subscriber-audit"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("coregw", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for name, url := range map[string]string{
		"COREGW_MME_BASE_URL": c.MMEBaseURL,
		"COREGW_AMF_BASE_URL": c.AMFBaseURL,
		"COREGW_SMF_BASE_URL": c.SMFBaseURL,
	} {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("%s must start with http:// or https://", name)
		}
	}
	if c.StoreTimeout <= 0 || c.UpstreamTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}
