package config

import (
	"fmt"

	pkgconfig "github.com/protyayrd/tweestbd-sub001/pkg/config"
)

// CatalogModeLocal serves offers from the service's own Postgres tables;
// CatalogModeRemote fetches them from a remote catalog service over HTTP.
const (
	CatalogModeLocal  = "local"
	CatalogModeRemote = "remote"
)

// Config holds all configuration for the pricing service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"PRICING_HTTP_PORT" envDefault:"8007"`

	// Postgres (offer store)
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"pricing"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"pricing"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"pricing"`
	PostgresSSL  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Redis (guest cart store)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Guest cart TTL in hours (default: 7 days)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Offer catalog source. "local" reads the service's own offer tables;
	// "remote" calls the catalog service at CatalogURL.
	CatalogMode string `env:"CATALOG_MODE" envDefault:"local"`
	CatalogURL  string `env:"CATALOG_URL" envDefault:"http://localhost:8001"`

	// Admin auth shared secret for development. Production deployments
	// validate tokens at the gateway.
	AdminToken string `env:"ADMIN_TOKEN" envDefault:""`

	// CORS
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load pricing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CatalogMode != CatalogModeLocal && c.CatalogMode != CatalogModeRemote {
		return fmt.Errorf("CATALOG_MODE must be %q or %q, got %q", CatalogModeLocal, CatalogModeRemote, c.CatalogMode)
	}
	if c.CatalogMode == CatalogModeRemote && c.CatalogURL == "" {
		return fmt.Errorf("CATALOG_URL is required when CATALOG_MODE is remote")
	}
	if c.OTELSampleRate < 0.0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be at least 1, got %d", c.CartTTL)
	}
	return nil
}
