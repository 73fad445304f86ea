// Package config builds runtime configuration from environment variables so
// main stays lean. Anchoring credentials are validated here: a missing wallet
// key fails at startup rather than on the first anchoring attempt.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	dErrors "leicca/pkg/domain-errors"
)

// Config captures all runtime configuration for the service.
type Config struct {
	Server    Server
	Chain     Chain
	Redis     Redis
	Postgres  Postgres
	Kafka     Kafka
	Evidence  Evidence
	Anchoring Anchoring
	PanelsDir string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// Chain configures access to the external chain-data source.
type Chain struct {
	SourceURL string
	// RequestsPerSecond and Burst bound all outbound chain queries; the
	// budget is shared process-wide through the chainquery singleton.
	RequestsPerSecond float64
	Burst             int
	// ConfirmationThreshold overrides the default finality policy. Zero means
	// use the default of 6.
	ConfirmationThreshold int
	RequestTimeout        time.Duration
}

// Redis configures the optional confirmed-proof cache.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Postgres configures the durable audit-event store. Empty DSN selects the
// in-memory store.
type Postgres struct {
	DSN string
}

// Kafka configures the optional audit-event publisher. Empty brokers disable
// publishing.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Evidence configures evidence-file object storage. Empty endpoint selects
// the in-memory store.
type Evidence struct {
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	Bucket         string
}

// Anchoring configures the external anchoring collaborator.
type Anchoring struct {
	WalletURL   string
	WalletKey   string
	Basket      string
	ExplorerURL string
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:          envOr("LEICCA_ADDR", ":8080"),
			JWTSigningKey: envOr("LEICCA_JWT_SIGNING_KEY", ""),
		},
		Chain: Chain{
			SourceURL:             envOr("LEICCA_CHAIN_SOURCE_URL", "https://api.whatsonchain.com/v1/bsv/main"),
			RequestsPerSecond:     envFloat("LEICCA_CHAIN_RPS", 3),
			Burst:                 envInt("LEICCA_CHAIN_BURST", 3),
			ConfirmationThreshold: envInt("LEICCA_CONFIRMATION_THRESHOLD", 0),
			RequestTimeout:        envDuration("LEICCA_CHAIN_TIMEOUT", 10*time.Second),
		},
		Redis: Redis{
			URL:          os.Getenv("LEICCA_REDIS_URL"),
			PoolSize:     envInt("LEICCA_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("LEICCA_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("LEICCA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("LEICCA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("LEICCA_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: Postgres{
			DSN: os.Getenv("LEICCA_POSTGRES_DSN"),
		},
		Kafka: Kafka{
			Brokers: splitNonEmpty(os.Getenv("LEICCA_KAFKA_BROKERS")),
			Topic:   envOr("LEICCA_KAFKA_AUDIT_TOPIC", "leicca.audit.events"),
		},
		Evidence: Evidence{
			MinioEndpoint:  os.Getenv("LEICCA_MINIO_ENDPOINT"),
			MinioAccessKey: os.Getenv("LEICCA_MINIO_ACCESS_KEY"),
			MinioSecretKey: os.Getenv("LEICCA_MINIO_SECRET_KEY"),
			MinioUseSSL:    os.Getenv("LEICCA_MINIO_USE_SSL") == "true",
			Bucket:         envOr("LEICCA_EVIDENCE_BUCKET", "leicca-evidence"),
		},
		Anchoring: Anchoring{
			WalletURL:   envOr("LEICCA_WALLET_URL", "http://localhost:3321"),
			WalletKey:   os.Getenv("LEICCA_WALLET_KEY"),
			Basket:      envOr("LEICCA_ANCHOR_BASKET", "classification"),
			ExplorerURL: envOr("LEICCA_EXPLORER_URL", "https://whatsonchain.com/tx"),
		},
		PanelsDir: envOr("LEICCA_PANELS_DIR", "panels"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate enforces startup invariants. The anchoring path is unusable
// without a wallet key, so that is surfaced immediately.
func (c Config) validate() error {
	if c.Anchoring.WalletKey == "" {
		return dErrors.New(dErrors.CodeConfiguration, "LEICCA_WALLET_KEY is required for the anchoring path")
	}
	if c.Server.JWTSigningKey == "" {
		return dErrors.New(dErrors.CodeConfiguration, "LEICCA_JWT_SIGNING_KEY is required")
	}
	if c.Chain.RequestsPerSecond <= 0 {
		return dErrors.Newf(dErrors.CodeConfiguration, "invalid chain rate limit %v", c.Chain.RequestsPerSecond)
	}
	if c.Chain.ConfirmationThreshold < 0 {
		return dErrors.Newf(dErrors.CodeConfiguration, "invalid confirmation threshold %d", c.Chain.ConfirmationThreshold)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if part := s[start:i]; part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	return out
}

// String renders a redacted summary for startup logging.
func (c Config) String() string {
	return fmt.Sprintf("addr=%s chain=%s rps=%.1f redis=%t postgres=%t kafka=%t minio=%t",
		c.Server.Addr, c.Chain.SourceURL, c.Chain.RequestsPerSecond,
		c.Redis.URL != "", c.Postgres.DSN != "", len(c.Kafka.Brokers) > 0,
		c.Evidence.MinioEndpoint != "")
}
