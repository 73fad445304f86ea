package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leicca/internal/platform/config"
	dErrors "leicca/pkg/domain-errors"
)

func setRequired(t *testing.T) {
	t.Setenv("LEICCA_WALLET_KEY", "test-wallet-key")
	t.Setenv("LEICCA_JWT_SIGNING_KEY", "test-signing-key")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, float64(3), cfg.Chain.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Chain.Burst)
	assert.Zero(t, cfg.Chain.ConfirmationThreshold, "zero selects the default finality policy")
	assert.Equal(t, 10*time.Second, cfg.Chain.RequestTimeout)
	assert.Equal(t, "panels", cfg.PanelsDir)
	assert.Equal(t, "classification", cfg.Anchoring.Basket)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LEICCA_ADDR", ":9090")
	t.Setenv("LEICCA_CHAIN_RPS", "0.5")
	t.Setenv("LEICCA_CONFIRMATION_THRESHOLD", "12")
	t.Setenv("LEICCA_KAFKA_BROKERS", "broker1:9092,broker2:9092")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 0.5, cfg.Chain.RequestsPerSecond)
	assert.Equal(t, 12, cfg.Chain.ConfirmationThreshold)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnvMissingWalletKey(t *testing.T) {
	t.Setenv("LEICCA_WALLET_KEY", "")
	t.Setenv("LEICCA_JWT_SIGNING_KEY", "test-signing-key")

	_, err := config.FromEnv()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration),
		"a missing anchoring key must fail at startup, not on first use")
}

func TestFromEnvMissingSigningKey(t *testing.T) {
	t.Setenv("LEICCA_WALLET_KEY", "test-wallet-key")
	t.Setenv("LEICCA_JWT_SIGNING_KEY", "")

	_, err := config.FromEnv()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfiguration))
}

func TestStringRedactsSecrets(t *testing.T) {
	setRequired(t)

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	summary := cfg.String()
	assert.NotContains(t, summary, "test-wallet-key")
	assert.NotContains(t, summary, "test-signing-key")
}
