package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hospitality-ops/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 12*time.Second, cfg.Engine.TxTimeout)
	assert.Equal(t, 3, cfg.Engine.TransferMaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.Engine.TransferBackoff)
	assert.Equal(t, 10*time.Second, cfg.Engine.StatsLockTTL)
	assert.Equal(t, 5*time.Minute, cfg.Engine.TransferResumeAfter)
	assert.Equal(t, 20, cfg.Redis.LockRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.Redis.LockRetryBackoff)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoad_VariablesDeEntornoTienenPrioridad(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TX_TIMEOUT", "3s")
	t.Setenv("TRANSFER_MAX_ATTEMPTS", "5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TAX_RATE_BP", "1900")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Engine.TxTimeout)
	assert.Equal(t, 5, cfg.Engine.TransferMaxAttempts)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, int64(1900), cfg.Engine.TaxRateBasisPoints)
}

func TestLoad_IntentosInvalidos(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRANSFER_MAX_ATTEMPTS", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDSN_EscapaCaracteresEspeciales(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "ops", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/ops?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
