package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"HTTP_PORT", "LOG_LEVEL", "STORAGE_BACKEND",
	"DYNAMODB_ESCROWS_TABLE_NAME", "DYNAMODB_ORDERS_TABLE_NAME", "DYNAMODB_ACCOUNTS_TABLE_NAME", "DYNAMODB_LEDGER_TABLE_NAME",
	"DATABASE_URL", "SQS_QUEUE_URL", "REDIS_URL", "KAFKA_BROKERS", "KAFKA_AUDIT_TOPIC",
	"GATEWAY_BASE_URL", "GATEWAY_API_KEY", "JWT_SECRET",
	"PLATFORM_FEE_RATE", "COD_CHARGE_RATE", "COD_CHARGE_MIN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("Missing File Is Ignored", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.HTTPPort)
	})

	t.Run("File Then Environment", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, `
http:
  port: "9000"
log:
  level: debug
storage:
  backend: postgres
  postgres:
    url: postgres://escrow@db/escrow
    max_conns: 25
kafka:
  brokers: [kafka-1:9092]
gateway:
  base_url: https://pay.internal
  timeout: 3s
fees:
  platform_rate: "0.04"
`)
		t.Setenv("HTTP_PORT", "9100")
		t.Setenv("KAFKA_BROKERS", "kafka-2:9092, kafka-3:9092")
		t.Setenv("COD_CHARGE_MIN", "45")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "9100", cfg.HTTPPort)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
		assert.Equal(t, BackendPostgres, cfg.StorageBackend)
		assert.Equal(t, "postgres://escrow@db/escrow", cfg.DatabaseURL)
		assert.Equal(t, 25, cfg.MaxDBConns)
		assert.Equal(t, []string{"kafka-2:9092", "kafka-3:9092"}, cfg.KafkaBrokers)
		assert.Equal(t, "https://pay.internal", cfg.GatewayBaseURL)
		assert.Equal(t, 3*time.Second, cfg.GatewayTimeout)
		assert.Equal(t, "0.04", cfg.PlatformFeeRate)
		assert.Equal(t, int64(45), cfg.CodChargeMin)
	})

	t.Run("Malformed File", func(t *testing.T) {
		clearEnv(t)
		path := writeFile(t, "http: [")

		_, err := Load(path)
		assert.ErrorContains(t, err, "failed to parse config file")
	})

	t.Run("Bad Environment Value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("COD_CHARGE_MIN", "thirty")

		_, err := Load("")
		assert.ErrorContains(t, err, "COD_CHARGE_MIN")
	})
}

func TestValidate(t *testing.T) {
	dynamo := Default()
	dynamo.EscrowsTable = "escrows"
	dynamo.OrdersTable = "orders"
	dynamo.AccountsTable = "accounts"
	dynamo.LedgerTable = "ledger"

	t.Run("Success", func(t *testing.T) {
		assert.NoError(t, dynamo.Validate())
	})

	t.Run("Missing Tables", func(t *testing.T) {
		cfg := dynamo
		cfg.LedgerTable = ""
		assert.ErrorContains(t, cfg.Validate(), "DynamoDB table names")
	})

	t.Run("Postgres Without URL", func(t *testing.T) {
		cfg := Default()
		cfg.StorageBackend = BackendPostgres
		assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")
	})

	t.Run("Unknown Backend", func(t *testing.T) {
		cfg := Default()
		cfg.StorageBackend = "sqlite"
		assert.ErrorContains(t, cfg.Validate(), "unknown storage backend")
	})

	t.Run("Bad Rates", func(t *testing.T) {
		cfg := dynamo
		cfg.PlatformFeeRate = "five percent"
		cfg.CodChargeRate = "1.5"
		err := cfg.Validate()
		assert.ErrorContains(t, err, "PLATFORM_FEE_RATE")
		assert.ErrorContains(t, err, "COD_CHARGE_RATE")
	})

	t.Run("Server Settings", func(t *testing.T) {
		cfg := Default()
		err := cfg.RequireServer()
		assert.ErrorContains(t, err, "JWT_SECRET")
		assert.ErrorContains(t, err, "SQS_QUEUE_URL")

		cfg.JWTSecret = "s"
		cfg.SQSQueueURL = "https://sqs/queue"
		cfg.GatewayBaseURL = "https://pay"
		assert.NoError(t, cfg.RequireServer())
	})
}
