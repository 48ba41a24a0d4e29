// Package config resolves the runtime configuration shared by the server, the lambdas and the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config is the resolved configuration. Values come from defaults, then the
// YAML file, then the environment.
type Config struct {
	HTTPPort string
	LogLevel slog.Level

	StorageBackend string
	EscrowsTable   string
	OrdersTable    string
	AccountsTable  string
	LedgerTable    string
	DatabaseURL    string
	MaxDBConns     int

	SQSQueueURL string
	RedisURL    string

	KafkaBrokers    []string
	KafkaAuditTopic string

	GatewayBaseURL  string
	GatewayAPIKey   string
	GatewayTimeout  time.Duration
	GatewayAttempts int

	JWTSecret string

	PlatformFeeRate string
	CodChargeRate   string
	CodChargeMin    int64

	DueBatchSize int32
}

type configFile struct {
	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Storage struct {
		Backend  string `yaml:"backend"`
		DynamoDB struct {
			EscrowsTable  string `yaml:"escrows_table"`
			OrdersTable   string `yaml:"orders_table"`
			AccountsTable string `yaml:"accounts_table"`
			LedgerTable   string `yaml:"ledger_table"`
		} `yaml:"dynamodb"`
		Postgres struct {
			URL      string `yaml:"url"`
			MaxConns int    `yaml:"max_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`
	Scheduler struct {
		QueueURL     string `yaml:"queue_url"`
		DueBatchSize int32  `yaml:"due_batch_size"`
	} `yaml:"scheduler"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Kafka struct {
		Brokers    []string `yaml:"brokers"`
		AuditTopic string   `yaml:"audit_topic"`
	} `yaml:"kafka"`
	Gateway struct {
		BaseURL     string        `yaml:"base_url"`
		Timeout     time.Duration `yaml:"timeout"`
		MaxAttempts int           `yaml:"max_attempts"`
	} `yaml:"gateway"`
	Fees struct {
		PlatformRate string `yaml:"platform_rate"`
		CodRate      string `yaml:"cod_rate"`
		CodMinimum   int64  `yaml:"cod_minimum"`
	} `yaml:"fees"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		HTTPPort:        "8080",
		LogLevel:        slog.LevelInfo,
		StorageBackend:  BackendDynamoDB,
		MaxDBConns:      10,
		KafkaAuditTopic: "escrow.audit",
		GatewayTimeout:  10 * time.Second,
		GatewayAttempts: 4,
		PlatformFeeRate: "0.05",
		CodChargeRate:   "0.02",
		CodChargeMin:    30,
		DueBatchSize:    100,
	}
}

// Load reads .env (if present), the YAML file at path (if non-empty and present)
// and then the environment.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.applyFile(raw); err != nil {
				return Config{}, err
			}
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("config file not found, using defaults", "path", path)
		default:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&c.HTTPPort, f.HTTP.Port)
	if f.Log.Level != "" {
		if err := c.LogLevel.UnmarshalText([]byte(f.Log.Level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", f.Log.Level, err)
		}
	}
	setString(&c.StorageBackend, f.Storage.Backend)
	setString(&c.EscrowsTable, f.Storage.DynamoDB.EscrowsTable)
	setString(&c.OrdersTable, f.Storage.DynamoDB.OrdersTable)
	setString(&c.AccountsTable, f.Storage.DynamoDB.AccountsTable)
	setString(&c.LedgerTable, f.Storage.DynamoDB.LedgerTable)
	setString(&c.DatabaseURL, f.Storage.Postgres.URL)
	if f.Storage.Postgres.MaxConns > 0 {
		c.MaxDBConns = f.Storage.Postgres.MaxConns
	}
	setString(&c.SQSQueueURL, f.Scheduler.QueueURL)
	if f.Scheduler.DueBatchSize > 0 {
		c.DueBatchSize = f.Scheduler.DueBatchSize
	}
	setString(&c.RedisURL, f.Redis.URL)
	if len(f.Kafka.Brokers) > 0 {
		c.KafkaBrokers = f.Kafka.Brokers
	}
	setString(&c.KafkaAuditTopic, f.Kafka.AuditTopic)
	setString(&c.GatewayBaseURL, f.Gateway.BaseURL)
	if f.Gateway.Timeout > 0 {
		c.GatewayTimeout = f.Gateway.Timeout
	}
	if f.Gateway.MaxAttempts > 0 {
		c.GatewayAttempts = f.Gateway.MaxAttempts
	}
	setString(&c.PlatformFeeRate, f.Fees.PlatformRate)
	setString(&c.CodChargeRate, f.Fees.CodRate)
	if f.Fees.CodMinimum > 0 {
		c.CodChargeMin = f.Fees.CodMinimum
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.HTTPPort, os.Getenv("HTTP_PORT"))
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := c.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
	}
	setString(&c.StorageBackend, strings.ToLower(os.Getenv("STORAGE_BACKEND")))
	setString(&c.EscrowsTable, os.Getenv("DYNAMODB_ESCROWS_TABLE_NAME"))
	setString(&c.OrdersTable, os.Getenv("DYNAMODB_ORDERS_TABLE_NAME"))
	setString(&c.AccountsTable, os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME"))
	setString(&c.LedgerTable, os.Getenv("DYNAMODB_LEDGER_TABLE_NAME"))
	setString(&c.DatabaseURL, os.Getenv("DATABASE_URL"))
	setString(&c.SQSQueueURL, os.Getenv("SQS_QUEUE_URL"))
	setString(&c.RedisURL, os.Getenv("REDIS_URL"))
	if brokers := splitCSV(os.Getenv("KAFKA_BROKERS")); len(brokers) > 0 {
		c.KafkaBrokers = brokers
	}
	setString(&c.KafkaAuditTopic, os.Getenv("KAFKA_AUDIT_TOPIC"))
	setString(&c.GatewayBaseURL, os.Getenv("GATEWAY_BASE_URL"))
	setString(&c.GatewayAPIKey, os.Getenv("GATEWAY_API_KEY"))
	setString(&c.JWTSecret, os.Getenv("JWT_SECRET"))
	setString(&c.PlatformFeeRate, os.Getenv("PLATFORM_FEE_RATE"))
	setString(&c.CodChargeRate, os.Getenv("COD_CHARGE_RATE"))
	if raw := os.Getenv("COD_CHARGE_MIN"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid COD_CHARGE_MIN %q: %w", raw, err)
		}
		c.CodChargeMin = v
	}
	return nil
}

// Validate checks that the chosen backends have what they need.
func (c Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case BackendDynamoDB:
		if c.EscrowsTable == "" || c.OrdersTable == "" || c.AccountsTable == "" || c.LedgerTable == "" {
			errs = append(errs, errors.New("one or more DynamoDB table names are not set"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.StorageBackend))
	}

	for name, rate := range map[string]string{"PLATFORM_FEE_RATE": c.PlatformFeeRate, "COD_CHARGE_RATE": c.CodChargeRate} {
		d, err := decimal.NewFromString(rate)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %q is not a decimal: %w", name, rate, err))
			continue
		}
		if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
			errs = append(errs, fmt.Errorf("%s %q must be between 0 and 1", name, rate))
		}
	}
	if c.CodChargeMin < 0 {
		errs = append(errs, errors.New("COD_CHARGE_MIN must not be negative"))
	}

	return errors.Join(errs...)
}

// RequireServer checks the settings only the HTTP server needs.
func (c Config) RequireServer() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.SQSQueueURL == "" {
		errs = append(errs, errors.New("SQS_QUEUE_URL is required"))
	}
	if c.GatewayBaseURL == "" {
		errs = append(errs, errors.New("GATEWAY_BASE_URL is required"))
	}
	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
