// Package app builds the escrow service and its collaborators from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/order-escrow/pkg/audit"
	"github.com/chris/order-escrow/pkg/config"
	"github.com/chris/order-escrow/pkg/escrow"
	"github.com/chris/order-escrow/pkg/fees"
	"github.com/chris/order-escrow/pkg/gateway"
	"github.com/chris/order-escrow/pkg/lock"
	"github.com/chris/order-escrow/pkg/scheduler"
	"github.com/chris/order-escrow/pkg/storage"
	dydbstore "github.com/chris/order-escrow/pkg/storage/dynamodb"
	"github.com/chris/order-escrow/pkg/storage/memory"
	pgstore "github.com/chris/order-escrow/pkg/storage/postgres"
	goredislib "github.com/redis/go-redis/v9"
)

// Runtime holds the wired service and everything that must be closed on shutdown.
type Runtime struct {
	Config    config.Config
	Logger    *slog.Logger
	Store     storage.Storage
	Locker    lock.Locker
	Scheduler scheduler.Scheduler
	Audit     audit.Sink
	Service   *escrow.Service

	closers []func() error
}

// NewLogger returns the JSON logger every binary writes to stdout.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// Build validates cfg and wires the escrow service. On error everything opened so far is closed.
func Build(ctx context.Context, cfg config.Config) (rt *Runtime, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	rt = &Runtime{Config: cfg, Logger: NewLogger(cfg.LogLevel)}
	defer func() {
		if err != nil {
			_ = rt.Close()
			rt = nil
		}
	}()

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg == nil {
			c, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return aws.Config{}, fmt.Errorf("unable to load SDK config: %w", err)
			}
			awsCfg = &c
		}
		return *awsCfg, nil
	}

	if rt.Store, err = rt.buildStore(ctx, loadAWS); err != nil {
		return nil, err
	}
	if rt.Locker, err = rt.buildLocker(ctx); err != nil {
		return nil, err
	}
	if rt.Scheduler, err = rt.buildScheduler(loadAWS); err != nil {
		return nil, err
	}
	if rt.Audit, err = rt.buildAudit(); err != nil {
		return nil, err
	}

	calc, err := fees.NewCalculator(cfg.PlatformFeeRate, cfg.CodChargeRate, cfg.CodChargeMin)
	if err != nil {
		return nil, err
	}

	refunder := gateway.NewClient(gatewayConfig(cfg), nil, rt.Logger)

	rt.Service, err = escrow.New(escrow.Deps{
		Store:        rt.Store,
		Locker:       rt.Locker,
		Scheduler:    rt.Scheduler,
		Gateway:      refunder,
		Audit:        rt.Audit,
		Fees:         calc,
		Logger:       rt.Logger,
		DueBatchSize: cfg.DueBatchSize,
	})
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) buildStore(ctx context.Context, loadAWS func() (aws.Config, error)) (storage.Storage, error) {
	cfg := rt.Config
	switch cfg.StorageBackend {
	case config.BackendDynamoDB:
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, err
		}
		return dydbstore.New(dynamodb.NewFromConfig(awsCfg), cfg.EscrowsTable, cfg.OrdersTable, cfg.AccountsTable, cfg.LedgerTable), nil
	case config.BackendPostgres:
		db, err := pgstore.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get postgres pool: %w", err)
		}
		rt.closers = append(rt.closers, sqlDB.Close)
		if err := pgstore.RunMigrations(ctx, db); err != nil {
			return nil, err
		}
		return pgstore.New(db), nil
	default:
		rt.Logger.Warn("using in-memory storage, data is lost on exit")
		return memory.New(), nil
	}
}

func gatewayConfig(cfg config.Config) gateway.Config {
	retry := gateway.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.GatewayAttempts
	return gateway.Config{
		BaseURL: cfg.GatewayBaseURL,
		APIKey:  cfg.GatewayAPIKey,
		Timeout: cfg.GatewayTimeout,
		Retry:   retry,
	}
}

func (rt *Runtime) buildLocker(ctx context.Context) (lock.Locker, error) {
	if rt.Config.RedisURL == "" {
		rt.Logger.Warn("REDIS_URL not set, escrow locks are local to this process")
		return lock.NewLocalLocker(), nil
	}
	opts, err := goredislib.ParseURL(rt.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := goredislib.NewClient(opts)
	rt.closers = append(rt.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	// Refunds call the gateway under the lock, so it must not expire mid-refund.
	return lock.NewRedisLocker(client, lock.OptionsFor(gatewayConfig(rt.Config).Budget()), rt.Logger), nil
}

func (rt *Runtime) buildScheduler(loadAWS func() (aws.Config, error)) (scheduler.Scheduler, error) {
	if rt.Config.SQSQueueURL == "" {
		rt.Logger.Warn("SQS_QUEUE_URL not set, auto-releases run only from the recovery sweep")
		return scheduler.NewLogScheduler(rt.Logger), nil
	}
	awsCfg, err := loadAWS()
	if err != nil {
		return nil, err
	}
	return scheduler.NewSQSScheduler(sqs.NewFromConfig(awsCfg), rt.Config.SQSQueueURL), nil
}

func (rt *Runtime) buildAudit() (audit.Sink, error) {
	if len(rt.Config.KafkaBrokers) == 0 {
		return audit.NewLogSink(rt.Logger), nil
	}
	sink, err := audit.NewKafkaSink(rt.Config.KafkaBrokers, rt.Config.KafkaAuditTopic)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, sink.Close)
	return sink, nil
}

// Consumer returns the handler for scheduled auto-release messages.
func (rt *Runtime) Consumer() *scheduler.Consumer {
	return scheduler.NewConsumer(rt.Service, rt.Scheduler, rt.Logger)
}

// Sweeper returns the recovery sweep over escrows whose auto-release is due.
func (rt *Runtime) Sweeper() *scheduler.Sweeper {
	return scheduler.NewSweeper(rt.Service, rt.Service, rt.Logger)
}

// Close releases connections in reverse order of opening.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
