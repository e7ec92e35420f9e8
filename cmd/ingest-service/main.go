package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cuongbtq/jobfeed-etl/internal/adzuna"
	"github.com/cuongbtq/jobfeed-etl/internal/config"
	"github.com/cuongbtq/jobfeed-etl/internal/ingest"
	"github.com/cuongbtq/jobfeed-etl/internal/ingest/domain"
	ingeststorage "github.com/cuongbtq/jobfeed-etl/internal/ingest/storage"
	"github.com/cuongbtq/jobfeed-etl/internal/scheduler"
	"github.com/cuongbtq/jobfeed-etl/shared/logger"
	"github.com/cuongbtq/jobfeed-etl/shared/postgresql"
	"github.com/cuongbtq/jobfeed-etl/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("INGEST_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/ingest-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	daemon := flag.Bool("daemon", false, "Run on the configured schedule instead of once")
	maxRetries := flag.Int("max-retries", -1, "Retries per query term after the first attempt (overrides config when >= 0)")
	retryDelay := flag.Duration("retry-delay", -1, "Delay between retry attempts (overrides config when >= 0)")
	batchSize := flag.Int("batch-size", -1, "Requested batch size per fetch (overrides config when > 0)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flag overrides, applied before validation
	if *maxRetries >= 0 {
		cfg.Ingest.MaxRetries = *maxRetries
	}
	if *retryDelay >= 0 {
		cfg.Ingest.RetryDelay = *retryDelay
	}
	if *batchSize > 0 {
		cfg.Ingest.BatchSize = *batchSize
	}

	if err := cfg.ValidateIngestConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting ingest service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.Bool("daemon", *daemon),
	)

	// Initialize PostgreSQL client
	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("Database connection established")

	// Initialize RabbitMQ client when run events are enabled
	var rabbitClient *rabbitmq.Client
	var publisher ingest.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err = initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		publisher = rabbitClient

		appLogger.Info("RabbitMQ connection established")
	} else {
		appLogger.Info("RabbitMQ disabled, run events will not be published")
	}

	cleanup := func() {
		if rabbitClient != nil {
			rabbitClient.Close()
		}
		if dbClient != nil {
			dbClient.Close()
		}
	}
	defer cleanup()

	// Assemble the pipeline
	fetcher := adzuna.NewClient(&adzuna.Config{
		BaseURL:        cfg.Adzuna.BaseURL,
		AppID:          cfg.Adzuna.AppID,
		AppKey:         cfg.Adzuna.AppKey,
		Country:        cfg.Adzuna.Country,
		MaxDaysOld:     cfg.Ingest.MaxDaysOld,
		ResultsPerPage: cfg.Ingest.ResultsPerPage,
		MaxRetries:     cfg.Ingest.MaxRetries,
		RetryDelay:     cfg.Ingest.RetryDelay,
		Timeout:        cfg.Adzuna.Timeout,
	}, appLogger.Logger)

	transformer := ingest.NewTransformer(domain.SourceAdzuna, nil)
	store := ingeststorage.NewStorage(dbClient.GetDB(), appLogger.Logger)

	pipeline := ingest.NewPipeline(
		&ingest.Config{
			QueryTerms: cfg.Ingest.QueryTerms,
			BatchSize:  cfg.Ingest.BatchSize,
		},
		fetcher,
		transformer,
		store,
		publisher,
		appLogger.Logger,
	)

	if *daemon {
		return runDaemon(cfg, pipeline, appLogger)
	}

	return runOnce(pipeline, appLogger)
}

// runOnce executes a single ingestion cycle and exits. A failed run
// returns the error so the process exits non-zero.
func runOnce(pipeline *ingest.Pipeline, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("ingest run failed: %w", err)
	}

	appLogger.Info("Ingest service finished",
		slog.String("run_id", summary.RunID),
		slog.Int("listings_fetched", summary.ListingsFetched),
		slog.Int("records_created", summary.RecordsCreated),
		slog.Int("records_updated", summary.RecordsUpdated),
	)

	return nil
}

// runDaemon keeps the process alive and fires cycles on the configured
// cron schedule until a shutdown signal arrives.
func runDaemon(cfg *config.Config, pipeline *ingest.Pipeline, appLogger *logger.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(pipeline, cfg.Ingest.Schedule, appLogger.Logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	appLogger.Info("Ingest service running in daemon mode",
		slog.String("schedule", cfg.Ingest.Schedule),
	)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	appLogger.Info("Received signal, shutting down gracefully",
		slog.String("signal", sig.String()),
	)

	// Cancel the run context, then give the in-flight cycle time to wind
	// down before forcing exit
	cancel()

	done := make(chan struct{})
	go func() {
		sched.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		appLogger.Warn("Scheduler shutdown timeout exceeded, forcing exit")
	}

	appLogger.Info("Ingest service shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	rabbitConfig := &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}

	return rabbitmq.NewClient(rabbitConfig, logger)
}
