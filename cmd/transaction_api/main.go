package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bank-transaction-engine/internal/api_gateway"
	"github.com/bank-transaction-engine/internal/config"
	"github.com/bank-transaction-engine/internal/data/memory"
	"github.com/bank-transaction-engine/internal/data/mongo"
	"github.com/bank-transaction-engine/internal/data/postgres"
	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/logger"
	"github.com/bank-transaction-engine/internal/platform/messaging/consumers"
	"github.com/bank-transaction-engine/internal/platform/messaging/producers"
	"github.com/bank-transaction-engine/internal/platform/persistence"
	"github.com/bank-transaction-engine/internal/transaction_processor/components"
	"github.com/bank-transaction-engine/internal/transaction_processor/consumer"
	"github.com/bank-transaction-engine/internal/transaction_processor/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("transaction_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Transaction API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"seed_source", cfg.Integration.AccountSeedSource,
		"audit_sink", cfg.Integration.AuditSink,
		"event_publisher", cfg.Integration.EventPublisher,
		"intake", cfg.Integration.TransactionIntake,
	)

	// Seed the in-memory ledger
	var accountSource account.Source = memory.NewBuiltinSource()
	var postgresDB *persistence.PostgresDB
	if cfg.Integration.AccountSeedSource == config.SeedSourcePostgres {
		postgresDB, err = persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
		if err != nil {
			log.Error("Failed to initialize PostgreSQL", "error", err)
			os.Exit(1)
		}
		accountSource = postgres.NewAccountRepository(log, postgresDB)
	}

	ledger := memory.NewAccountLedger(log)
	if err := memory.Seed(appCtx, ledger, accountSource, log); err != nil {
		log.Error("Failed to seed account ledger", "error", err)
		os.Exit(1)
	}

	// Audit sink
	var auditSink service.AuditWriter = components.NewLogAuditSink(log)
	var mongoDB *persistence.MongoDB
	if cfg.Integration.AuditSink == config.AuditSinkMongo {
		mongoDB, err = persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
		if err != nil {
			log.Error("Failed to initialize MongoDB", "error", err)
			os.Exit(1)
		}
		auditSink = mongo.NewAuditRepository(log, mongoDB.Database())
	}

	// Risk-check and notification publisher
	var publisher producers.EventPublisher = components.NewLogEventPublisher(log)
	if cfg.Integration.EventPublisher == config.EventPublisherKafka {
		publisher, err = producers.NewEventProducer(log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize Kafka event producer", "error", err)
			os.Exit(1)
		}
	}

	engine, err := components.CreateTransactionEngine(
		ledger,
		memory.NewTransactionStore(cfg.Store.ShardCount),
		memory.NewTimeIndex(),
		auditSink,
		publisher,
		log,
		cfg,
	)
	if err != nil {
		log.Error("Failed to create transaction engine", "error", err)
		os.Exit(1)
	}

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, engine.Accounts, engine.Transactions)
	log.Info("REST server initialized")

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Optional Kafka intake
	var closers []io.Closer
	if cfg.Integration.TransactionIntake == config.TransactionIntakeKafka {
		var dlq producers.DeadLetterPublisher
		dlqProducer, err := producers.NewDLQProducer(log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize DLQ Kafka producer", "error", err)
			os.Exit(1)
		}
		if dlqProducer != nil {
			dlq = dlqProducer
			closers = append(closers, dlqProducer)
		}

		kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)
		closers = append(closers, kafkaConsumer)
		requestHandler := consumer.NewTransactionRequestHandler(log, engine.Transactions, dlq)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := kafkaConsumer.Run(appCtx, requestHandler.HandleMessage); err != nil {
				errChan <- fmt.Errorf("kafka consumer error: %w", err)
			}
		}()
	}

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Stop accepting HTTP requests before draining the pool
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Stop the intake
	cancelAppCtx()
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()
	select {
	case <-wgChan:
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached before the intake stopped")
	}

	// Drain post-processing jobs
	engine.PostProcessing.Shutdown(cfg.Server.ShutdownTimeout)

	for _, c := range closers {
		if err = c.Close(); err != nil {
			log.Error("Error closing Kafka client", "error", err)
		}
	}

	if err = publisher.Close(); err != nil {
		log.Error("Error closing event publisher", "error", err)
	}

	if mongoDB != nil {
		if err = mongoDB.Close(shutdownCtx); err != nil {
			log.Error("Error closing MongoDB connection", "error", err)
		}
	}

	if postgresDB != nil {
		postgresDB.Close()
	}

	// Final status
	if serviceErr != nil {
		log.Error("Transaction API shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Transaction API shutdown completed with errors")
	} else {
		log.Info("Transaction API shutdown completed successfully")
	}
}
