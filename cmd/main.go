package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"restaurant-ordering/internal/adapter/web"
	"restaurant-ordering/internal/config"
	"restaurant-ordering/internal/database"
	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/messaging"
	"restaurant-ordering/internal/server"
	"restaurant-ordering/internal/services/notification"
	"restaurant-ordering/internal/store"
	"restaurant-ordering/internal/store/memory"
	"restaurant-ordering/internal/store/postgres"
	"restaurant-ordering/internal/telemetry"
	"restaurant-ordering/migrations"
)

func main() {
	// Parse command line flags
	var (
		mode       = flag.String("mode", "", "Service mode (order-service, notification-subscriber, migrate)")
		port       = flag.Int("port", 0, "HTTP port (overrides config)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		prefetch   = flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	)
	flag.Parse()

	// Validate required mode flag
	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.NewWithWriter(*mode, os.Stdout, logger.ParseLevel(cfg.Logging.Level))
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":           *mode,
		"port":           cfg.Server.Port,
		"storage_driver": cfg.Storage.Driver,
		"rabbitmq":       cfg.RabbitMQ.Enabled,
	})

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "order-service":
		err = runOrderService(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	case "migrate":
		err = runMigrations(ctx, cfg, log)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runOrderService serves the menu, order and payment API
func runOrderService(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, server.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("telemetry_shutdown_failed", "Failed to flush traces", requestID, err, nil)
		}
	}()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	health := map[string]web.Pinger{}
	var publisher messaging.StatusPublisher = messaging.Discard{}

	if cfg.RabbitMQ.Enabled {
		conn, err := messaging.New(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()

		log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)
		publisher = messaging.NewPublisher(conn, log)
		health["rabbitmq"] = conn
	} else {
		log.Warn("rabbitmq_disabled", "RabbitMQ is disabled, status updates will not be published", requestID, nil)
	}

	router := server.NewRouter(cfg.Server, st, publisher, log, health)
	return server.Run(ctx, cfg.Server, router, log)
}

// openStore connects the configured backend. PostgreSQL is migrated on startup.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Store, error) {
	requestID := logger.GenerateRequestID()

	if cfg.Storage.Driver == config.DriverMemory {
		log.Info("store_ready", "Using in-memory store", requestID, nil)
		return memory.New(), nil
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return postgres.New(db), nil
}

// runNotificationSubscriber prints every status update until interrupted
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	hostname, _ := os.Hostname()
	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber-"+hostname, prefetch)

	return notification.NewSubscriber(consumer, log, os.Stdout).Start(ctx)
}

// runMigrations applies the embedded schema and exits
func runMigrations(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("migrations_applied", "Database schema is up to date", logger.GenerateRequestID(), nil)
	return nil
}
