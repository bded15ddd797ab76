package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"remila_sections/internal/admin"
	"remila_sections/internal/changefeed"
	"remila_sections/internal/config"
	"remila_sections/internal/content"
	"remila_sections/internal/embed"
	"remila_sections/internal/objectstore"
	"remila_sections/internal/server"
	"remila_sections/internal/source/rest"
	"remila_sections/internal/storage/postgres"
	"remila_sections/internal/widget"
)

type feed interface {
	changefeed.Publisher
	changefeed.Subscriber
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Content backend
	var (
		store     content.Store
		orders    admin.OrderStore
		txManager admin.TransactionManager
	)
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := sqlx.Connect("postgres", cfg.Database.DSN())
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("connected to database")

		if err := postgres.Migrate(db); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		store = postgres.NewContentStore(db)
		orders = postgres.NewOrderStore(db)
		txManager = postgres.NewTransactionManager(db)
	case config.BackendREST:
		store = rest.New(rest.Config{
			BaseURL:        cfg.REST.BaseURL,
			APIKey:         cfg.REST.APIKey,
			Timeout:        cfg.REST.Timeout,
			MaxAttempts:    cfg.REST.Retry.MaxAttempts,
			InitialBackoff: cfg.REST.Retry.InitialBackoff,
			MaxBackoff:     cfg.REST.Retry.MaxBackoff,
		}, logger)
		logger.Info("using rest content backend", "base_url", cfg.REST.BaseURL)
	}

	// Change feed
	var changes feed = changefeed.NewMemory()
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := changefeed.NewRabbitMQ(changefeed.Config{
			URL:      cfg.RabbitMQ.URL,
			Exchange: cfg.RabbitMQ.Exchange,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		changes = rabbitMQ
	}

	// Object storage
	var objects admin.ObjectStore
	if cfg.Storage.Enabled {
		s3Store, err := objectstore.New(ctx, objectstore.Config{
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			logger.Error("failed to configure object storage", "error", err)
			os.Exit(1)
		}
		objects = s3Store
	}

	client := content.NewClient(store, cfg.Server.FetchTimeout, logger)
	srv := server.New(server.Options{
		Content:   client,
		Widgets:   widget.NewFactory(client, changes, logger),
		Generator: embed.NewGenerator(cfg.Embed.PackageName, cfg.Embed.CDNURL, cfg.Server.PublicURL),
		Admin:     admin.NewService(orders, txManager, changes, objects, logger),
		AdminKey:  cfg.Server.AdminKey,
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("starting widget server",
		"addr", cfg.Server.Addr,
		"backend", cfg.Backend,
		"rabbitmq", cfg.RabbitMQ.Enabled,
		"storage", cfg.Storage.Enabled,
	)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	<-ctx.Done()
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
