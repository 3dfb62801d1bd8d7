package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/siddeeqzul/calculatorzakakt/internal"
	"github.com/siddeeqzul/calculatorzakakt/internal/core/events"
	"github.com/siddeeqzul/calculatorzakakt/internal/gateway"
	"github.com/siddeeqzul/calculatorzakakt/internal/payment"
	"github.com/siddeeqzul/calculatorzakakt/internal/payment/storage"
	"github.com/siddeeqzul/calculatorzakakt/internal/transport/rest"
	"github.com/siddeeqzul/calculatorzakakt/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle payment API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config         *internal.Config
	DB             *gorm.DB
	Router         *chi.Mux
	PaymentHandler *payment.Handler
	Logger         *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := deps.DB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to access database handle: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, sqlDB, deps.PaymentHandler, deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr, "gateway_mode", deps.Config.Gateway.Mode)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	eventBus := events.NewEventBus(log)
	payment.NewReceiptNotifier(log).RegisterEventHandlers(eventBus)

	gw := gateway.New(config.Gateway, log)
	history := storage.NewHistoryRepository(db)

	service := payment.NewService(gw, history, eventBus, config.Gateway, log)
	reconciler := payment.NewReconciler(gw, history, eventBus, config.Gateway.Timeout, log)
	handler := payment.NewHandler(service, reconciler, log)

	return &Dependencies{
		Config:         config,
		Logger:         log,
		DB:             db,
		Router:         chi.NewRouter(),
		PaymentHandler: handler,
	}, nil
}

// initDB opens the history database. The default sqlite file keeps the log
// local and advisory; postgres is available for shared deployments and is
// opened through the pgx stdlib driver.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "postgres":
		sqlxDB, err := sqlx.Connect("pgx", cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres connection: %w", err)
		}

		sqlxDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlxDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlxDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlxDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

		return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})

	case "sqlite":
		db, err := gorm.Open(gormsqlite.Open(cfg.GetDSN()), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
