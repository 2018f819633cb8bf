package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bookswap-api/internal/config"
	"github.com/phrazzld/bookswap-api/internal/events"
	"github.com/phrazzld/bookswap-api/internal/platform/postgres"
	"github.com/phrazzld/bookswap-api/internal/service"
	"github.com/phrazzld/bookswap-api/internal/service/auth"
	"github.com/phrazzld/bookswap-api/internal/service/trade"
	"github.com/phrazzld/bookswap-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore  store.UserStore
	bookStore  store.BookStore
	tradeStore store.TradeStore

	jwtService   auth.JWTService
	eventEmitter *events.InMemoryEventEmitter

	authService  service.AuthService
	userService  service.UserService
	bookService  service.BookService
	tradeService trade.Service
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.bookStore = postgres.NewPostgresBookStore(db, logger)
	app.tradeStore = postgres.NewPostgresTradeStore(db, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	if cfg.Trade.AuditEvents {
		app.eventEmitter.RegisterHandler(events.NewAuditLogHandler(logger))
		logger.Info("Trade audit events enabled")
	}

	app.authService = service.NewAuthService(db, app.userStore, hasher, hasher, app.jwtService, logger)
	app.userService = service.NewUserService(app.userStore, hasher, db, logger)
	app.bookService = service.NewBookService(app.bookStore, app.userStore, db, logger)
	app.tradeService = trade.NewService(db, app.tradeStore, app.bookStore, app.eventEmitter, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
