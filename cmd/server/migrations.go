package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/bookswap-api/internal/config"
	"github.com/phrazzld/bookswap-api/internal/platform/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// Supported -migrate commands.
const (
	migrateUp      = "up"
	migrateDown    = "down"
	migrateStatus  = "status"
	migrateVersion = "version"
	migrateReset   = "reset"
)

// parseMigrateCommand normalizes and validates a -migrate flag value.
func parseMigrateCommand(raw string) (string, error) {
	cmd := strings.ToLower(strings.TrimSpace(raw))
	switch cmd {
	case migrateUp, migrateDown, migrateStatus, migrateVersion, migrateReset:
		return cmd, nil
	}
	return "", fmt.Errorf("unknown migration command %q (want up, down, status, version or reset)", raw)
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf implements goose.Logger by forwarding messages at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger. It does NOT call os.Exit; the error is
// returned to main, which decides how to exit.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// handleMigrations opens the database and runs one migration command.
func handleMigrations(cfg *config.Config, logger *slog.Logger, rawCmd string) error {
	cmd, err := parseMigrateCommand(rawCmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	return runMigrations(ctx, db, logger, cmd)
}

// runMigrations executes cmd against the embedded migration set.
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger, cmd string) error {
	log := logger.With(slog.String("component", "migrations"), slog.String("command", cmd))

	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrations.TableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	log.Info("Running migrations")

	var err error
	switch cmd {
	case migrateUp:
		err = goose.UpContext(ctx, db, ".")
	case migrateDown:
		err = goose.DownContext(ctx, db, ".")
	case migrateStatus:
		err = goose.StatusContext(ctx, db, ".")
	case migrateVersion:
		err = goose.VersionContext(ctx, db, ".")
	case migrateReset:
		err = goose.ResetContext(ctx, db, ".")
	default:
		err = fmt.Errorf("unknown migration command %q", cmd)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", cmd, err)
	}

	log.Info("Migrations completed")
	return nil
}
