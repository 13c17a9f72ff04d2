package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies all pending schema and seed migrations.
func Migrate(ctx context.Context, db *sqlx.DB, log *logrus.Logger) error {
	dialect := goose.DialectPostgres
	if db.DriverName() == DriverSQLite {
		dialect = goose.DialectSQLite3
	}
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	for _, r := range results {
		log.Infof("applied migration %s (%s)", r.Source.Path, r.Duration)
	}
	return nil
}
