// Package storage persists notebooks, app settings and pending MCP
// approvals. SQLite is the default; MySQL, Postgres and MongoDB can hold a
// shared store instead.
package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"canvasnotes/internal/domain"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverMongoDB  Driver = "mongodb"
)

// Config selects and addresses the backing database.
type Config struct {
	Driver Driver
	// DSN is the driver's connection string. For SQLite it is the database
	// file path and defaults to DataDir/notes.db.
	DSN string
	// Password is injected into the DSN when it has none, so the DSN can
	// live in plain config while the secret stays in the keychain.
	Password string
	// Database names the MongoDB database when the URI does not.
	Database string
	DataDir  string
}

// Store is everything the app keeps outside the notebook file.
type Store interface {
	domain.NotebookStore
	domain.SettingsStore
	domain.ApprovalStore
}

// Open connects to the configured database and prepares its schema.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		path := cfg.DSN
		if path == "" {
			path = filepath.Join(cfg.DataDir, "notes.db")
		}
		return OpenSQLite(path)
	case DriverMySQL:
		dsn, err := mysqlDSN(cfg.DSN, cfg.Password)
		if err != nil {
			return nil, err
		}
		return openSQL(ctx, mysqlDialect, dsn)
	case DriverPostgres:
		dsn, err := postgresDSN(cfg.DSN, cfg.Password)
		if err != nil {
			return nil, err
		}
		return openSQL(ctx, postgresDialect, dsn)
	case DriverMongoDB:
		return OpenMongo(ctx, cfg.DSN, cfg.Password, cfg.Database)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}
