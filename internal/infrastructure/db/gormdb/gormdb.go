// Package gormdb implements the user and student repositories on a
// relational database through gorm. The dialector is picked from the
// connection string: postgres URLs use the pgx-backed postgres driver,
// everything else is treated as a sqlite path.
package gormdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings needed to open the relational store.
type Config struct {
	DSN     string
	Debug   bool
	Timeout time.Duration
}

// Open connects, pings, and migrates the schema.
func Open(ctx context.Context, cfg Config) (*gorm.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	gormLogger := logger.Discard
	if cfg.Debug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	dialector, isSQLite := dialectorFor(cfg.DSN)
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm db handle: %w", err)
	}
	if isSQLite {
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("gorm ping: %w", err)
	}

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables backing both repositories.
func Migrate(db *gorm.DB) error {
	for _, model := range []interface{}{&userModel{}, &studentModel{}} {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto migrate %T: %w", model, err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping is used by the readiness probe.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func dialectorFor(dsn string) (gorm.Dialector, bool) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), false
	case strings.HasPrefix(dsn, "sqlite:///"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite:///")), true
	default:
		return sqlite.Open(dsn), true
	}
}
