package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"climate-api/internal/config"
)

func Open(cfg config.Config) (*sqlx.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sqlx.DB
	if cfg.SQLiteLogSQL {
		connector, err := NewLoggingConnector(dsn, slog.Default())
		if err != nil {
			return nil, fmt.Errorf("db connector: %w", err)
		}
		db = sqlx.NewDb(sql.OpenDB(connector), cfg.SQLiteDriver)
	} else {
		db, err = sqlx.Open(cfg.SQLiteDriver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	// Readers only; a handful of connections lets requests run in parallel.
	if cfg.SQLiteMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.SQLiteMaxOpenConns)
	}
	if cfg.SQLiteMaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.SQLiteMaxIdleConns)
	}
	if cfg.SQLiteConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.SQLiteConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.SQLiteDSN != "" {
		return cfg.SQLiteDSN, nil
	}

	path := cfg.SQLitePath
	dir := filepath.Dir(path)
	if dir != "." && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	// busy_timeout covers the window where the import tool holds the write lock.
	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
