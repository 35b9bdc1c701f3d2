// Package store persists imported programs.
//
// Programs live in two tables: programs (one row per model, unique on the
// case-folded model name) and program_details (one row per screw position,
// cascading on delete). Two dialects are supported over database/sql:
//
//   - sqlite: embedded SQLite via ncruces/go-sqlite3, WAL mode, the default
//   - postgres: PostgreSQL via the pgx stdlib driver
//
// Every write that touches more than one row runs in a single transaction,
// so a crash mid-import leaves the previous version of a program intact.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Driver selects the SQL dialect.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrNotFound is returned when a model has no stored program.
var ErrNotFound = errors.New("program not found")

// ParseDriver accepts the configured driver name, including common aliases.
func ParseDriver(name string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q (want sqlite or postgres)", name)
	}
}

// DB wraps the database connection.
type DB struct {
	conn   *sql.DB
	driver Driver
	dsn    string
}

// Open connects to the database. For sqlite the DSN is a file path and the
// parent directory is created; for postgres it is a pgx connection string.
//
// The caller MUST call Close() when done.
func Open(driver Driver, dsn string) (*DB, error) {
	return OpenContext(context.Background(), driver, dsn)
}

// OpenContext opens the database with context support.
func OpenContext(ctx context.Context, driver Driver, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	var conn *sql.DB
	var err error
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		conn, err = sql.Open("sqlite3", fmt.Sprintf("file:%s", dsn))
	case DriverPostgres:
		conn, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn, driver: driver, dsn: dsn}

	if driver == DriverSQLite {
		pragmas := []struct {
			stmt string
			what string
		}{
			{"PRAGMA journal_mode=WAL", "enable WAL mode"},
			{"PRAGMA busy_timeout=5000", "set busy timeout"},
			{"PRAGMA foreign_keys=ON", "enable foreign keys"},
		}
		for _, p := range pragmas {
			if _, err := conn.ExecContext(ctx, p.stmt); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("failed to %s: %w", p.what, err)
			}
		}
	}

	return db, nil
}

// Driver reports the dialect in use.
func (db *DB) Driver() Driver {
	return db.driver
}

// Close closes the connection, checkpointing the SQLite WAL first.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if db.driver == DriverSQLite {
		if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
		}
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	db.conn = nil
	return nil
}

// InitSchema creates the tables and indexes if they don't exist.
// This is idempotent.
func (db *DB) InitSchema() error {
	return db.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the schema with context support.
func (db *DB) InitSchemaContext(ctx context.Context) error {
	// One statement per Exec for pgx.
	for _, stmt := range schemaStatements(db.driver) {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

func schemaStatements(driver Driver) []string {
	// Timestamps are RFC 3339 text in both dialects; decimals are text in
	// SQLite so no precision is lost to REAL affinity.
	decimalType := "TEXT"
	if driver == DriverPostgres {
		decimalType = "NUMERIC(18,2)"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS programs (
			id TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			model_key TEXT NOT NULL UNIQUE,
			workcell TEXT NOT NULL,
			file_path TEXT NOT NULL,
			file_date TEXT NOT NULL,
			extracted_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS program_details (
			id TEXT PRIMARY KEY,
			header_id TEXT NOT NULL,
			row_no INTEGER NOT NULL,
			torque_unit TEXT NOT NULL,
			angle_unit TEXT NOT NULL,
			target_torque ` + decimalType + ` NOT NULL,
			min_angle ` + decimalType + ` NOT NULL,
			max_angle ` + decimalType + ` NOT NULL,
			screw_count INTEGER NOT NULL,
			speed_rpm INTEGER NOT NULL,
			FOREIGN KEY (header_id) REFERENCES programs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_program_details_header ON program_details(header_id)`,
		`CREATE INDEX IF NOT EXISTS idx_programs_workcell ON programs(workcell)`,
	}
}

// rebind rewrites ? placeholders to $N for postgres.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func modelKey(model string) string {
	return strings.ToLower(model)
}
