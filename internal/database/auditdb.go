package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/icsfix/icsfix/internal/model"
)

// DBFileName is the name of the SQLite database file inside the audit directory.
const DBFileName = "icsfix.db"

// AuditDB provides SQLite-based storage for relay request outcomes.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: the audit store keeps outcomes only, never fetched
// calendar content and never full source URLs. Subscription URLs
// routinely embed access tokens, so only the hostname is persisted.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// Path returns the path of the underlying database file.
func (adb *AuditDB) Path() string {
	return adb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Relay requests store one row per processed URL, outcomes only
	CREATE TABLE IF NOT EXISTS relay_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		host TEXT NOT NULL,
		outcome TEXT NOT NULL,
		error_message TEXT,
		bytes_fetched INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_requests_host ON relay_requests(host);
	CREATE INDEX IF NOT EXISTS idx_requests_outcome ON relay_requests(outcome);
	CREATE INDEX IF NOT EXISTS idx_requests_timestamp ON relay_requests(timestamp);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRequest inserts a new audit record and returns its row ID.
func (adb *AuditDB) SaveRequest(ctx context.Context, record *model.AuditRecord) (int64, error) {
	query := `
	INSERT INTO relay_requests (host, outcome, error_message, bytes_fetched, duration_ms)
	VALUES (?, ?, ?, ?, ?)
	`

	result, err := adb.db.ExecContext(ctx, query,
		record.Host,
		record.Outcome,
		record.ErrorMessage,
		record.BytesFetched,
		record.DurationMS,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert audit record: %w", err)
	}

	return result.LastInsertId()
}

// RecentRequests returns the most recent audit records, newest first.
// A non-positive limit returns an empty slice.
func (adb *AuditDB) RecentRequests(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
	SELECT id, timestamp, host, outcome, error_message, bytes_fetched, duration_ms
	FROM relay_requests
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`

	rows, err := adb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var results []model.AuditRecord
	for rows.Next() {
		var record model.AuditRecord
		var timestamp string
		var errorMessage sql.NullString

		err := rows.Scan(
			&record.ID,
			&timestamp,
			&record.Host,
			&record.Outcome,
			&errorMessage,
			&record.BytesFetched,
			&record.DurationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}

		record.Timestamp = parseTimestamp(timestamp)
		record.ErrorMessage = errorMessage.String
		results = append(results, record)
	}

	return results, rows.Err()
}

// CountByOutcome returns the number of stored requests per outcome name.
func (adb *AuditDB) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	query := `
	SELECT outcome, COUNT(*)
	FROM relay_requests
	GROUP BY outcome
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var count int64
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = count
	}

	return counts, rows.Err()
}

// HasRecentFailure reports whether a host failed within the specified duration.
// Useful for spotting upstreams that keep serving broken calendars.
func (adb *AuditDB) HasRecentFailure(ctx context.Context, host string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM relay_requests
	WHERE host = ? AND outcome != 'success' AND timestamp > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := adb.db.QueryRowContext(ctx, query, host, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent failures: %w", err)
	}

	return count > 0, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
