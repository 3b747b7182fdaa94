// Package history persists past detection runs in a local sqlite
// database. Only the CLI uses it; the detection engine itself keeps no
// state between calls.
package history

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/quantmind-br/browserscout/internal/core"
	_ "modernc.org/sqlite"
)

// DB is the scan-history store with separate read/write pools
type DB struct {
	write *sql.DB
	read  *sql.DB
	path  string
}

// New opens (and if needed initializes) the history database
func New(ctx context.Context, dbPath string) (*DB, error) {
	connStr := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)

	// Write pool: MUST be 1 connection only
	write, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open write connection: %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetMaxIdleConns(1)
	write.SetConnMaxIdleTime(time.Minute)
	write.SetConnMaxLifetime(time.Hour)

	read, err := sql.Open("sqlite", connStr)
	if err != nil {
		write.Close()
		return nil, fmt.Errorf("open read connection: %w", err)
	}
	read.SetMaxOpenConns(10)
	read.SetMaxIdleConns(5)
	read.SetConnMaxIdleTime(time.Minute)
	read.SetConnMaxLifetime(time.Hour)

	db := &DB{write: write, read: read, path: dbPath}

	if err := db.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Close closes both database connections
func (db *DB) Close() error {
	writeErr := db.write.Close()
	readErr := db.read.Close()
	if writeErr != nil {
		return writeErr
	}
	return readErr
}

// initSchema creates the schema if it doesn't exist
func (db *DB) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS scans (
    scan_id TEXT PRIMARY KEY,
    scan_date DATETIME DEFAULT CURRENT_TIMESTAMP,
    requested TEXT,
    result_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS scan_results (
    scan_id TEXT NOT NULL REFERENCES scans(scan_id) ON DELETE CASCADE,
    browser TEXT NOT NULL,
    path TEXT NOT NULL,
    version TEXT NOT NULL,
    architecture INTEGER NOT NULL,
    channel TEXT,
    metadata TEXT
);

CREATE INDEX IF NOT EXISTS idx_scan_results_scan ON scan_results(scan_id);
CREATE INDEX IF NOT EXISTS idx_scan_results_browser ON scan_results(browser);
	`

	_, err := db.write.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Save stores one detection run and returns its scan id
func (db *DB) Save(ctx context.Context, requested []string, results []core.ExecutableInfo) (string, error) {
	scanID, err := newScanID()
	if err != nil {
		return "", err
	}

	tx, err := db.write.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scans (scan_id, scan_date, requested, result_count) VALUES (?, ?, ?, ?)`,
		scanID, time.Now().UTC(), strings.Join(requested, ","), len(results),
	)
	if err != nil {
		return "", fmt.Errorf("insert scan: %w", err)
	}

	for _, res := range results {
		metadataJSON, err := json.Marshal(res.Metadata)
		if err != nil {
			return "", fmt.Errorf("marshal metadata: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO scan_results (scan_id, browser, path, version, architecture, channel, metadata) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			scanID, res.Name, res.Path, res.Version, res.Architecture, string(res.Channel), string(metadataJSON),
		)
		if err != nil {
			return "", fmt.Errorf("insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return scanID, nil
}

// List returns all stored scans, newest first, with their results
func (db *DB) List(ctx context.Context) ([]core.ScanRecord, error) {
	rows, err := db.read.QueryContext(ctx,
		`SELECT scan_id, scan_date, requested FROM scans ORDER BY scan_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var records []core.ScanRecord
	for rows.Next() {
		var rec core.ScanRecord
		var requested string
		if err := rows.Scan(&rec.ScanID, &rec.ScanDate, &requested); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if requested != "" {
			rec.Requested = strings.Split(requested, ",")
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}

	for i := range records {
		results, err := db.results(ctx, records[i].ScanID)
		if err != nil {
			return nil, err
		}
		records[i].Results = results
	}
	return records, nil
}

// results loads the stored results of one scan
func (db *DB) results(ctx context.Context, scanID string) ([]core.ExecutableInfo, error) {
	rows, err := db.read.QueryContext(ctx,
		`SELECT browser, path, version, architecture, channel, metadata FROM scan_results WHERE scan_id = ? ORDER BY browser, path`,
		scanID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []core.ExecutableInfo
	for rows.Next() {
		var info core.ExecutableInfo
		var channel, metadataJSON string
		if err := rows.Scan(&info.Name, &info.Path, &info.Version, &info.Architecture, &channel, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		info.Channel = core.Channel(channel)
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &info.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		results = append(results, info)
	}
	return results, rows.Err()
}

// Clear deletes all stored scans and returns how many were removed
func (db *DB) Clear(ctx context.Context) (int64, error) {
	res, err := db.write.ExecContext(ctx, `DELETE FROM scans`)
	if err != nil {
		return 0, fmt.Errorf("clear scans: %w", err)
	}
	if _, err := db.write.ExecContext(ctx, `DELETE FROM scan_results`); err != nil {
		return 0, fmt.Errorf("clear scan results: %w", err)
	}
	return res.RowsAffected()
}

// newScanID generates a random scan identifier
func newScanID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate scan id: %w", err)
	}
	return time.Now().UTC().Format("20060102-150405") + "-" + hex.EncodeToString(buf), nil
}
