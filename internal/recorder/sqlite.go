package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"BistSentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists scan and broadcast history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_reports (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			indicator   TEXT NOT NULL,
			succeeded   INTEGER,
			failed      INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_ts ON scan_reports(timestamp)`,

		`CREATE TABLE IF NOT EXISTS scan_entries (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id INTEGER NOT NULL REFERENCES scan_reports(id),
			position  INTEGER,
			symbol    TEXT NOT NULL,
			value     REAL,
			latest    REAL,
			trend     TEXT,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_report ON scan_entries(report_id)`,

		`CREATE TABLE IF NOT EXISTS broadcasts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			kind       TEXT,
			symbol     TEXT,
			message    TEXT,
			price      REAL,
			recipients INTEGER,
			delivered  INTEGER,
			failed     INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_broadcast_ts ON broadcasts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScan(report *model.ScanReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := report.StartedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO scan_reports
		(timestamp, indicator, succeeded, failed, duration_ms)
		VALUES (?,?,?,?,?)`,
		ts.Unix(), report.Indicator, report.Succeeded, report.Failed, report.Duration.Milliseconds(),
	)
	if err != nil {
		return err
	}
	reportID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, e := range report.Entries {
		var errText sql.NullString
		if e.Err != nil {
			errText = sql.NullString{String: e.Err.Error(), Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO scan_entries
			(report_id, position, symbol, value, latest, trend, error)
			VALUES (?,?,?,?,?,?,?)`,
			reportID, i+1, e.Symbol, e.Value, e.Latest, string(e.Trend), errText,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordBroadcast(evt *BroadcastEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO broadcasts
		(timestamp, kind, symbol, message, price, recipients, delivered, failed)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Kind, evt.Symbol, evt.Message, evt.Price,
		evt.Recipients, evt.Delivered, evt.Failed,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
