// Package history keeps a local audit trail of completed scans so triage
// pipelines can tell which documents were already analyzed and what the
// verdict was.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/macrolabs/stompcheck/diff"
)

// Record is one completed scan.
type Record struct {
	ID         int64
	Path       string
	SHA256     string
	Verdict    diff.Verdict
	PcodeOnly  int
	SourceOnly int
	ScannedAt  time.Time
}

// Manager persists scan records in a local SQLite database.
type Manager struct {
	db *sql.DB
}

// Open opens (and creates, if needed) the scan history database.
func Open(path string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	m := &Manager{db: db}
	if err := m.initTable(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

// Close releases the database handle.
func (m *Manager) Close() error { return m.db.Close() }

func (m *Manager) initTable(ctx context.Context) error {
	const schema = `CREATE TABLE IF NOT EXISTS scans (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		path        TEXT NOT NULL,
		sha256      TEXT NOT NULL,
		verdict     TEXT NOT NULL,
		pcode_only  INTEGER NOT NULL,
		source_only INTEGER NOT NULL,
		scanned_at  TIMESTAMP NOT NULL
	)`
	if _, err := m.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create scans table: %w", err)
	}
	return nil
}

// Record appends one scan to the history.
func (m *Manager) Record(ctx context.Context, rec *Record) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO scans (path, sha256, verdict, pcode_only, source_only, scanned_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Path, rec.SHA256, string(rec.Verdict), rec.PcodeOnly, rec.SourceOnly, rec.ScannedAt)
	return err
}

// List returns all scans, newest first.
func (m *Manager) List(ctx context.Context) ([]Record, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT id, path, sha256, verdict, pcode_only, source_only, scanned_at
		 FROM scans ORDER BY scanned_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var verdict string
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.SHA256, &verdict,
			&rec.PcodeOnly, &rec.SourceOnly, &rec.ScannedAt); err != nil {
			return nil, err
		}
		rec.Verdict = diff.Verdict(verdict)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all scan records.
func (m *Manager) Clear(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM scans`)
	return err
}

// HashFile returns the hex SHA-256 of a file's content, the identity the
// history and the watch cache key on.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
