package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrPersist wraps any I/O or permission failure while writing a report.
// Callers can retry; the typed reason/contact must not be discarded.
var ErrPersist = errors.New("report persist failed")

// TimestampFormat is the sortable format stored in the timestamp column.
const TimestampFormat = "2006-01-02 15:04:05"

// Report is one user-submitted suspicion report. Rows are immutable once
// written; the store exposes no update or delete.
type Report struct {
	ID          int64  `json:"id"`
	Code        string `json:"nafdac_number"`
	Reason      string `json:"reason,omitempty"`
	Contact     string `json:"contact,omitempty"`
	SubmittedAt string `json:"timestamp"`
}

type DB struct {
	sql *sql.DB

	// Serializes Append so concurrent submissions never interleave a row
	// or race on LastInsertId. Reads go straight to the pool.
	writeMu sync.Mutex

	now func() time.Time
}

// Open opens (creating if needed) the reports database at path and ensures
// the schema exists. initSchema is idempotent: existing rows are never
// touched.
func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS reports (
  id            INTEGER PRIMARY KEY AUTOINCREMENT,
  nafdac_number TEXT NOT NULL,
  reason        TEXT,
  contact       TEXT,
  timestamp     TEXT
);
CREATE INDEX IF NOT EXISTS idx_reports_code ON reports(nafdac_number);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db, now: time.Now}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Append inserts a report for code and returns the fully-populated row.
// The id is assigned by the store and strictly increases across calls;
// reason and contact may both be empty. The insert is committed before
// Append returns, so a successful return survives a crash.
func (d *DB) Append(ctx context.Context, code, reason, contact string) (Report, error) {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	r := Report{
		Code:        code,
		Reason:      reason,
		Contact:     contact,
		SubmittedAt: d.now().Format(TimestampFormat),
	}

	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO reports(nafdac_number, reason, contact, timestamp) VALUES(?,?,?,?)`,
		r.Code, nullIfEmpty(r.Reason), nullIfEmpty(r.Contact), r.SubmittedAt)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return r, nil
}

// Get returns the report with the given id, or sql.ErrNoRows if absent.
func (d *DB) Get(ctx context.Context, id int64) (Report, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT id, nafdac_number, reason, contact, timestamp FROM reports WHERE id = ?`, id)
	return scanReport(row)
}

// List returns the most recent reports, newest first.
func (d *DB) List(ctx context.Context, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, nafdac_number, reason, contact, timestamp FROM reports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats summarizes the report table.
type Stats struct {
	TotalReports  int `json:"total_reports"`
	DistinctCodes int `json:"distinct_codes"`
}

func (d *DB) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := d.sql.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT nafdac_number) FROM reports`).
		Scan(&s.TotalReports, &s.DistinctCodes)
	return s, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (Report, error) {
	var r Report
	var reason, contact, ts sql.NullString
	if err := row.Scan(&r.ID, &r.Code, &reason, &contact, &ts); err != nil {
		return Report{}, err
	}
	r.Reason = reason.String
	r.Contact = contact.String
	r.SubmittedAt = ts.String
	return r, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
