package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"github.com/muurk/ampwatch/internal/logging"
	"github.com/muurk/ampwatch/internal/pipeline"

	_ "modernc.org/sqlite"
)

// Store keeps the history of valid readings in SQLite.
// Each capture is stored once; its key is the xxh3 hash of date and adjusted frame.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is one stored reading.
type Entry struct {
	Key        uint64    `json:"key"`
	Date       string    `json:"date"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	TotalAh    float64   `json:"total_ah"`
	CurrentA   float64   `json:"current_a"`
	Battery    string    `json:"battery"`
	CRC        string    `json:"crc"`
	Adjusted   string    `json:"adjusted"`
	StoredAt   time.Time `json:"stored_at"`
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}

	logging.Debug("Reading store opened", zap.String("path", path))
	return &Store{db: db, now: time.Now}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS readings (
    key INTEGER PRIMARY KEY,
    date TEXT NOT NULL,
    sender_id TEXT NOT NULL,
    receiver_id TEXT NOT NULL,
    total_ah REAL NOT NULL,
    current_a REAL NOT NULL,
    battery TEXT NOT NULL,
    crc TEXT NOT NULL,
    adjusted TEXT NOT NULL,
    stored_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS readings_sender ON readings (sender_id, stored_at);`
	_, err := db.Exec(schema)
	return err
}

// Key returns the dedup key for a capture.
func Key(date, adjusted string) uint64 {
	return xxh3.HashString(date + "|" + adjusted)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save stores a reading whose CRC matched exactly. It reports whether a new row
// was written; other CRC results and repeats of a stored capture are ignored.
func (s *Store) Save(ctx context.Context, rd pipeline.Reading) (bool, error) {
	if !rd.Valid() {
		return false, nil
	}
	r := rd.Record

	res, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO readings (
    key, date, sender_id, receiver_id, total_ah, current_a, battery, crc, adjusted, stored_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(Key(rd.Date, r.Adjusted)),
		rd.Date,
		r.SenderID,
		r.ReceiverID,
		r.TotalAh,
		r.CurrentA,
		r.Battery,
		r.CRC,
		r.Adjusted,
		s.now().UTC().UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("store: insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: insert: %w", err)
	}
	return n == 1, nil
}

// Handle implements pipeline.Sink.
func (s *Store) Handle(ctx context.Context, rd pipeline.Reading) error {
	_, err := s.Save(ctx, rd)
	return err
}

// Recent returns up to limit readings, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx, `
SELECT key, date, sender_id, receiver_id, total_ah, current_a, battery, crc, adjusted, stored_at
FROM readings ORDER BY stored_at DESC, rowid DESC LIMIT ?`, limit)
}

// RecentBySender returns up to limit readings from one sender, newest first.
func (s *Store) RecentBySender(ctx context.Context, senderID string, limit int) ([]Entry, error) {
	return s.query(ctx, `
SELECT key, date, sender_id, receiver_id, total_ah, current_a, battery, crc, adjusted, stored_at
FROM readings WHERE sender_id = ? ORDER BY stored_at DESC, rowid DESC LIMIT ?`, senderID, limit)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			key      int64
			storedAt int64
		)
		if err := rows.Scan(&key, &e.Date, &e.SenderID, &e.ReceiverID, &e.TotalAh, &e.CurrentA,
			&e.Battery, &e.CRC, &e.Adjusted, &storedAt); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		e.Key = uint64(key)
		e.StoredAt = time.Unix(0, storedAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: rows: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored readings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}
