package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite
)

// Driver names the SQL dialect a SQLSink talks to.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// The table holds a single row (slot 1) that every save overwrites.
const snapshotSlot = 1

const (
	upsertSnapshotSQL = `INSERT INTO question_snapshots (slot, version, last_id, question_count, payload, saved_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (slot) DO UPDATE SET version=EXCLUDED.version, last_id=EXCLUDED.last_id,
		question_count=EXCLUDED.question_count, payload=EXCLUDED.payload, saved_at=EXCLUDED.saved_at`
	selectSnapshotSQL = `SELECT payload FROM question_snapshots WHERE slot=$1`
)

// SQLSink persists snapshots as a JSON payload in a relational table.
type SQLSink struct {
	db     *sql.DB
	driver Driver
}

var _ Sink = (*SQLSink)(nil)

func NewSQLSink(db *sql.DB, driver Driver) *SQLSink {
	return &SQLSink{db: db, driver: driver}
}

// OpenSQLite opens (or creates) a sqlite database and ensures the snapshot
// table exists. Postgres schemas are managed by goose migrations instead.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = "file:questions.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open(string(DriverSQLite), dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := EnsureSchema(ctx, db, DriverSQLite); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the snapshot table for drivers that are not migrated
// externally.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	if driver != DriverSQLite {
		return nil
	}
	if _, err := db.ExecContext(ctx, schemaSQLite); err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS question_snapshots (
  slot INTEGER PRIMARY KEY,
  version INTEGER NOT NULL,
  last_id INTEGER NOT NULL,
  question_count INTEGER NOT NULL,
  payload TEXT NOT NULL,
  saved_at INTEGER NOT NULL
);
`

func (s *SQLSink) Load(ctx context.Context) (Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, selectSnapshotSQL, snapshotSlot).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("%s load snapshot: %w", s.driver, err)
	}
	return Decode([]byte(payload))
}

func (s *SQLSink) Save(ctx context.Context, snap Snapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, upsertSnapshotSQL,
		snapshotSlot, FormatVersion, snap.LastID, snap.QuestionCount(), string(data), snap.SavedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("%s save snapshot: %w", s.driver, err)
	}
	return nil
}
