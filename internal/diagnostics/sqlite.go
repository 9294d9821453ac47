package diagnostics

import (
	"database/sql"
	"encoding/json"
	"fmt"

	// Registers the "sqlite3" driver with database/sql.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// SQLiteDiscrepancySink persists every reported timestamp discrepancy
// to a SQLite database, for the `--debug-timestamps` run's deeper
// offline inspection. It batches inserts; Close writes the last
// partial batch. It also registers an atexit flush, which runs only
// when the process exits through atexit.Exit.
type SQLiteDiscrepancySink struct {
	db        *sql.DB
	insert    *sql.Stmt
	buffered  []*TimestampDiscrepancy
	batchSize int
}

// NewSQLiteDiscrepancySink opens (creating if absent) a SQLite database
// at path and prepares it to receive discrepancy rows. An empty path
// picks a unique name so concurrent batch runs never collide.
func NewSQLiteDiscrepancySink(path string) (*SQLiteDiscrepancySink, error) {
	sink, _, err := NewSQLiteDiscrepancySinkWithPath(path)
	return sink, err
}

// NewSQLiteDiscrepancySinkWithPath is NewSQLiteDiscrepancySink, but also
// returns the resolved path so a caller that passed "" can find (and
// clean up) the generated file.
func NewSQLiteDiscrepancySinkWithPath(path string) (*SQLiteDiscrepancySink, string, error) {
	if path == "" {
		path = "cohesim_discrepancies_" + xid.New().String() + ".sqlite3"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, "", fmt.Errorf("opening discrepancy database %s: %w", path, err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS discrepancy (
			write          BOOLEAN NOT NULL,
			addr           INTEGER NOT NULL,
			step           INTEGER NOT NULL,
			max_timestamp  INTEGER NOT NULL,
			stale_cache_ids TEXT NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("creating discrepancy table: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO discrepancy VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, "", fmt.Errorf("preparing discrepancy insert: %w", err)
	}

	s := &SQLiteDiscrepancySink{db: db, insert: stmt, batchSize: 1000}
	atexit.Register(func() { s.Flush() })

	return s, path, nil
}

// Record buffers a discrepancy, flushing once the batch fills.
func (s *SQLiteDiscrepancySink) Record(d *TimestampDiscrepancy) error {
	s.buffered = append(s.buffered, d)
	if len(s.buffered) >= s.batchSize {
		return s.Flush()
	}
	return nil
}

// Flush writes every buffered discrepancy to the database in one
// transaction.
func (s *SQLiteDiscrepancySink) Flush() error {
	if len(s.buffered) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning discrepancy flush: %w", err)
	}

	for _, d := range s.buffered {
		ids, err := json.Marshal(d.StaleCacheIDs)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshalling stale cache ids: %w", err)
		}
		if _, err := tx.Stmt(s.insert).Exec(d.Write, d.Addr, d.Step, d.MaxTimestamp, string(ids)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting discrepancy: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing discrepancy flush: %w", err)
	}

	s.buffered = nil
	return nil
}

// Close flushes any remaining rows and closes the database handle.
func (s *SQLiteDiscrepancySink) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.db.Close()
}
