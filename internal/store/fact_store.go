// Package store persists snapshots of the logic database in SQLite so
// facts asserted by one run can seed later runs.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/msto63/bayan/foundation/bayan/logic"
	mdwerror "github.com/msto63/bayan/foundation/core/error"
	mdwlog "github.com/msto63/bayan/foundation/core/log"
)

// Snapshot describes one saved database state
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Facts     int       `json:"facts"`
	Skipped   int       `json:"skipped"`
}

// Fact is a stored fact in display form
type Fact struct {
	Predicate string `json:"predicate"`
	Arity     int    `json:"arity"`
	Text      string `json:"text"`
}

// FactFilter restricts fact listings
type FactFilter struct {
	SnapshotID string // empty selects the latest snapshot
	Predicate  string
	Limit      int
}

// FactStore defines the interface for fact persistence
type FactStore interface {
	Save(ctx context.Context, id, name string, db *logic.Database) (*Snapshot, error)
	Restore(ctx context.Context, snapshotID string, db *logic.Database) (*Snapshot, error)
	Snapshots(ctx context.Context, limit int) ([]*Snapshot, error)
	Facts(ctx context.Context, filter FactFilter) ([]*Fact, error)
	Prune(ctx context.Context, keep int) (int64, error)
	PingContext(ctx context.Context) error
	Close() error
}

// SQLiteFactStore implements FactStore using SQLite
type SQLiteFactStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	logger *mdwlog.Logger
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path   string
	Logger *mdwlog.Logger
}

// DefaultConfig returns default configuration
func DefaultConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/facts.db",
	}
}

// NewSQLiteFactStore opens or creates a fact database
func NewSQLiteFactStore(cfg SQLiteConfig) (*SQLiteFactStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = mdwlog.GetDefault()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, storeError(err, "failed to create directory")
	}

	// Open database with WAL mode
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, storeError(err, "failed to open database")
	}

	store := &SQLiteFactStore{db: db, logger: cfg.Logger.WithField("component", "fact-store")}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, storeError(err, "failed to initialize schema")
	}

	return store, nil
}

func storeError(err error, message string) *mdwerror.Error {
	return mdwerror.Wrap(err, message).WithCode(mdwerror.CodeDatabaseError)
}

// initSchema creates the necessary tables
func (s *SQLiteFactStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		facts INTEGER NOT NULL,
		skipped INTEGER NOT NULL
	);

	-- seq keeps database order so restored predicates answer in the
	-- order they were asserted
	CREATE TABLE IF NOT EXISTS facts (
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		predicate TEXT NOT NULL,
		arity INTEGER NOT NULL,
		args TEXT NOT NULL,
		text TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_facts_predicate ON facts(snapshot_id, predicate);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save stores every ground fact of db under a new snapshot. Rules and
// body-less clauses with variables cannot be stored and are counted as
// skipped.
func (s *SQLiteFactStore) Save(ctx context.Context, id, name string, db *logic.Database) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{ID: id, Name: name, CreatedAt: time.Now().UTC()}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO facts (snapshot_id, seq, predicate, arity, args, text)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, storeError(err, "failed to prepare statement")
	}
	defer stmt.Close()

	// the snapshot row goes first so the foreign key holds
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, created_at, facts, skipped) VALUES (?, ?, ?, 0, 0)
	`, snap.ID, snap.Name, snap.CreatedAt); err != nil {
		return nil, storeError(err, "failed to insert snapshot")
	}

	skipped := db.Len() - len(db.Facts())
	for _, head := range db.Facts() {
		if !logic.IsGround(head) {
			skipped++
			continue
		}
		args, err := EncodeArgs(head)
		if err != nil {
			skipped++
			continue
		}
		if _, err := stmt.ExecContext(ctx, snap.ID, snap.Facts, head.Functor, len(head.Args), args, head.String()); err != nil {
			return nil, storeError(err, "failed to insert fact")
		}
		snap.Facts++
	}
	snap.Skipped = skipped

	if _, err := tx.ExecContext(ctx, `UPDATE snapshots SET facts = ?, skipped = ? WHERE id = ?`,
		snap.Facts, snap.Skipped, snap.ID); err != nil {
		return nil, storeError(err, "failed to update snapshot")
	}
	if err := tx.Commit(); err != nil {
		return nil, storeError(err, "failed to commit transaction")
	}

	s.logger.Info("snapshot saved", mdwlog.Fields{"id": snap.ID, "facts": snap.Facts, "skipped": snap.Skipped})
	return snap, nil
}

// Restore asserts the facts of a snapshot into db, the latest snapshot
// when snapshotID is empty. A store without snapshots restores nothing
// and returns a nil snapshot.
func (s *SQLiteFactStore) Restore(ctx context.Context, snapshotID string, db *logic.Database) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, err := s.snapshot(ctx, snapshotID)
	if err != nil || snap == nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT predicate, args FROM facts WHERE snapshot_id = ? ORDER BY seq
	`, snap.ID)
	if err != nil {
		return nil, storeError(err, "failed to query facts")
	}
	defer rows.Close()

	var heads []*logic.Compound
	for rows.Next() {
		var predicate, args string
		if err := rows.Scan(&predicate, &args); err != nil {
			return nil, storeError(err, "failed to scan fact")
		}
		head, err := DecodeFact(predicate, args)
		if err != nil {
			return nil, storeError(err, "corrupt fact in snapshot "+snap.ID)
		}
		heads = append(heads, head)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "failed to read facts")
	}

	for _, head := range heads {
		if err := db.AssertFact(head); err != nil {
			return nil, storeError(err, "failed to restore fact")
		}
	}

	s.logger.Debug("snapshot restored", mdwlog.Fields{"id": snap.ID, "facts": len(heads)})
	return snap, nil
}

// snapshot loads one snapshot row; the empty id selects the latest
func (s *SQLiteFactStore) snapshot(ctx context.Context, id string) (*Snapshot, error) {
	query := `SELECT id, name, created_at, facts, skipped FROM snapshots WHERE id = ?`
	args := []interface{}{id}
	if id == "" {
		query = `SELECT id, name, created_at, facts, skipped FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`
		args = nil
	}

	var snap Snapshot
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&snap.ID, &snap.Name, &snap.CreatedAt, &snap.Facts, &snap.Skipped)
	switch {
	case err == sql.ErrNoRows && id == "":
		return nil, nil
	case err == sql.ErrNoRows:
		return nil, mdwerror.Newf("snapshot %s not found", id).WithCode(mdwerror.CodeNotFound)
	case err != nil:
		return nil, storeError(err, "failed to query snapshot")
	}
	return &snap, nil
}

// Snapshots lists snapshots, newest first
func (s *SQLiteFactStore) Snapshots(ctx context.Context, limit int) ([]*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, created_at, facts, skipped FROM snapshots ORDER BY created_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(err, "failed to query snapshots")
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.CreatedAt, &snap.Facts, &snap.Skipped); err != nil {
			return nil, storeError(err, "failed to scan snapshot")
		}
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}

// Facts lists the facts of a snapshot in database order
func (s *SQLiteFactStore) Facts(ctx context.Context, filter FactFilter) ([]*Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, err := s.snapshot(ctx, filter.SnapshotID)
	if err != nil || snap == nil {
		return nil, err
	}

	query := `SELECT predicate, arity, text FROM facts WHERE snapshot_id = ?`
	args := []interface{}{snap.ID}
	if filter.Predicate != "" {
		query += " AND predicate = ?"
		args = append(args, filter.Predicate)
	}
	query += " ORDER BY seq"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(err, "failed to query facts")
	}
	defer rows.Close()

	var facts []*Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(&f.Predicate, &f.Arity, &f.Text); err != nil {
			return nil, storeError(err, "failed to scan fact")
		}
		facts = append(facts, &f)
	}
	return facts, rows.Err()
}

// Prune deletes all but the newest keep snapshots
func (s *SQLiteFactStore) Prune(ctx context.Context, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, storeError(err, "failed to prune snapshots")
	}
	return result.RowsAffected()
}

// Vacuum optimizes the database
func (s *SQLiteFactStore) Vacuum(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// PingContext checks the database connection
func (s *SQLiteFactStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteFactStore) Close() error {
	return s.db.Close()
}
