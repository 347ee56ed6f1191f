package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/Tiliavir/paywindow-tracker/internal/changes"
	"github.com/Tiliavir/paywindow-tracker/internal/model"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db   *sqlx.DB
	feed changes.Feed
	r    rows
}

// Open opens (or creates) the SQLite database at path, enables WAL mode,
// and runs any pending schema migrations.
func Open(path string) (*SQLiteStore, error) {
	if path != MemoryPath && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// One connection: writers are serialized and an in-memory database is
	// not split across pool connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, r: rows{q: db}}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Update runs fn inside a transaction and publishes the touched collections
// once it has committed.
func (s *SQLiteStore) Update(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	r := &rows{q: tx, touched: map[changes.Collection]bool{}}
	if err := fn(r); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.feed.Publish(r.changed()...)
	return nil
}

// Subscribe returns a subscription to committed changes of cols.
func (s *SQLiteStore) Subscribe(cols ...changes.Collection) *changes.Subscription {
	return s.feed.Subscribe(cols...)
}

// GetEntry retrieves a single entry by ID.
func (s *SQLiteStore) GetEntry(ctx context.Context, id int64) (*model.WorkEntry, error) {
	return s.r.GetEntry(ctx, id)
}

// EntriesByDate returns the entries recorded on dateISO.
func (s *SQLiteStore) EntriesByDate(ctx context.Context, dateISO string) ([]model.WorkEntry, error) {
	return s.r.EntriesByDate(ctx, dateISO)
}

// EntriesByWindow returns the entries attached to the window windowEndDate.
func (s *SQLiteStore) EntriesByWindow(ctx context.Context, windowEndDate string) ([]model.WorkEntry, error) {
	return s.r.EntriesByWindow(ctx, windowEndDate)
}

// GetBlock retrieves the aggregate for windowEndDate.
func (s *SQLiteStore) GetBlock(ctx context.Context, windowEndDate string) (*model.PaidBlock, error) {
	return s.r.GetBlock(ctx, windowEndDate)
}

// Dates returns the distinct entry dates in ascending order.
func (s *SQLiteStore) Dates(ctx context.Context) ([]string, error) {
	var dates []string
	err := s.db.SelectContext(ctx, &dates,
		"SELECT DISTINCT date_iso FROM work_entries ORDER BY date_iso")
	if err != nil {
		return nil, fmt.Errorf("querying entry dates: %w", err)
	}
	return dates, nil
}

// WindowKeys returns the keys of all windows with an aggregate or an entry,
// in ascending order.
func (s *SQLiteStore) WindowKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.SelectContext(ctx, &keys, `
		SELECT window_end_date FROM paid_blocks
		UNION
		SELECT window_end_date FROM work_entries
		ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("querying window keys: %w", err)
	}
	return keys, nil
}

// Blocks returns all window aggregates ordered by payday, latest first.
func (s *SQLiteStore) Blocks(ctx context.Context) ([]model.PaidBlock, error) {
	var blocks []model.PaidBlock
	err := s.db.SelectContext(ctx, &blocks,
		"SELECT * FROM paid_blocks ORDER BY payday_date DESC")
	if err != nil {
		return nil, fmt.Errorf("querying paid blocks: %w", err)
	}
	return blocks, nil
}

// rows implements Tx on either the database handle or an open transaction.
type rows struct {
	q       sqlx.ExtContext
	touched map[changes.Collection]bool
}

func (r *rows) touch(c changes.Collection) {
	if r.touched != nil {
		r.touched[c] = true
	}
}

func (r *rows) changed() []changes.Collection {
	var cols []changes.Collection
	for _, c := range []changes.Collection{changes.WorkEntries, changes.PaidBlocks} {
		if r.touched[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

func (r *rows) GetEntry(ctx context.Context, id int64) (*model.WorkEntry, error) {
	var e model.WorkEntry
	err := sqlx.GetContext(ctx, r.q, &e, "SELECT * FROM work_entries WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("work entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting work entry %d: %w", id, err)
	}
	return &e, nil
}

func (r *rows) EntriesByDate(ctx context.Context, dateISO string) ([]model.WorkEntry, error) {
	var entries []model.WorkEntry
	err := sqlx.SelectContext(ctx, r.q, &entries,
		"SELECT * FROM work_entries WHERE date_iso = ? ORDER BY id", dateISO)
	if err != nil {
		return nil, fmt.Errorf("querying entries for %s: %w", dateISO, err)
	}
	return entries, nil
}

func (r *rows) EntriesByWindow(ctx context.Context, windowEndDate string) ([]model.WorkEntry, error) {
	var entries []model.WorkEntry
	err := sqlx.SelectContext(ctx, r.q, &entries,
		"SELECT * FROM work_entries WHERE window_end_date = ? ORDER BY date_iso, id", windowEndDate)
	if err != nil {
		return nil, fmt.Errorf("querying entries for window %s: %w", windowEndDate, err)
	}
	return entries, nil
}

func (r *rows) GetBlock(ctx context.Context, windowEndDate string) (*model.PaidBlock, error) {
	var b model.PaidBlock
	err := sqlx.GetContext(ctx, r.q, &b,
		"SELECT * FROM paid_blocks WHERE window_end_date = ?", windowEndDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("paid block %s: %w", windowEndDate, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting paid block %s: %w", windowEndDate, err)
	}
	return &b, nil
}

// InsertEntry inserts e and returns the assigned ID. e.ID is ignored.
func (r *rows) InsertEntry(ctx context.Context, e model.WorkEntry) (int64, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO work_entries (date_iso, hours, note, window_end_date, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.DateISO, e.Hours, e.Note, e.WindowEndDate, e.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting work entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading work entry id: %w", err)
	}
	r.touch(changes.WorkEntries)
	return id, nil
}

// UpdateEntry overwrites the mutable fields of an existing entry.
func (r *rows) UpdateEntry(ctx context.Context, e model.WorkEntry) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE work_entries SET
			date_iso = ?, hours = ?, note = ?, window_end_date = ?
		WHERE id = ?`,
		e.DateISO, e.Hours, e.Note, e.WindowEndDate, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating work entry %d: %w", e.ID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("work entry %d: %w", e.ID, ErrNotFound)
	}
	r.touch(changes.WorkEntries)
	return nil
}

// DeleteEntry removes an entry. Deleting a missing entry is not an error.
func (r *rows) DeleteEntry(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM work_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting work entry %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		r.touch(changes.WorkEntries)
	}
	return nil
}

// InsertBlock creates a window aggregate.
func (r *rows) InsertBlock(ctx context.Context, b model.PaidBlock) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO paid_blocks (window_end_date, is_paid, payday_date, total_hours, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		b.WindowEndDate, boolToInt(b.IsPaid), b.PaydayDate, b.TotalHours, b.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting paid block %s: %w", b.WindowEndDate, err)
	}
	r.touch(changes.PaidBlocks)
	return nil
}

// UpdateBlockTotal sets the cached total of an aggregate.
func (r *rows) UpdateBlockTotal(ctx context.Context, windowEndDate string, total decimal.Decimal, at time.Time) error {
	result, err := r.q.ExecContext(ctx,
		"UPDATE paid_blocks SET total_hours = ?, updated_at = ? WHERE window_end_date = ?",
		total, at.UTC(), windowEndDate,
	)
	if err != nil {
		return fmt.Errorf("updating total of paid block %s: %w", windowEndDate, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("paid block %s: %w", windowEndDate, ErrNotFound)
	}
	r.touch(changes.PaidBlocks)
	return nil
}

// UpdateBlockPaid sets the paid flag of an aggregate.
func (r *rows) UpdateBlockPaid(ctx context.Context, windowEndDate string, paid bool, at time.Time) error {
	result, err := r.q.ExecContext(ctx,
		"UPDATE paid_blocks SET is_paid = ?, updated_at = ? WHERE window_end_date = ?",
		boolToInt(paid), at.UTC(), windowEndDate,
	)
	if err != nil {
		return fmt.Errorf("updating paid flag of paid block %s: %w", windowEndDate, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("paid block %s: %w", windowEndDate, ErrNotFound)
	}
	r.touch(changes.PaidBlocks)
	return nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ Store = (*SQLiteStore)(nil)
