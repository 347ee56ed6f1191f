package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/paywindow-tracker/internal/changes"
	"github.com/Tiliavir/paywindow-tracker/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Reader is the read side shared by the store and its transactions.
type Reader interface {
	GetEntry(ctx context.Context, id int64) (*model.WorkEntry, error)
	EntriesByDate(ctx context.Context, dateISO string) ([]model.WorkEntry, error)
	EntriesByWindow(ctx context.Context, windowEndDate string) ([]model.WorkEntry, error)
	GetBlock(ctx context.Context, windowEndDate string) (*model.PaidBlock, error)
}

// Tx is the set of operations available inside a write transaction.
type Tx interface {
	Reader

	InsertEntry(ctx context.Context, e model.WorkEntry) (int64, error)
	UpdateEntry(ctx context.Context, e model.WorkEntry) error
	DeleteEntry(ctx context.Context, id int64) error

	InsertBlock(ctx context.Context, b model.PaidBlock) error
	UpdateBlockTotal(ctx context.Context, windowEndDate string, total decimal.Decimal, at time.Time) error
	UpdateBlockPaid(ctx context.Context, windowEndDate string, paid bool, at time.Time) error
}

// Store is the persistence capability: keyed records, exact-match lookups by
// date and window, and change notifications after every committed write.
type Store interface {
	Reader

	// Update runs fn in a transaction. It commits when fn returns nil and
	// then notifies subscribers of the collections fn wrote to.
	Update(ctx context.Context, fn func(Tx) error) error

	// Dates returns the distinct entry dates in ascending order.
	Dates(ctx context.Context) ([]string, error)
	// WindowKeys returns every window key that has an aggregate or an entry.
	WindowKeys(ctx context.Context) ([]string, error)
	// Blocks returns all window aggregates, latest payday first.
	Blocks(ctx context.Context) ([]model.PaidBlock, error)

	Subscribe(cols ...changes.Collection) *changes.Subscription
	Close() error
}

// BaseDir returns the default data directory (~/.pwt).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".pwt"), nil
}

// DBPath returns the database file inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "pwt.db")
}
