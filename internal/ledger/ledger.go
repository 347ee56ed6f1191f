// Package ledger records work entries and keeps the per-window aggregates
// (total hours, paid flag) consistent with them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Tiliavir/paywindow-tracker/internal/model"
	"github.com/Tiliavir/paywindow-tracker/internal/storage"
	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

const (
	maxHours      = 24
	maxNoteLength = 200
)

// Ledger is the entry point for all entry and aggregate mutations.
type Ledger struct {
	store storage.Store
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used for failures and mutations.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns a Ledger writing to store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		log:   zerolog.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add stores a new entry and refreshes the total of its window. It returns
// the ID assigned by the store.
func (l *Ledger) Add(ctx context.Context, e model.NewEntry) (int64, error) {
	if err := checkHours(e.Hours); err != nil {
		return 0, err
	}
	if err := checkNote(e.Note); err != nil {
		return 0, err
	}
	if err := checkWindowKey(e.DateISO, e.WindowEndDate); err != nil {
		return 0, err
	}

	entry := model.WorkEntry{
		DateISO:       e.DateISO,
		Hours:         e.Hours,
		Note:          e.Note,
		WindowEndDate: e.WindowEndDate,
		CreatedAt:     l.now(),
	}

	var id int64
	err := l.store.Update(ctx, func(tx storage.Tx) error {
		var err error
		id, err = tx.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		l.refreshQuietly(ctx, tx, entry.WindowEndDate)
		return nil
	})
	if err != nil {
		l.log.Error().Err(err).Str("date", e.DateISO).Msg("failed to add work entry")
		return 0, &PersistenceError{Op: "save", Err: err}
	}

	l.log.Debug().Int64("id", id).Str("date", e.DateISO).Str("window", e.WindowEndDate).
		Str("hours", e.Hours.String()).Msg("work entry added")
	return id, nil
}

// Update applies p to the entry id. Changing the date moves the entry to the
// window of the new date; both the old and the new window are refreshed.
func (l *Ledger) Update(ctx context.Context, id int64, p model.EntryPatch) error {
	var newWindow string
	if p.DateISO != nil {
		w, ok := timecalc.ResolveISO(*p.DateISO)
		if !ok {
			return &ValidationError{Field: "DateISO", Message: "Please select a valid date"}
		}
		newWindow = w.Key
	}
	if p.Hours != nil {
		if err := checkHours(*p.Hours); err != nil {
			return err
		}
	}
	if p.Note != nil {
		if err := checkNote(*p.Note); err != nil {
			return err
		}
	}

	var oldKey, newKey string
	err := l.store.Update(ctx, func(tx storage.Tx) error {
		e, err := tx.GetEntry(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("entry %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}

		oldKey = e.WindowEndDate
		if p.DateISO != nil {
			e.DateISO = *p.DateISO
			e.WindowEndDate = newWindow
		}
		if p.Hours != nil {
			e.Hours = *p.Hours
		}
		if p.Note != nil {
			e.Note = *p.Note
		}
		newKey = e.WindowEndDate

		if err := tx.UpdateEntry(ctx, *e); err != nil {
			return err
		}
		l.refreshQuietly(ctx, tx, oldKey)
		if newKey != oldKey {
			l.refreshQuietly(ctx, tx, newKey)
		}
		return nil
	})
	if err != nil {
		l.log.Error().Err(err).Int64("id", id).Msg("failed to update work entry")
		return &PersistenceError{Op: "update", Err: err}
	}

	l.log.Debug().Int64("id", id).Str("from_window", oldKey).Str("to_window", newKey).
		Msg("work entry updated")
	return nil
}

// Delete removes the entry id and refreshes its window. Deleting an entry
// that does not exist does nothing.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	err := l.store.Update(ctx, func(tx storage.Tx) error {
		e, err := tx.GetEntry(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.DeleteEntry(ctx, id); err != nil {
			return err
		}
		l.refreshQuietly(ctx, tx, e.WindowEndDate)
		return nil
	})
	if err != nil {
		l.log.Error().Err(err).Int64("id", id).Msg("failed to delete work entry")
		return &PersistenceError{Op: "delete", Err: err}
	}
	return nil
}

// Refresh recomputes the aggregate of the window windowEndDate. Calling it
// repeatedly without entry changes leaves the aggregate as it is, apart from
// its timestamp.
func (l *Ledger) Refresh(ctx context.Context, windowEndDate string) error {
	err := l.store.Update(ctx, func(tx storage.Tx) error {
		return l.refresh(ctx, tx, windowEndDate)
	})
	if err != nil {
		return &AggregateRefreshError{WindowEndDate: windowEndDate, Err: err}
	}
	return nil
}

// RefreshAll recomputes every window that has an aggregate or an entry and
// returns the keys it refreshed. Stored keys that are not window ends under
// the current rule are skipped.
func (l *Ledger) RefreshAll(ctx context.Context) ([]string, error) {
	keys, err := l.store.WindowKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing windows: %w", err)
	}
	var done []string
	for _, key := range keys {
		if _, err := timecalc.WindowForKey(key); err != nil {
			l.log.Warn().Err(err).Str("window", key).Msg("skipping stale window key")
			continue
		}
		if err := l.Refresh(ctx, key); err != nil {
			return done, err
		}
		done = append(done, key)
	}
	return done, nil
}

// SetPaid marks the window windowEndDate as paid or unpaid. Windows without
// an aggregate are left alone.
func (l *Ledger) SetPaid(ctx context.Context, windowEndDate string, paid bool) error {
	err := l.store.Update(ctx, func(tx storage.Tx) error {
		_, err := tx.GetBlock(ctx, windowEndDate)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.UpdateBlockPaid(ctx, windowEndDate, paid, l.now())
	})
	if err != nil {
		l.log.Error().Err(err).Str("window", windowEndDate).Bool("paid", paid).
			Msg("failed to toggle payout status")
		return &ToggleError{WindowEndDate: windowEndDate, Err: err}
	}
	return nil
}

// refreshQuietly refreshes a window as part of an entry mutation. A failure
// is logged and does not fail the mutation.
func (l *Ledger) refreshQuietly(ctx context.Context, tx storage.Tx, windowEndDate string) {
	if err := l.refresh(ctx, tx, windowEndDate); err != nil {
		rerr := &AggregateRefreshError{WindowEndDate: windowEndDate, Err: err}
		l.log.Warn().Err(rerr).Str("window", windowEndDate).Msg("failed to update window total hours")
	}
}

func (l *Ledger) refresh(ctx context.Context, tx storage.Tx, windowEndDate string) error {
	entries, err := tx.EntriesByWindow(ctx, windowEndDate)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Hours)
	}

	now := l.now()
	_, err = tx.GetBlock(ctx, windowEndDate)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		payday, err := timecalc.PaydayForKey(windowEndDate)
		if err != nil {
			return err
		}
		return tx.InsertBlock(ctx, model.PaidBlock{
			WindowEndDate: windowEndDate,
			IsPaid:        false,
			PaydayDate:    payday,
			TotalHours:    total,
			UpdatedAt:     now,
		})
	case err != nil:
		return err
	}
	return tx.UpdateBlockTotal(ctx, windowEndDate, total, now)
}

func checkHours(h decimal.Decimal) error {
	if !h.IsPositive() || h.GreaterThan(decimal.NewFromInt(maxHours)) {
		return &ValidationError{
			Field:   "Hours",
			Message: fmt.Sprintf("Please enter valid hours between 0 and %d", maxHours),
		}
	}
	return nil
}

func checkNote(note string) error {
	if utf8.RuneCountInString(note) > maxNoteLength {
		return &ValidationError{
			Field:   "Note",
			Message: fmt.Sprintf("Note must be %d characters or less", maxNoteLength),
		}
	}
	return nil
}

// checkWindowKey enforces that an entry carries the key of the window its
// date resolves to.
func checkWindowKey(dateISO, windowEndDate string) error {
	if windowEndDate == "" {
		return &ValidationError{Field: "WindowEndDate", Message: "Entry has no pay window"}
	}
	w, ok := timecalc.ResolveISO(dateISO)
	if !ok {
		return &ValidationError{Field: "DateISO", Message: "Please select a valid date"}
	}
	if w.Key != windowEndDate {
		return &ValidationError{
			Field:   "WindowEndDate",
			Message: fmt.Sprintf("Date %s belongs to the window ending %s, not %s", dateISO, w.Key, windowEndDate),
		}
	}
	return nil
}
