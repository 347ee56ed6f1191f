package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/paywindow-tracker/internal/changes"
	"github.com/Tiliavir/paywindow-tracker/internal/model"
	"github.com/Tiliavir/paywindow-tracker/internal/storage"
	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

// Entry returns the entry id, or an error matching ErrNotFound.
func (l *Ledger) Entry(ctx context.Context, id int64) (*model.WorkEntry, error) {
	e, err := l.store.GetEntry(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("entry %d: %w", id, ErrNotFound)
	}
	return e, err
}

// EntriesByDate returns the entries recorded on dateISO.
func (l *Ledger) EntriesByDate(ctx context.Context, dateISO string) ([]model.WorkEntry, error) {
	return l.store.EntriesByDate(ctx, dateISO)
}

// EntriesByWindow returns the entries attached to the window windowEndDate.
func (l *Ledger) EntriesByWindow(ctx context.Context, windowEndDate string) ([]model.WorkEntry, error) {
	return l.store.EntriesByWindow(ctx, windowEndDate)
}

// DatesWithEntries returns the set of dates that have at least one entry.
func (l *Ledger) DatesWithEntries(ctx context.Context) (map[string]bool, error) {
	dates, err := l.store.Dates(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set, nil
}

// PayoutStatus returns all window aggregates, latest payday first.
func (l *Ledger) PayoutStatus(ctx context.Context) ([]model.PaidBlock, error) {
	return l.store.Blocks(ctx)
}

// Block returns the aggregate of windowEndDate, or nil when there is none.
func (l *Ledger) Block(ctx context.Context, windowEndDate string) (*model.PaidBlock, error) {
	b, err := l.store.GetBlock(ctx, windowEndDate)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return b, err
}

// CurrentWindow returns the window containing today.
func (l *Ledger) CurrentWindow() timecalc.PayWindow {
	w, _ := timecalc.Resolve(l.now())
	return w
}

// WindowTotal sums the hours of the entries in windowEndDate directly,
// without going through the cached aggregate.
func (l *Ledger) WindowTotal(ctx context.Context, windowEndDate string) (decimal.Decimal, error) {
	entries, err := l.store.EntriesByWindow(ctx, windowEndDate)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Hours)
	}
	return total, nil
}

// Subscribe returns a subscription to committed changes of cols.
func (l *Ledger) Subscribe(cols ...changes.Collection) *changes.Subscription {
	return l.store.Subscribe(cols...)
}
