package ledger_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/paywindow-tracker/internal/changes"
	"github.com/Tiliavir/paywindow-tracker/internal/ledger"
	"github.com/Tiliavir/paywindow-tracker/internal/model"
	"github.com/Tiliavir/paywindow-tracker/internal/storage"
	"github.com/Tiliavir/paywindow-tracker/internal/storage/storagetest"
)

var clock = time.Date(2024, 9, 26, 20, 0, 0, 0, time.UTC)

func newLedger(t *testing.T, s storage.Store) *ledger.Ledger {
	t.Helper()
	return ledger.New(s, ledger.WithClock(func() time.Time { return clock }))
}

func hours(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func add(t *testing.T, l *ledger.Ledger, date, h, window string) int64 {
	t.Helper()
	id, err := l.Add(context.Background(), model.NewEntry{DateISO: date, Hours: hours(h), WindowEndDate: window})
	require.NoError(t, err)
	return id
}

func block(t *testing.T, l *ledger.Ledger, key string) *model.PaidBlock {
	t.Helper()
	b, err := l.Block(context.Background(), key)
	require.NoError(t, err)
	require.NotNil(t, b, "no aggregate for %s", key)
	return b
}

func TestAddCreatesAggregate(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	ctx := context.Background()

	add(t, l, "2024-09-21", "2", "2024-09-27")
	add(t, l, "2024-09-25", "6", "2024-09-27")

	b := block(t, l, "2024-09-27")
	assert.True(t, hours("8").Equal(b.TotalHours), "total = %s", b.TotalHours)
	assert.Equal(t, "2024-10-03", b.PaydayDate)
	assert.False(t, b.IsPaid)
	assert.True(t, clock.Equal(b.UpdatedAt))

	entries, err := l.EntriesByWindow(ctx, "2024-09-27")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, clock.Equal(entries[0].CreatedAt))
}

func TestAddRejectsInvalidEntries(t *testing.T) {
	l := newLedger(t, storagetest.New(t))

	tests := []struct {
		name  string
		entry model.NewEntry
		field string
	}{
		{"zero hours", model.NewEntry{DateISO: "2024-09-21", Hours: hours("0"), WindowEndDate: "2024-09-27"}, "Hours"},
		{"too many hours", model.NewEntry{DateISO: "2024-09-21", Hours: hours("24.5"), WindowEndDate: "2024-09-27"}, "Hours"},
		{"long note", model.NewEntry{DateISO: "2024-09-21", Hours: hours("1"), Note: strings.Repeat("x", 201), WindowEndDate: "2024-09-27"}, "Note"},
		{"missing window", model.NewEntry{DateISO: "2024-09-21", Hours: hours("1")}, "WindowEndDate"},
		{"wrong window", model.NewEntry{DateISO: "2024-09-29", Hours: hours("1"), WindowEndDate: "2024-09-27"}, "WindowEndDate"},
		{"bad date", model.NewEntry{DateISO: "2024-02-30", Hours: hours("1"), WindowEndDate: "2024-09-27"}, "DateISO"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Add(context.Background(), tt.entry)
			var verr *ledger.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	blocks, err := l.PayoutStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestAddAcceptsBoundaryValues(t *testing.T) {
	l := newLedger(t, storagetest.New(t))

	_, err := l.Add(context.Background(), model.NewEntry{
		DateISO:       "2024-09-21",
		Hours:         hours("24"),
		Note:          strings.Repeat("ü", 200),
		WindowEndDate: "2024-09-27",
	})
	require.NoError(t, err)
	assert.True(t, hours("24").Equal(block(t, l, "2024-09-27").TotalHours))
}

func TestUpdateMovesEntryBetweenWindows(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	ctx := context.Background()

	add(t, l, "2024-09-21", "2", "2024-09-27")
	moved := add(t, l, "2024-09-25", "6", "2024-09-27")

	date := "2024-09-29"
	require.NoError(t, l.Update(ctx, moved, model.EntryPatch{DateISO: &date}))

	e, err := l.Entry(ctx, moved)
	require.NoError(t, err)
	assert.Equal(t, "2024-10-06", e.WindowEndDate)

	assert.True(t, hours("2").Equal(block(t, l, "2024-09-27").TotalHours))
	next := block(t, l, "2024-10-06")
	assert.True(t, hours("6").Equal(next.TotalHours))
	assert.Equal(t, "2024-10-12", next.PaydayDate)
}

func TestUpdateWithinWindow(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	ctx := context.Background()

	id := add(t, l, "2024-09-21", "2", "2024-09-27")
	h := hours("4.5")
	note := "late shift"
	require.NoError(t, l.Update(ctx, id, model.EntryPatch{Hours: &h, Note: &note}))

	e, err := l.Entry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "late shift", e.Note)
	assert.Equal(t, "2024-09-21", e.DateISO)
	assert.True(t, hours("4.5").Equal(block(t, l, "2024-09-27").TotalHours))
}

func TestUpdateNotFound(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	h := hours("1")

	err := l.Update(context.Background(), 404, model.EntryPatch{Hours: &h})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	var perr *ledger.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "update", perr.Op)
	assert.Equal(t, "Could not update work entry. Please try again.", err.Error())
}

func TestUpdateRejectsInvalidDate(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	id := add(t, l, "2024-09-21", "2", "2024-09-27")

	date := "not-a-date"
	err := l.Update(context.Background(), id, model.EntryPatch{DateISO: &date})
	var verr *ledger.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "DateISO", verr.Field)
}

func TestDeleteLeavesOrphanAggregate(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	ctx := context.Background()

	id := add(t, l, "2024-09-21", "3", "2024-09-27")
	require.NoError(t, l.SetPaid(ctx, "2024-09-27", true))
	require.NoError(t, l.Delete(ctx, id))

	b := block(t, l, "2024-09-27")
	assert.True(t, b.TotalHours.IsZero(), "total = %s", b.TotalHours)
	assert.True(t, b.IsPaid, "paid flag must survive the delete")

	_, err := l.Entry(ctx, id)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	assert.NoError(t, l.Delete(context.Background(), 77))
}

func TestSetPaid(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	ctx := context.Background()

	add(t, l, "2024-09-21", "3", "2024-09-27")
	require.NoError(t, l.SetPaid(ctx, "2024-09-27", true))
	assert.True(t, block(t, l, "2024-09-27").IsPaid)

	// New entries refresh the total without resetting the flag.
	add(t, l, "2024-09-22", "1", "2024-09-27")
	b := block(t, l, "2024-09-27")
	assert.True(t, b.IsPaid)
	assert.True(t, hours("4").Equal(b.TotalHours))

	require.NoError(t, l.SetPaid(ctx, "2024-09-27", false))
	assert.False(t, block(t, l, "2024-09-27").IsPaid)
}

func TestSetPaidWithoutAggregateIsNoop(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	ctx := context.Background()

	require.NoError(t, l.SetPaid(ctx, "2024-09-27", true))
	b, err := l.Block(ctx, "2024-09-27")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestRefreshIsIdempotent(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	ctx := context.Background()

	add(t, l, "2024-09-21", "3", "2024-09-27")
	add(t, l, "2024-09-29", "4", "2024-10-06")

	before, err := l.PayoutStatus(ctx)
	require.NoError(t, err)

	require.NoError(t, l.Refresh(ctx, "2024-09-27"))
	require.NoError(t, l.Refresh(ctx, "2024-09-27"))
	keys, err := l.RefreshAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-09-27", "2024-10-06"}, keys)

	after, err := l.PayoutStatus(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].WindowEndDate, after[i].WindowEndDate)
		assert.True(t, before[i].TotalHours.Equal(after[i].TotalHours))
		assert.Equal(t, before[i].IsPaid, after[i].IsPaid)
	}
}

func TestRefreshEmptyWindowCreatesZeroAggregate(t *testing.T) {
	l := newLedger(t, storagetest.New(t))

	require.NoError(t, l.Refresh(context.Background(), "2024-10-06"))
	b := block(t, l, "2024-10-06")
	assert.True(t, b.TotalHours.IsZero())
	assert.Equal(t, "2024-10-12", b.PaydayDate)
}

func TestRefreshRejectsUnknownKey(t *testing.T) {
	l := newLedger(t, storagetest.New(t))

	err := l.Refresh(context.Background(), "2024-09-28")
	var rerr *ledger.AggregateRefreshError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "2024-09-28", rerr.WindowEndDate)
}

func TestRefreshAllSkipsStaleKeys(t *testing.T) {
	s := storagetest.New(t)
	l := newLedger(t, s)
	ctx := context.Background()

	add(t, l, "2024-09-21", "3", "2024-09-27")
	// An entry written under an older window rule keeps its old key.
	require.NoError(t, s.Update(ctx, func(tx storage.Tx) error {
		_, err := tx.InsertEntry(ctx, model.WorkEntry{
			DateISO:       "2024-09-28",
			Hours:         hours("2"),
			WindowEndDate: "2024-09-28",
			CreatedAt:     clock,
		})
		return err
	}))

	keys, err := l.RefreshAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-09-27"}, keys)

	b, err := l.Block(ctx, "2024-09-28")
	require.NoError(t, err)
	assert.Nil(t, b, "no aggregate may be created for a stale key")
}

// failingBlocks is a store whose transactions cannot write aggregates.
type failingBlocks struct {
	storage.Store
}

func (f failingBlocks) Update(ctx context.Context, fn func(storage.Tx) error) error {
	return f.Store.Update(ctx, func(tx storage.Tx) error {
		return fn(failingTx{tx})
	})
}

type failingTx struct {
	storage.Tx
}

var errBlocks = errors.New("aggregate write failed")

func (failingTx) InsertBlock(context.Context, model.PaidBlock) error { return errBlocks }

func (failingTx) UpdateBlockTotal(context.Context, string, decimal.Decimal, time.Time) error {
	return errBlocks
}

func TestEntryWriteSurvivesRefreshFailure(t *testing.T) {
	s := storagetest.New(t)
	l := newLedger(t, failingBlocks{s})
	ctx := context.Background()

	id, err := l.Add(ctx, model.NewEntry{DateISO: "2024-09-21", Hours: hours("3"), WindowEndDate: "2024-09-27"})
	require.NoError(t, err)

	e, err := l.Entry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2024-09-21", e.DateISO)

	b, err := l.Block(ctx, "2024-09-27")
	require.NoError(t, err)
	assert.Nil(t, b, "aggregate write was expected to fail")

	// A direct refresh surfaces the failure.
	err = l.Refresh(ctx, "2024-09-27")
	assert.ErrorIs(t, err, errBlocks)

	// Once the store recovers, a refresh repairs the total.
	require.NoError(t, newLedger(t, s).Refresh(ctx, "2024-09-27"))
	assert.True(t, hours("3").Equal(block(t, l, "2024-09-27").TotalHours))
}

func TestQueries(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	ctx := context.Background()

	add(t, l, "2024-09-21", "2", "2024-09-27")
	add(t, l, "2024-09-21", "1.5", "2024-09-27")
	add(t, l, "2024-09-29", "4", "2024-10-06")

	byDate, err := l.EntriesByDate(ctx, "2024-09-21")
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	dates, err := l.DatesWithEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2024-09-21": true, "2024-09-29": true}, dates)

	total, err := l.WindowTotal(ctx, "2024-09-27")
	require.NoError(t, err)
	assert.True(t, hours("3.5").Equal(total))

	status, err := l.PayoutStatus(ctx)
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.Equal(t, "2024-10-06", status[0].WindowEndDate)

	assert.Equal(t, "2024-09-27", l.CurrentWindow().Key)
}

func TestSubscribersSeeMutations(t *testing.T) {
	l := newLedger(t, storagetest.New(t))
	ctx := context.Background()

	sub := l.Subscribe(changes.PaidBlocks)
	defer sub.Close()

	add(t, l, "2024-09-21", "2", "2024-09-27")
	select {
	case ev := <-sub.C:
		assert.True(t, ev.Has(changes.PaidBlocks))
		assert.True(t, ev.Has(changes.WorkEntries))
	default:
		t.Fatal("no notification after add")
	}

	require.NoError(t, l.SetPaid(ctx, "2024-09-27", true))
	select {
	case ev := <-sub.C:
		assert.False(t, ev.Has(changes.WorkEntries))
	default:
		t.Fatal("no notification after toggle")
	}
}
