package timecalc

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar-date format used for entry dates and
// window keys.
const DateLayout = "2006-01-02"

// Pay window rule. Windows are WindowLengthDays long, the first one starting
// on AnchorDate, and tile the calendar in both directions from there.
const (
	anchorISO        = "2024-09-19" // a Thursday
	WindowLengthDays = 9
	PaydayOffsetDays = 6
)

const secondsPerDay = 24 * 60 * 60

// AnchorDate is the first day of the reference window.
var AnchorDate = mustParseDate(anchorISO)

// PayWindow describes one pay window. All dates are UTC midnights.
type PayWindow struct {
	Start  time.Time
	End    time.Time
	Payday time.Time
	// Key is End formatted with DateLayout; it identifies the window.
	Key string
}

// Resolve returns the pay window containing date. Only the calendar date of
// date (in its own location) is considered. The zero time has no window.
func Resolve(date time.Time) (PayWindow, bool) {
	if date.IsZero() {
		return PayWindow{}, false
	}
	d := CivilDate(date)
	days := (d.Unix() - AnchorDate.Unix()) / secondsPerDay
	idx := floorDiv(days, WindowLengthDays)
	return windowStartingAt(AnchorDate.AddDate(0, 0, int(idx*WindowLengthDays))), true
}

// ResolveISO parses s as a YYYY-MM-DD date and resolves its window. Empty or
// impossible dates (e.g. 2024-02-30) have no window.
func ResolveISO(s string) (PayWindow, bool) {
	d, err := ParseDate(s)
	if err != nil {
		return PayWindow{}, false
	}
	return Resolve(d)
}

// WindowForKey returns the window identified by key. It fails when key is not
// the end date of a window.
func WindowForKey(key string) (PayWindow, error) {
	w, ok := ResolveISO(key)
	if !ok {
		return PayWindow{}, fmt.Errorf("invalid window key %q", key)
	}
	if w.Key != key {
		return PayWindow{}, fmt.Errorf("%s is not the last day of a pay window (did you mean %s?)", key, w.Key)
	}
	return w, nil
}

// PaydayFor returns the payday for a window ending on end.
func PaydayFor(end time.Time) time.Time {
	return CivilDate(end).AddDate(0, 0, PaydayOffsetDays)
}

// PaydayForKey returns the payday, formatted with DateLayout, for the window
// identified by key. Keys that are not the end of a window are rejected.
func PaydayForKey(key string) (string, error) {
	w, err := WindowForKey(key)
	if err != nil {
		return "", err
	}
	return FormatDate(w.Payday), nil
}

// Contains reports whether the calendar date of t lies inside w.
func (w PayWindow) Contains(t time.Time) bool {
	d := CivilDate(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Next returns the window immediately after w.
func (w PayWindow) Next() PayWindow {
	return windowStartingAt(w.Start.AddDate(0, 0, WindowLengthDays))
}

// Prev returns the window immediately before w.
func (w PayWindow) Prev() PayWindow {
	return windowStartingAt(w.Start.AddDate(0, 0, -WindowLengthDays))
}

func windowStartingAt(start time.Time) PayWindow {
	end := start.AddDate(0, 0, WindowLengthDays-1)
	return PayWindow{
		Start:  start,
		End:    end,
		Payday: PaydayFor(end),
		Key:    FormatDate(end),
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// CivilDate returns UTC midnight of t's calendar date in t's location.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate formats t's calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatShort formats a date like "Thu 09/19".
func FormatShort(t time.Time) string {
	return t.Format("Mon 01/02")
}

// FormatRange formats a window like "Thu 09/19 → Fri 09/27".
func FormatRange(w PayWindow) string {
	return FormatShort(w.Start) + " → " + FormatShort(w.End)
}

// FormatHours formats an hour total with one decimal, e.g. "8.0h".
func FormatHours(h decimal.Decimal) string {
	return h.StringFixed(1) + "h"
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MonthGrid returns the weeks (Sunday to Saturday) covering the month of t,
// padded with days from the neighbouring months.
func MonthGrid(t time.Time) [][]time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, 6-int(last.Weekday()))

	var weeks [][]time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 7) {
		week := make([]time.Time, 7)
		for i := range week {
			week[i] = d.AddDate(0, 0, i)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

func mustParseDate(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
