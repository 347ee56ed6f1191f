package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/paywindow-tracker/internal/ledger"
	"github.com/Tiliavir/paywindow-tracker/internal/model"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 9, 21, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		input string
		want  string
	}{
		{"2024-09-25", "2024-09-25"},
		{" 2024-09-25 ", "2024-09-25"},
		{"today", "2024-09-21"},
		{"Yesterday", "2024-09-20"},
		{"tomorrow", "2024-09-22"},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.input, now)
		if err != nil {
			t.Errorf("parseDate(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDate(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	for _, bad := range []string{"", "2024-02-30", "21.09.2024", "someday"} {
		_, err := parseDate(bad, now)
		var verr *ledger.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("parseDate(%q) error = %v, want ValidationError", bad, err)
		}
	}
}

func TestResolveWindow(t *testing.T) {
	w, err := resolveWindow("2024-09-29", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if w.Key != "2024-10-06" {
		t.Errorf("key = %s, want 2024-10-06", w.Key)
	}
}

func TestParseIDAndHours(t *testing.T) {
	if id, err := parseID("12"); err != nil || id != 12 {
		t.Errorf("parseID(12) = %d, %v", id, err)
	}
	for _, bad := range []string{"0", "-3", "x"} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("parseID(%q) succeeded", bad)
		}
	}
	if h, err := parseHours("7.5"); err != nil || h != 7.5 {
		t.Errorf("parseHours(7.5) = %v, %v", h, err)
	}
	if _, err := parseHours("seven"); err == nil {
		t.Error("parseHours(seven) succeeded")
	}
}

func TestPrintList(t *testing.T) {
	entries := []model.WorkEntry{
		{ID: 1, DateISO: "2024-09-21", Hours: decimal.NewFromInt(3), Note: "inventory"},
		{ID: 4, DateISO: "2024-09-21", Hours: decimal.RequireFromString("1.5")},
		{ID: 2, DateISO: "2024-09-25", Hours: decimal.NewFromInt(5)},
	}
	var buf bytes.Buffer
	printList(&buf, entries)
	out := buf.String()

	if strings.Count(out, "2024-09-21 Sat") != 1 {
		t.Errorf("expected one header for 2024-09-21:\n%s", out)
	}
	if !strings.Contains(out, "2024-09-25 Wed") {
		t.Errorf("missing header for 2024-09-25:\n%s", out)
	}
	if !strings.Contains(out, "inventory") {
		t.Errorf("missing note:\n%s", out)
	}
	if !strings.HasSuffix(out, "Total: 9.5h\n") {
		t.Errorf("missing total:\n%s", out)
	}

	buf.Reset()
	printList(&buf, nil)
	if buf.String() != "No entries found.\n" {
		t.Errorf("empty list = %q", buf.String())
	}
}

func TestDaysUntil(t *testing.T) {
	today := time.Date(2024, 9, 28, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		day  time.Time
		want string
	}{
		{today, "today"},
		{today.AddDate(0, 0, 1), "tomorrow"},
		{today.Add(18 * time.Hour), "today"},
		{today.AddDate(0, 0, 5), "in 5 days"},
		{today.AddDate(0, 0, -1), "yesterday"},
		{today.AddDate(0, 0, -3), "3 days ago"},
	}
	for _, tt := range tests {
		if got := daysUntil(today, tt.day); got != tt.want {
			t.Errorf("daysUntil(%s) = %q, want %q", tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestFail(t *testing.T) {
	verr := &ledger.ValidationError{Field: "Hours", Message: "Please enter valid hours between 0 and 24"}
	if got := fail(verr); got != error(verr) {
		t.Errorf("fail(validation) = %v, want the validation error itself", got)
	}
	if code := exitCode(fail(verr)); code != 1 {
		t.Errorf("exitCode(fail(validation)) = %d, want 1", code)
	}

	storeErr := &ledger.PersistenceError{Op: "save", Err: errors.New("disk I/O error")}
	got := fail(storeErr)
	if got == nil {
		t.Fatal("fail(storage) = nil, want an error")
	}
	if code := exitCode(got); code != 2 {
		t.Errorf("exitCode(fail(storage)) = %d, want 2", code)
	}
	var perr *ledger.PersistenceError
	if !errors.As(got, &perr) {
		t.Errorf("fail(storage) = %v, want it to wrap the persistence error", got)
	}
	if got.Error() != storeErr.Error() {
		t.Errorf("fail(storage).Error() = %q, want %q", got.Error(), storeErr.Error())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New("unknown flag: --bogus"), 1},
		{&exitError{code: 2, err: errors.New("database is locked")}, 2},
		{fmt.Errorf("watch: %w", &exitError{code: 2, err: errors.New("tty closed")}), 2},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
