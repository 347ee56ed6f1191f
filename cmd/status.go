package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current pay window and today's hours",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()

	a := openApp()
	defer a.Close()
	ctx := cmd.Context()

	w := a.ledger.CurrentWindow()
	total, err := a.ledger.WindowTotal(ctx, w.Key)
	if err != nil {
		return fail(err)
	}

	today, err := a.ledger.EntriesByDate(ctx, timecalc.FormatDate(timecalc.CivilDate(now)))
	if err != nil {
		return fail(err)
	}
	todayTotal := decimal.Zero
	for _, e := range today {
		todayTotal = todayTotal.Add(e.Hours)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Current window:")
	fmt.Fprintf(out, "  Dates: %s\n", timecalc.FormatRange(w))
	fmt.Fprintf(out, "  Hours: %s\n", timecalc.FormatHours(total))
	fmt.Fprintf(out, "  Payday: %s (%s)\n", timecalc.FormatShort(w.Payday), daysUntil(timecalc.CivilDate(now), w.Payday))
	fmt.Fprintf(out, "Today: %s logged.\n", timecalc.FormatHours(todayTotal))

	// Unpaid windows whose payday has passed.
	blocks, err := a.ledger.PayoutStatus(ctx)
	if err != nil {
		return fail(err)
	}
	for _, b := range blocks {
		payday, err := timecalc.ParseDate(b.PaydayDate)
		if err != nil || payday.After(timecalc.CivilDate(now)) || b.IsPaid || b.TotalHours.IsZero() {
			continue
		}
		fmt.Fprintf(out, "Overdue: window ending %s (%s) was due %s.\n",
			b.WindowEndDate, timecalc.FormatHours(b.TotalHours), b.PaydayDate)
	}
	return nil
}

// daysUntil describes the distance from today to day in whole days.
func daysUntil(today, day time.Time) string {
	if timecalc.SameDay(today, day) {
		return "today"
	}
	n := int(day.Sub(today).Hours() / 24)
	switch {
	case n == 1:
		return "tomorrow"
	case n > 1:
		return fmt.Sprintf("in %d days", n)
	case n == -1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", -n)
	}
}
