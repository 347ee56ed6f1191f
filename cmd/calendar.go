package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/paywindow-tracker/internal/ui/calendar"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar [YYYY-MM]",
	Short: "Show a month with the days that have entries",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCalendar,
}

func runCalendar(cmd *cobra.Command, args []string) error {
	month := time.Now()
	if len(args) == 1 {
		m, err := time.Parse("2006-01", args[0])
		if err != nil {
			return fmt.Errorf("invalid month %q, want YYYY-MM", args[0])
		}
		month = m
	}

	a := openApp()
	defer a.Close()

	dates, err := a.ledger.DatesWithEntries(cmd.Context())
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), calendar.Render(month, dates, a.ledger.CurrentWindow()))
	return nil
}
