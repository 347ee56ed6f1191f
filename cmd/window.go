package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

var windowCmd = &cobra.Command{
	Use:   "window [date]",
	Short: "Show the pay window of a date (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWindow,
}

func runWindow(cmd *cobra.Command, args []string) error {
	now := time.Now()
	arg := "today"
	if len(args) == 1 {
		arg = args[0]
	}
	w, err := resolveWindow(arg, now)
	if err != nil {
		return err
	}

	a := openApp()
	defer a.Close()

	total, err := a.ledger.WindowTotal(cmd.Context(), w.Key)
	if err != nil {
		return fail(err)
	}
	b, err := a.ledger.Block(cmd.Context(), w.Key)
	if err != nil {
		return fail(err)
	}

	status := "no entries"
	if b != nil {
		status = paidLabel(b.IsPaid)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Window:   %s\n", timecalc.FormatRange(w))
	fmt.Fprintf(out, "Key:      %s\n", w.Key)
	fmt.Fprintf(out, "Payday:   %s\n", timecalc.FormatDate(w.Payday))
	fmt.Fprintf(out, "Hours:    %s (%s)\n", timecalc.FormatHours(total), status)
	fmt.Fprintf(out, "Previous: %s\n", w.Prev().Key)
	fmt.Fprintf(out, "Next:     %s\n", w.Next().Key)
	return nil
}

func paidLabel(paid bool) string {
	if paid {
		return "paid"
	}
	return "unpaid"
}
