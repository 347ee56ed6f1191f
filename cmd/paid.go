package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

var paidCmd = &cobra.Command{
	Use:   "paid <date>",
	Short: "Mark the pay window containing <date> as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPaid(cmd, args[0], true)
	},
}

var unpaidCmd = &cobra.Command{
	Use:   "unpaid <date>",
	Short: "Mark the pay window containing <date> as unpaid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPaid(cmd, args[0], false)
	},
}

func runSetPaid(cmd *cobra.Command, date string, paid bool) error {
	w, err := resolveWindow(date, time.Now())
	if err != nil {
		return err
	}

	a := openApp()
	defer a.Close()
	ctx := cmd.Context()

	b, err := a.ledger.Block(ctx, w.Key)
	if err != nil {
		return fail(err)
	}
	out := cmd.OutOrStdout()
	if b == nil {
		fmt.Fprintf(out, "No hours recorded in window %s; nothing to mark.\n", timecalc.FormatRange(w))
		return nil
	}

	if err := a.ledger.SetPaid(ctx, w.Key, paid); err != nil {
		return fail(err)
	}
	fmt.Fprintf(out, "Window %s (%s, payday %s) marked %s.\n",
		timecalc.FormatRange(w), timecalc.FormatHours(b.TotalHours), b.PaydayDate, paidLabel(paid))
	return nil
}
