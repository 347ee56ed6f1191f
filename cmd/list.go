package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/paywindow-tracker/internal/model"
	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

var (
	listDate   string
	listWindow string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List work entries",
	Long: `List work entries of one day (--date) or one pay window (--window, any
date inside the window). Without flags the current window is listed.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "Show entries of this day")
	listCmd.Flags().StringVar(&listWindow, "window", "", "Show entries of the window containing this date")
	listCmd.MarkFlagsMutuallyExclusive("date", "window")
}

func runList(cmd *cobra.Command, args []string) error {
	now := time.Now()

	var (
		day string
		w   timecalc.PayWindow
		err error
	)
	switch {
	case listDate != "":
		day, err = parseDate(listDate, now)
	case listWindow != "":
		w, err = resolveWindow(listWindow, now)
	default:
		w, _ = timecalc.Resolve(now)
	}
	if err != nil {
		return err
	}

	a := openApp()
	defer a.Close()

	out := cmd.OutOrStdout()
	var entries []model.WorkEntry
	if day != "" {
		entries, err = a.ledger.EntriesByDate(cmd.Context(), day)
	} else {
		fmt.Fprintf(out, "Window %s (payday %s)\n\n", timecalc.FormatRange(w), timecalc.FormatShort(w.Payday))
		entries, err = a.ledger.EntriesByWindow(cmd.Context(), w.Key)
	}
	if err != nil {
		return fail(err)
	}

	printList(out, entries)
	return nil
}

// printList groups entries by date and prints them with a grand total.
func printList(w io.Writer, entries []model.WorkEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	total := decimal.Zero
	var currentDay string
	for _, e := range entries {
		if e.DateISO != currentDay {
			label := e.DateISO
			if d, err := timecalc.ParseDate(e.DateISO); err == nil {
				label = d.Format("2006-01-02 Mon")
			}
			fmt.Fprintln(w, label)
			currentDay = e.DateISO
		}

		note := ""
		if e.Note != "" {
			note = "  " + e.Note
		}
		fmt.Fprintf(w, "  #%-4d %6s%s\n", e.ID, timecalc.FormatHours(e.Hours), note)
		total = total.Add(e.Hours)
	}
	fmt.Fprintf(w, "Total: %s\n", timecalc.FormatHours(total))
}
