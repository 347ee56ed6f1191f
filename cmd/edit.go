package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/paywindow-tracker/internal/input"
	"github.com/Tiliavir/paywindow-tracker/internal/ledger"
	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

var (
	editDate  string
	editHours string
	editNote  string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the date, hours or note of an entry",
	Long: `Change the date, hours or note of an entry. Moving an entry to a date in
another pay window updates the totals of both windows.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editDate, "date", "", "New date (YYYY-MM-DD, today, yesterday)")
	editCmd.Flags().StringVar(&editHours, "hours", "", "New number of hours")
	editCmd.Flags().StringVar(&editNote, "note", "", "New note; pass an empty string to clear it")
}

func runEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var p input.Patch
	if cmd.Flags().Changed("date") {
		date, err := parseDate(editDate, time.Now())
		if err != nil {
			return err
		}
		p.Date = &date
	}
	if cmd.Flags().Changed("hours") {
		h, err := parseHours(editHours)
		if err != nil {
			return err
		}
		p.Hours = &h
	}
	if cmd.Flags().Changed("note") {
		p.Note = &editNote
	}

	patch, err := input.NewPatch(p)
	if err != nil {
		return err
	}

	a := openApp()
	defer a.Close()

	if err := a.ledger.Update(cmd.Context(), id, patch); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("no entry with id %d", id)
		}
		return fail(err)
	}

	e, err := a.ledger.Entry(cmd.Context(), id)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %d: %s %s (window ending %s)\n",
		e.ID, e.DateISO, timecalc.FormatHours(e.Hours), e.WindowEndDate)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}
