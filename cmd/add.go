package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/paywindow-tracker/internal/input"
	"github.com/Tiliavir/paywindow-tracker/internal/ledger"
	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

var addNote string

var addCmd = &cobra.Command{
	Use:   "add <date> <hours>",
	Short: "Record hours worked on a date",
	Long: `Record hours worked on a date. <date> is YYYY-MM-DD, today or yesterday;
<hours> is a number in (0, 24], e.g. 7.5.`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addNote, "note", "", "Optional note (max 200 characters)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	date, err := parseDate(args[0], time.Now())
	if err != nil {
		return err
	}
	hours, err := parseHours(args[1])
	if err != nil {
		return err
	}

	e, err := input.NewEntry(input.Entry{Date: date, Hours: hours, Note: addNote})
	if err != nil {
		return err
	}

	a := openApp()
	defer a.Close()

	id, err := a.ledger.Add(cmd.Context(), e)
	if err != nil {
		return fail(err)
	}

	w, _ := timecalc.ResolveISO(e.DateISO)
	fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d: %s %s (window %s, payday %s)\n",
		id, e.DateISO, timecalc.FormatHours(e.Hours), timecalc.FormatRange(w), timecalc.FormatShort(w.Payday))
	return nil
}

func parseHours(s string) (float64, error) {
	h, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ledger.ValidationError{Field: "Hours", Message: fmt.Sprintf("Please enter valid hours between 0 and %d", input.MaxHours)}
	}
	return h, nil
}
