package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/paywindow-tracker/internal/model"
	"github.com/Tiliavir/paywindow-tracker/internal/timecalc"
)

var payoutsFormat string

var payoutsCmd = &cobra.Command{
	Use:   "payouts",
	Short: "Show every pay window with its hours and paid status",
	Args:  cobra.NoArgs,
	RunE:  runPayouts,
}

func init() {
	payoutsCmd.Flags().StringVar(&payoutsFormat, "format", "md", "Output format: md, csv, json")
}

func runPayouts(cmd *cobra.Command, args []string) error {
	switch payoutsFormat {
	case "md", "csv", "json":
	default:
		return fmt.Errorf("unknown format %q (want md, csv or json)", payoutsFormat)
	}

	a := openApp()
	defer a.Close()

	blocks, err := a.ledger.PayoutStatus(cmd.Context())
	if err != nil {
		return fail(err)
	}
	return printPayouts(cmd.OutOrStdout(), blocks, payoutsFormat)
}

type payoutReport struct {
	Payouts     []model.PaidBlock `json:"payouts"`
	PaidHours   decimal.Decimal   `json:"paid_hours"`
	UnpaidHours decimal.Decimal   `json:"unpaid_hours"`
}

// printPayouts writes blocks, latest payday first, in the given format.
func printPayouts(w io.Writer, blocks []model.PaidBlock, format string) error {
	paid, unpaid := decimal.Zero, decimal.Zero
	for _, b := range blocks {
		if b.IsPaid {
			paid = paid.Add(b.TotalHours)
		} else {
			unpaid = unpaid.Add(b.TotalHours)
		}
	}

	switch format {
	case "csv":
		fmt.Fprintln(w, "window_end_date,payday_date,total_hours,is_paid")
		for _, b := range blocks {
			fmt.Fprintf(w, "%s,%s,%s,%t\n",
				csvEscape(b.WindowEndDate), csvEscape(b.PaydayDate), b.TotalHours.String(), b.IsPaid)
		}
	case "json":
		if blocks == nil {
			blocks = []model.PaidBlock{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payoutReport{Payouts: blocks, PaidHours: paid, UnpaidHours: unpaid})
	default: // md
		if len(blocks) == 0 {
			fmt.Fprintln(w, "No pay windows yet.")
			return nil
		}
		sep := strings.Repeat("-", 52)
		fmt.Fprintf(w, "%-12s%-26s%7s  %s\n", "Payday", "Window", "Hours", "Status")
		fmt.Fprintln(w, sep)
		for _, b := range blocks {
			window := b.WindowEndDate
			if pw, err := timecalc.WindowForKey(b.WindowEndDate); err == nil {
				window = timecalc.FormatRange(pw)
			}
			fmt.Fprintf(w, "%-12s%-26s%7s  %s\n", b.PaydayDate, window, timecalc.FormatHours(b.TotalHours), paidLabel(b.IsPaid))
		}
		fmt.Fprintln(w, sep)
		fmt.Fprintf(w, "%-38s%7s\n", "Paid", timecalc.FormatHours(paid))
		fmt.Fprintf(w, "%-38s%7s\n", "Unpaid", timecalc.FormatHours(unpaid))
	}
	return nil
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	// Escape internal double quotes by doubling them.
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
