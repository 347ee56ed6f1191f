package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [date...]",
	Short: "Recompute window totals from the stored entries",
	Long: `Recompute the total hours of the pay windows containing the given dates.
Without arguments every window that has entries or a total is recomputed.
Paid status is never changed.`,
	RunE: runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	now := time.Now()

	var keys []string
	for _, arg := range args {
		w, err := resolveWindow(arg, now)
		if err != nil {
			return err
		}
		keys = append(keys, w.Key)
	}

	a := openApp()
	defer a.Close()
	ctx := cmd.Context()

	if len(keys) == 0 {
		done, err := a.ledger.RefreshAll(ctx)
		if err != nil {
			return fail(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recomputed %d windows.\n", len(done))
		return nil
	}

	for _, key := range keys {
		if err := a.ledger.Refresh(ctx, key); err != nil {
			return fail(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recomputed window ending %s.\n", key)
	}
	return nil
}
