package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/paywindow-tracker/internal/ledger"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an entry",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	a := openApp()
	defer a.Close()

	_, err = a.ledger.Entry(cmd.Context(), id)
	if errors.Is(err, ledger.ErrNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No entry with id %d.\n", id)
		return nil
	}
	if err != nil {
		return fail(err)
	}

	if err := a.ledger.Delete(cmd.Context(), id); err != nil {
		return fail(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d.\n", id)
	return nil
}
