package cmd

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/paywindow-tracker/internal/ui/board"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live payout board; toggle paid status with space",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.Close()

	poll := time.Duration(a.cfg.Watch.PollIntervalSec) * time.Second
	m := board.New(a.ledger, poll)
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
		a.log.Error().Err(err).Msg("payout board failed")
		return &exitError{code: 2, err: err}
	}
	return nil
}
