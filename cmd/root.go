package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pwt",
	Short: "Pay Window Tracker – log hours and follow your paydays",
	Long: `pwt records hours worked per calendar day and groups them into fixed
nine-day pay windows. Each window is paid six days after it ends; pwt keeps
the total of every window and whether it has been paid.
All data is stored locally in ~/.pwt/.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.pwt/config.yaml)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(windowCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(payoutsCmd)
	rootCmd.AddCommand(paidCmd)
	rootCmd.AddCommand(unpaidCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(watchCmd)
}
