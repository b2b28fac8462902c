package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show load-order summary for the configured game",
	Long: `Show the plugin count, active count, and current master for --game.

Examples:
  loadctl status --game skyrim`,
	RunE: runStatus,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether the in-memory load order has desynced from disk",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	loadOrder := h.GetLoadOrder()
	active := h.GetActivePlugins()

	cmd.Printf("Game:    %s (%s)\n", gameID, h.Profile.Variant)
	cmd.Printf("Method:  %s\n", h.Profile.Method)
	cmd.Printf("Plugins: %d (%d active)\n", len(loadOrder), len(active))
	if len(loadOrder) > 0 {
		cmd.Printf("Master:  %s\n", loadOrder[0])
	}

	if warnings := h.CheckValidity(); len(warnings) > 0 {
		cmd.Printf("Warnings: %d\n", len(warnings))
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	desynced, err := h.CheckDesync()
	if err != nil {
		return err
	}
	if desynced {
		cmd.Println("Load order has desynced from disk; run 'loadctl status' after a reload.")
		return nil
	}
	cmd.Println("Load order is in sync with disk.")
	return nil
}
