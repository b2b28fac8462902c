package main

import (
	"github.com/spf13/cobra"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Repair the load order and re-save it",
	Long: `Run the repair sequence (reload the active-plugins cache if stale,
deduplicate, partition masters first, force the main master and Update.esm
active, deactivate any active plugin whose file is missing or invalid, trim
the active count to the engine's cap) and persist the result.`,
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	code, err := h.Fix()
	if err != nil {
		return err
	}
	if code.IsWarning() {
		cmd.Printf("Warning: %s\n", code)
	} else {
		cmd.Println("Load order repaired.")
	}
	return nil
}
