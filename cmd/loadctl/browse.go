package main

import (
	"loadctl/internal/browse"

	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactively browse and edit the load order",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	return browse.Run(gameID, h)
}
