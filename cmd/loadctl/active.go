package main

import (
	"github.com/spf13/cobra"
)

var activeCmd = &cobra.Command{
	Use:   "active",
	Short: "Inspect and change which plugins are active",
}

var activeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active plugins",
	RunE:  runActiveList,
}

var activateCmd = &cobra.Command{
	Use:   "activate <plugin>",
	Short: "Activate a plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivate,
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <plugin>",
	Short: "Deactivate a plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeactivate,
}

var activeSetCmd = &cobra.Command{
	Use:   "set <plugin>...",
	Short: "Replace the entire active set in one call",
	Long: `Replace the entire active-plugins set: every named plugin becomes active,
every other plugin in the load order becomes inactive. Distinct from
activate/deactivate, which change a single plugin at a time.

Example:
  loadctl active set Skyrim.esm Dawnguard.esm MyMod.esp`,
	RunE: runActiveSet,
}

func init() {
	rootCmd.AddCommand(activeCmd)
	activeCmd.AddCommand(activeListCmd)
	activeCmd.AddCommand(activateCmd)
	activeCmd.AddCommand(deactivateCmd)
	activeCmd.AddCommand(activeSetCmd)
}

func runActiveList(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	for _, name := range h.GetActivePlugins() {
		cmd.Println(name)
	}
	return nil
}

func runActivate(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	code, err := h.Activate(args[0])
	if err != nil {
		return err
	}
	if code.IsWarning() {
		cmd.Printf("Warning: %s\n", code)
	}
	return nil
}

func runDeactivate(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	code, err := h.Deactivate(args[0])
	if err != nil {
		return err
	}
	if code.IsWarning() {
		cmd.Printf("Warning: %s\n", code)
	}
	return nil
}

func runActiveSet(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	code, err := h.SetActivePlugins(args)
	if err != nil {
		return err
	}
	if code.IsWarning() {
		cmd.Printf("Warning: %s\n", code)
	}
	return nil
}
