package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Inspect and change plugin load order",
}

var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plugins in load order",
	RunE:  runOrderList,
}

var orderSetCmd = &cobra.Command{
	Use:   "set <plugin>...",
	Short: "Replace the full load order",
	Long: `Replace the full load order with the given plugin names, in order.

Each plugin may appear at most once, every named plugin must exist and parse
as a valid plugin, and all masters must precede all non-masters. For
TEXTFILE-method games the first entry must be the main master. The list need
not name every installed plugin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOrderSet,
}

var orderMoveCmd = &cobra.Command{
	Use:   "move <plugin> <index>",
	Short: "Move a single plugin to a new position",
	Args:  cobra.ExactArgs(2),
	RunE:  runOrderMove,
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.AddCommand(orderListCmd)
	orderCmd.AddCommand(orderSetCmd)
	orderCmd.AddCommand(orderMoveCmd)
}

func runOrderList(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	for i, name := range h.GetLoadOrder() {
		marker := " "
		if h.IsActive(name) {
			marker = "*"
		}
		cmd.Printf("%3d %s %s\n", i, marker, name)
	}
	return nil
}

func runOrderSet(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	code, err := h.SetLoadOrder(args)
	if err != nil {
		return err
	}
	if code.IsWarning() {
		cmd.Printf("Warning: %s\n", code)
	}
	return nil
}

func runOrderMove(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", args[1], err)
	}

	code, err := h.SetPosition(args[0], index)
	if err != nil {
		return err
	}
	if code.IsWarning() {
		cmd.Printf("Warning: %s\n", code)
	}
	return nil
}
