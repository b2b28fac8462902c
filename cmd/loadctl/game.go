package main

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"

	"loadctl/internal/config"
	"loadctl/internal/domain"

	"github.com/spf13/cobra"
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Manage configured game installs",
}

var gameAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a game install interactively",
	Long: `Interactively register a game install's variant and file paths.

Example:
  loadctl game add skyrim`,
	Args: cobra.ExactArgs(1),
	RunE: runGameAdd,
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured game installs",
	RunE:  runGameList,
}

var gameRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a configured game install",
	Args:  cobra.ExactArgs(1),
	RunE:  runGameRemove,
}

var gameSetMasterCmd = &cobra.Command{
	Use:   "set-master <plugin>",
	Short: "Reassign the game's main master plugin",
	Long: `Reassign the main master plugin for --game. Refused for TEXTFILE-method
variants, whose main master is fixed; for TIMESTAMP variants the proposed
master must exist and parse as a valid plugin.

Example:
  loadctl game set-master --game morrowind Blank.esm`,
	Args: cobra.ExactArgs(1),
	RunE: runGameSetMaster,
}

func init() {
	rootCmd.AddCommand(gameCmd)
	gameCmd.AddCommand(gameAddCmd)
	gameCmd.AddCommand(gameListCmd)
	gameCmd.AddCommand(gameRemoveCmd)
	gameCmd.AddCommand(gameSetMasterCmd)
}

func runGameAdd(cmd *cobra.Command, args []string) error {
	id := args[0]
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Game variant (G1-G5):")
	cmd.Println("  G1 - Morrowind-era")
	cmd.Println("  G2 - Oblivion-era")
	cmd.Println("  G3 - Skyrim-era")
	cmd.Println("  G4 - Fallout3-era")
	cmd.Println("  G5 - FalloutNV-era")
	cmd.Print("Enter variant: ")
	variant, err := readLine(reader)
	if err != nil {
		return err
	}
	variant = strings.ToUpper(variant)
	if !domain.Variant(variant).Valid() {
		return fmt.Errorf("unknown variant %q", variant)
	}

	cmd.Print("Data directory path: ")
	dataDir, err := readLine(reader)
	if err != nil {
		return err
	}
	if dataDir == "" {
		return fmt.Errorf("data directory is required")
	}

	cmd.Print("Active-plugins manifest path (plugins.txt / Morrowind.ini): ")
	activePath, err := readLine(reader)
	if err != nil {
		return err
	}
	if activePath == "" {
		return fmt.Errorf("active-plugins manifest path is required")
	}

	cmd.Print("Load-order manifest path (loadorder.txt, blank if TIMESTAMP-only): ")
	loadOrderPath, err := readLine(reader)
	if err != nil {
		return err
	}

	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}

	game := config.GameConfig{
		Variant:       variant,
		DataDir:       dataDir,
		ActivePath:    activePath,
		LoadOrderPath: loadOrderPath,
	}
	if err := config.SaveGame(dir, id, game); err != nil {
		return fmt.Errorf("saving game: %w", err)
	}

	cmd.Printf("\nAdded %q (%s)\n", id, variant)
	cmd.Printf("  Data dir:   %s\n", dataDir)
	cmd.Printf("  Active:     %s\n", activePath)
	if loadOrderPath != "" {
		cmd.Printf("  Load order: %s\n", loadOrderPath)
	}
	return nil
}

func runGameList(cmd *cobra.Command, args []string) error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	games, err := config.LoadGames(dir)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		cmd.Println("No games configured. Use 'loadctl game add <id>'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVARIANT\tDATA DIR")
	for id, g := range games {
		fmt.Fprintf(w, "%s\t%s\t%s\n", id, g.Variant, g.DataDir)
	}
	return w.Flush()
}

func runGameRemove(cmd *cobra.Command, args []string) error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	if err := config.DeleteGame(dir, args[0]); err != nil {
		return err
	}
	cmd.Printf("Removed %q\n", args[0])
	return nil
}

func runGameSetMaster(cmd *cobra.Command, args []string) error {
	h, closeFn, err := openHandle()
	if err != nil {
		return err
	}
	defer closeFn()

	code, err := h.SetMasterFile(args[0])
	if err != nil {
		return err
	}
	if code.IsWarning() {
		cmd.Printf("Warning: %s\n", code)
	}
	cmd.Printf("Main master set to %q\n", args[0])
	return nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
