package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"loadctl/internal/config"
	"loadctl/internal/domain"
	"loadctl/internal/engine"
	"loadctl/internal/headercache"
	"loadctl/internal/headerfmt"

	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user declines an interactive prompt.
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "0.1.0"

	configDir  string
	gameID     string
	verbose    bool
	jsonOutput bool
	noCache    bool
)

var rootCmd = &cobra.Command{
	Use:   "loadctl",
	Short: "loadctl - plugin load-order engine for G1-G5 game installs",
	Long: `loadctl reads, validates, and repairs plugin load order and active-plugins
state for TIMESTAMP and TEXTFILE-method game installs.

Use subcommands for operations. Run 'loadctl --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/loadctl)")
	rootCmd.PersistentFlags().StringVarP(&gameID, "game", "g", "", "configured game ID to operate on")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print errors in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the on-disk header cache")
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error,
// 2 = user cancelled.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrCancelled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home directory: %w", err)
	}
	return filepath.Join(home, ".config", "loadctl"), nil
}

// requireGame ensures --game was provided.
func requireGame() error {
	if gameID == "" {
		return fmt.Errorf("no game specified; use --game or -g")
	}
	return nil
}

// openHandle resolves the configured game named by --game into a
// GameProfile and opens it as an engine.Handle.
func openHandle() (*engine.Handle, func(), error) {
	if err := requireGame(); err != nil {
		return nil, nil, err
	}

	dir, err := resolveConfigDir()
	if err != nil {
		return nil, nil, err
	}

	games, err := config.LoadGames(dir)
	if err != nil {
		return nil, nil, err
	}
	gameCfg, ok := games[gameID]
	if !ok {
		return nil, nil, fmt.Errorf("game %q is not configured; see 'loadctl game add'", gameID)
	}

	variant, err := gameCfg.ToVariant()
	if err != nil {
		return nil, nil, err
	}

	var cache domain.HeaderCache
	var closeCache func()
	if !noCache {
		cfg, err := config.Load(dir)
		if err != nil {
			return nil, nil, err
		}
		if c, err := headercache.Open(cfg.HeaderCachePath); err == nil {
			cache = c
			closeCache = func() { c.Close() }
		}
	}
	if closeCache == nil {
		closeCache = func() {}
	}

	profile, err := engine.BuildProfile(variant, gameCfg.DataDir, gameCfg.ActivePath, gameCfg.LoadOrderPath, headerfmt.New(), cache)
	if err != nil {
		closeCache()
		return nil, nil, err
	}

	h, err := engine.Open(profile)
	if err != nil {
		closeCache()
		return nil, nil, err
	}
	return h, closeCache, nil
}
