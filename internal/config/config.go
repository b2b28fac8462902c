// Package config reads and writes loadctl's YAML-backed CLI settings: the
// set of known game installations (games.yaml) and process-wide defaults
// (config.yaml).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"loadctl/internal/domain"

	"gopkg.in/yaml.v3"
)

// Config holds global CLI defaults.
type Config struct {
	HeaderCachePath string `yaml:"header_cache_path"`
}

// Load reads config.yaml from configDir, returning defaults if absent.
func Load(configDir string) (*Config, error) {
	cfg := &Config{
		HeaderCachePath: filepath.Join(configDir, "headers.db"),
	}

	path := filepath.Join(configDir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes configDir/config.yaml.
func (c *Config) Save(configDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	path := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// GameConfig is the YAML representation of one known game installation.
type GameConfig struct {
	Variant       string `yaml:"variant"`
	DataDir       string `yaml:"data_dir"`
	ActivePath    string `yaml:"active_path"`
	LoadOrderPath string `yaml:"load_order_path"`
}

// GamesFile is the top-level games.yaml structure.
type GamesFile struct {
	Games map[string]GameConfig `yaml:"games"`
}

// LoadGames reads every configured game installation from games.yaml.
func LoadGames(configDir string) (map[string]GameConfig, error) {
	path := filepath.Join(configDir, "games.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]GameConfig), nil
		}
		return nil, fmt.Errorf("reading games.yaml: %w", err)
	}

	var file GamesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing games.yaml: %w", err)
	}
	if file.Games == nil {
		file.Games = make(map[string]GameConfig)
	}
	return file.Games, nil
}

// SaveGame adds or updates a named game entry in games.yaml.
func SaveGame(configDir, id string, game GameConfig) error {
	games, err := LoadGames(configDir)
	if err != nil {
		return err
	}
	games[id] = game
	return saveGames(configDir, games)
}

// DeleteGame removes a named entry from games.yaml.
func DeleteGame(configDir, id string) error {
	games, err := LoadGames(configDir)
	if err != nil {
		return err
	}
	if _, ok := games[id]; !ok {
		return domain.ErrGameNotFound
	}
	delete(games, id)
	return saveGames(configDir, games)
}

func saveGames(configDir string, games map[string]GameConfig) error {
	file := GamesFile{Games: games}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("marshaling games: %w", err)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	path := filepath.Join(configDir, "games.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing games.yaml: %w", err)
	}
	return nil
}

// ToVariant resolves a GameConfig's stored variant string to a
// domain.Variant, failing if it does not name one of G1-G5.
func (g GameConfig) ToVariant() (domain.Variant, error) {
	v := domain.Variant(g.Variant)
	if !v.Valid() {
		return "", fmt.Errorf("unknown game variant %q", g.Variant)
	}
	return v, nil
}
