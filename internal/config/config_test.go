package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"loadctl/internal/config"
	"loadctl/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "headers.db"), cfg.HeaderCachePath)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := "header_cache_path: /tmp/custom-headers.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-headers.db", cfg.HeaderCachePath)
}

func TestLoadGames_Empty(t *testing.T) {
	dir := t.TempDir()
	games, err := config.LoadGames(dir)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestSaveGame_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	game := config.GameConfig{
		Variant:       "G3",
		DataDir:       "/games/skyrim/Data",
		ActivePath:    "/games/skyrim/plugins.txt",
		LoadOrderPath: "/games/skyrim/loadorder.txt",
	}
	require.NoError(t, config.SaveGame(dir, "skyrim", game))

	games, err := config.LoadGames(dir)
	require.NoError(t, err)
	require.Contains(t, games, "skyrim")
	assert.Equal(t, game, games["skyrim"])

	variant, err := games["skyrim"].ToVariant()
	require.NoError(t, err)
	assert.Equal(t, domain.G3, variant)
}

func TestDeleteGame_NotFound(t *testing.T) {
	dir := t.TempDir()
	err := config.DeleteGame(dir, "missing")
	assert.Error(t, err)
}

func TestGameConfig_ToVariant_Unknown(t *testing.T) {
	g := config.GameConfig{Variant: "G99"}
	_, err := g.ToVariant()
	assert.Error(t, err)
}
