package engine_test

import (
	"testing"
	"time"

	"loadctl/internal/domain"
	"loadctl/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Timestamp_SortsMastersFirstThenByTime(t *testing.T) {
	profile := newProfile(t, domain.G2, domain.MethodTimestamp, "Oblivion.esm")

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	writePlugin(t, profile, "Oblivion.esm", true, nil)
	writePlugin(t, profile, "PluginB.esp", false, []string{"Oblivion.esm"})
	writePlugin(t, profile, "PluginA.esp", false, []string{"Oblivion.esm"})
	writePlugin(t, profile, "Extra.esm", true, []string{"Oblivion.esm"})

	touch(t, profile, "Oblivion.esm", base)
	touch(t, profile, "Extra.esm", base.Add(time.Hour))
	touch(t, profile, "PluginB.esp", base.Add(2*time.Hour))
	touch(t, profile, "PluginA.esp", base.Add(3*time.Hour))

	lo, err := engine.Load(profile)
	require.NoError(t, err)

	assert.Equal(t, []string{"Oblivion.esm", "Extra.esm", "PluginB.esp", "PluginA.esp"}, lo.GetLoadOrder())
}

func TestLoad_Textfile_SeedsFromManifestAndForcesMasterFirst(t *testing.T) {
	profile := newProfile(t, domain.G3, domain.MethodTextfile, "Skyrim.esm")

	writePlugin(t, profile, "Skyrim.esm", true, nil)
	writePlugin(t, profile, "Mod.esp", false, []string{"Skyrim.esm"})
	writePlugin(t, profile, "Update.esm", true, []string{"Skyrim.esm"})

	require.NoError(t, writeUTF8LinesForTest(profile.LoadOrderPath, []string{"Mod.esp", "Skyrim.esm"}))

	lo, err := engine.Load(profile)
	require.NoError(t, err)

	order := lo.GetLoadOrder()
	require.NotEmpty(t, order)
	assert.Equal(t, "Skyrim.esm", order[0])
	assert.True(t, lo.Plugins[0].Active)

	// Update.esm is the Update.esm variant's always-active master.
	idx := lo.GetPosition("Update.esm")
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, lo.Plugins[idx].Active)
}

func TestLoad_Textfile_NoManifestSeedsFromMasterFile(t *testing.T) {
	profile := newProfile(t, domain.G3, domain.MethodTextfile, "Skyrim.esm")
	writePlugin(t, profile, "Skyrim.esm", true, nil)

	lo, err := engine.Load(profile)
	require.NoError(t, err)

	assert.Equal(t, []string{"Skyrim.esm"}, lo.GetLoadOrder())
	assert.True(t, lo.Plugins[0].Active)

	// Load should have written the manifest back out since it did not exist.
	assert.True(t, fileExistsForTest(profile.LoadOrderPath))
}

func TestLoad_AdditionalFiles_InsertsMastersAtPartitionBoundary(t *testing.T) {
	profile := newProfile(t, domain.G2, domain.MethodTimestamp, "Oblivion.esm")

	base := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)
	writePlugin(t, profile, "Oblivion.esm", true, nil)
	writePlugin(t, profile, "Plugin.esp", false, []string{"Oblivion.esm"})
	writePlugin(t, profile, "Extra.esm", true, []string{"Oblivion.esm"})
	touch(t, profile, "Oblivion.esm", base)
	touch(t, profile, "Plugin.esp", base.Add(time.Hour))
	touch(t, profile, "Extra.esm", base.Add(2*time.Hour))

	lo, err := engine.Load(profile)
	require.NoError(t, err)

	order := lo.GetLoadOrder()
	require.Len(t, order, 3)
	assert.Equal(t, "Plugin.esp", order[2])
}
