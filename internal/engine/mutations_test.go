package engine_test

import (
	"strconv"
	"testing"
	"time"

	"loadctl/internal/domain"
	"loadctl/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOrder(t *testing.T) (domain.GameProfile, *engine.LoadOrder) {
	t.Helper()
	profile := newProfile(t, domain.G2, domain.MethodTimestamp, "Oblivion.esm")

	base := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	writePlugin(t, profile, "Oblivion.esm", true, nil)
	writePlugin(t, profile, "A.esp", false, []string{"Oblivion.esm"})
	writePlugin(t, profile, "B.esp", false, []string{"Oblivion.esm"})
	touch(t, profile, "Oblivion.esm", base)
	touch(t, profile, "A.esp", base.Add(time.Hour))
	touch(t, profile, "B.esp", base.Add(2*time.Hour))

	lo, err := engine.Load(profile)
	require.NoError(t, err)
	return profile, lo
}

func TestSetLoadOrder_RejectsDuplicate(t *testing.T) {
	profile, lo := setupOrder(t)
	err := engine.SetLoadOrder(profile, lo, []string{"Oblivion.esm", "A.esp", "A.esp"})
	assert.Error(t, err)
}

func TestSetLoadOrder_RejectsNonPartitionedOrder(t *testing.T) {
	profile, lo := setupOrder(t)
	writePlugin(t, profile, "Late.esm", true, []string{"Oblivion.esm"})
	err := engine.SetLoadOrder(profile, lo, []string{"Oblivion.esm", "A.esp", "Late.esm"})
	assert.Error(t, err)
}

func TestSetLoadOrder_AcceptsValidPartitionedOrder(t *testing.T) {
	profile, lo := setupOrder(t)
	err := engine.SetLoadOrder(profile, lo, []string{"Oblivion.esm", "B.esp", "A.esp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Oblivion.esm", "B.esp", "A.esp"}, lo.GetLoadOrder())
}

func TestSetPosition_ClampsMasterToPartitionBoundary(t *testing.T) {
	profile, lo := setupOrder(t)
	err := engine.SetPosition(profile, lo, "Oblivion.esm", 2)
	require.NoError(t, err)
	// A single master cannot move past the non-master boundary: with only
	// non-masters left, the boundary (and so the highest allowed index) is 0.
	assert.Equal(t, 0, lo.GetPosition("Oblivion.esm"))
}

func TestSetPosition_ClampsNonMasterBeforeMasters(t *testing.T) {
	profile, lo := setupOrder(t)
	err := engine.SetPosition(profile, lo, "A.esp", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, lo.GetPosition("A.esp"))
}

func TestActivateDeactivate(t *testing.T) {
	profile, lo := setupOrder(t)

	require.NoError(t, engine.Activate(profile, lo, "A.esp"))
	assert.True(t, lo.Plugins[lo.GetPosition("A.esp")].Active)

	require.NoError(t, engine.Deactivate(profile, lo, "A.esp"))
	assert.False(t, lo.Plugins[lo.GetPosition("A.esp")].Active)
}

func TestDeactivate_MainMasterForbiddenOnTextfile(t *testing.T) {
	profile := newProfile(t, domain.G3, domain.MethodTextfile, "Skyrim.esm")
	writePlugin(t, profile, "Skyrim.esm", true, nil)
	lo, err := engine.Load(profile)
	require.NoError(t, err)

	err = engine.Deactivate(profile, lo, "Skyrim.esm")
	assert.Error(t, err)
}

func TestDeactivate_UpdateEsmForbidden(t *testing.T) {
	profile := newProfile(t, domain.G3, domain.MethodTextfile, "Skyrim.esm")
	writePlugin(t, profile, "Skyrim.esm", true, nil)
	writePlugin(t, profile, "Update.esm", true, []string{"Skyrim.esm"})
	lo, err := engine.Load(profile)
	require.NoError(t, err)

	err = engine.Deactivate(profile, lo, "Update.esm")
	assert.Error(t, err)
}

func TestActivate_RefusesBeyondCap(t *testing.T) {
	profile := newProfile(t, domain.G2, domain.MethodTimestamp, "Oblivion.esm")
	writePlugin(t, profile, "Oblivion.esm", true, nil)
	for i := 0; i < 255; i++ {
		writePlugin(t, profile, pluginName(i), false, []string{"Oblivion.esm"})
	}

	lo, err := engine.Load(profile)
	require.NoError(t, err)

	require.NoError(t, engine.Activate(profile, lo, "Oblivion.esm"))
	for i := 0; i < 254; i++ {
		require.NoError(t, engine.Activate(profile, lo, pluginName(i)))
	}

	err = engine.Activate(profile, lo, pluginName(254))
	assert.Error(t, err)
}

func pluginName(i int) string {
	return "Plugin" + strconv.Itoa(i) + ".esp"
}

func TestUnique_KeepsLastOccurrence(t *testing.T) {
	_, lo := setupOrder(t)
	lo.Plugins = append(lo.Plugins, lo.Plugins[1]) // duplicate "A.esp" at the end
	before := len(lo.Plugins)

	engine.Unique(lo)
	assert.Less(t, len(lo.Plugins), before)
	assert.Equal(t, []string{"Oblivion.esm", "B.esp", "A.esp"}, lo.GetLoadOrder())
}

func TestPartitionMasters_PreservesRelativeOrder(t *testing.T) {
	profile, lo := setupOrder(t)
	writePlugin(t, profile, "LateMaster.esm", true, []string{"Oblivion.esm"})
	lo.Plugins = append(lo.Plugins, domain.NewPlugin("LateMaster.esm"))

	engine.PartitionMasters(profile, lo)

	order := lo.GetLoadOrder()
	masterIdx := -1
	for i, name := range order {
		if name == "LateMaster.esm" {
			masterIdx = i
		}
	}
	require.GreaterOrEqual(t, masterIdx, 0)
	for i := 0; i < masterIdx; i++ {
		assert.NotEqual(t, "A.esp", order[i])
		assert.NotEqual(t, "B.esp", order[i])
	}
	assert.Equal(t, []string{"Oblivion.esm", "LateMaster.esm", "A.esp", "B.esp"}, order)
}

func TestFix_RestoresMainMasterActive(t *testing.T) {
	profile := newProfile(t, domain.G3, domain.MethodTextfile, "Skyrim.esm")
	writePlugin(t, profile, "Skyrim.esm", true, nil)
	lo, err := engine.Load(profile)
	require.NoError(t, err)

	lo.Plugins[0].Active = false
	require.NoError(t, engine.Fix(profile, lo))

	assert.True(t, lo.Plugins[0].Active)
}

func TestFix_DeactivatesActiveMissingEntry(t *testing.T) {
	profile := newProfile(t, domain.G3, domain.MethodTextfile, "Skyrim.esm")
	writePlugin(t, profile, "Skyrim.esm", true, nil)
	writePlugin(t, profile, "A.esp", false, []string{"Skyrim.esm"})
	lo, err := engine.Load(profile)
	require.NoError(t, err)

	require.NoError(t, engine.Activate(profile, lo, "A.esp"))
	assert.True(t, lo.Plugins[lo.GetPosition("A.esp")].Active)

	// A.esp's backing file is removed from disk after activation; Fix must
	// deactivate it rather than leave an active entry pointing at nothing.
	require.NoError(t, removePluginFile(profile, "A.esp"))

	require.NoError(t, engine.Fix(profile, lo))
	assert.False(t, lo.Plugins[lo.GetPosition("A.esp")].Active)
}

func TestCheckValidity_FlagsNonMasterFirst(t *testing.T) {
	profile, lo := setupOrder(t)
	require.Equal(t, "Oblivion.esm", lo.Plugins[0].Name())
	lo.Plugins[0], lo.Plugins[1] = lo.Plugins[1], lo.Plugins[0]

	warnings := engine.CheckValidity(profile, lo)
	assert.Contains(t, warnings, domain.WarnInvalidList)
}

func TestCheckValidity_FlagsMissingFile(t *testing.T) {
	profile, lo := setupOrder(t)
	require.NoError(t, removePluginFile(profile, "A.esp"))

	warnings := engine.CheckValidity(profile, lo)
	assert.Contains(t, warnings, domain.WarnInvalidList)
}

func TestSetLoadOrder_RejectsInvalidPlugin(t *testing.T) {
	profile, lo := setupOrder(t)
	writeNonPlugin(t, profile, "NotAPlugin.esp")

	err := engine.SetLoadOrder(profile, lo, []string{"Oblivion.esm", "NotAPlugin.esp", "A.esp"})
	assert.Error(t, err)
}

func TestSetActivePlugins_ReplacesWholeSet(t *testing.T) {
	profile, lo := setupOrder(t)
	require.NoError(t, engine.Activate(profile, lo, "A.esp"))

	require.NoError(t, engine.SetActivePlugins(profile, lo, []string{"B.esp"}))

	assert.False(t, lo.Plugins[lo.GetPosition("A.esp")].Active)
	assert.True(t, lo.Plugins[lo.GetPosition("B.esp")].Active)
}

func TestSetActivePlugins_RejectsBeyondCap(t *testing.T) {
	profile := newProfile(t, domain.G2, domain.MethodTimestamp, "Oblivion.esm")
	writePlugin(t, profile, "Oblivion.esm", true, nil)
	for i := 0; i < 256; i++ {
		writePlugin(t, profile, pluginName(i), false, []string{"Oblivion.esm"})
	}
	lo, err := engine.Load(profile)
	require.NoError(t, err)

	names := make([]string, 256)
	for i := range names {
		names[i] = pluginName(i)
	}

	err = engine.SetActivePlugins(profile, lo, names)
	assert.Error(t, err)
}

func TestSetActivePlugins_RejectsDuplicate(t *testing.T) {
	profile, lo := setupOrder(t)
	err := engine.SetActivePlugins(profile, lo, []string{"A.esp", "A.esp"})
	assert.Error(t, err)
}

func TestCheckValidity_FlagsDuplicates(t *testing.T) {
	profile, lo := setupOrder(t)
	lo.Plugins = append(lo.Plugins, lo.Plugins[0])

	warnings := engine.CheckValidity(profile, lo)
	assert.Contains(t, warnings, domain.WarnInvalidList)
}
