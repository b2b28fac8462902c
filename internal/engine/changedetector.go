package engine

import (
	"os"

	"loadctl/internal/domain"
)

// HasChanged reports whether lo's in-memory load order may be stale
// relative to disk (§4.4). TIMESTAMP profiles are always considered
// possibly stale, since any external process can rewrite a plugin's mtime
// without touching a manifest this package would otherwise notice.
// TEXTFILE profiles are stale when the load-order manifest or the data
// directory's mtime has moved since the last Load/Save, or when lo has
// never been loaded.
func HasChanged(profile domain.GameProfile, lo *LoadOrder) bool {
	if profile.Method == domain.MethodTimestamp {
		return true
	}
	if !lo.loaded {
		return true
	}
	if fi, err := os.Stat(profile.LoadOrderPath); err == nil {
		if !fi.ModTime().Equal(lo.loadOrderMtime) {
			return true
		}
	} else {
		return true
	}
	if fi, err := os.Stat(profile.DataDir); err == nil {
		if !fi.ModTime().Equal(lo.dataDirMtime) {
			return true
		}
	}
	return false
}

// HasChangedActive reports whether the active-plugins manifest may have
// changed since it was last loaded or saved. An empty/never-loaded cache
// is always reported as changed.
func HasChangedActive(profile domain.GameProfile, lo *LoadOrder) bool {
	if !lo.activeLoaded {
		return true
	}
	fi, err := os.Stat(profile.ActivePath)
	if err != nil {
		return true
	}
	return !fi.ModTime().Equal(lo.activeMtime)
}

// checkLoadOrderDesync implements §4.5's handle-creation-time desync check:
// when both the load-order and active-plugins manifests exist, each is read
// independently of the merged in-memory load order, load-order-only entries
// are filtered out of the load-order manifest's reading, and the two
// resulting sequences must then be element-wise identical. Grounded on
// lo_create_handle (original_source/src/api/libloadorder.cpp:100-176), which
// loads LoadOrderFileLO and PluginsFileLO independently, drops plugins from
// LoadOrderFileLO absent from PluginsFileLO, and raises LIBLO_WARN_LO_MISMATCH
// on any remaining difference.
func checkLoadOrderDesync(profile domain.GameProfile) (bool, error) {
	fromLoadOrder, err := readManifestPlugins(profile, profile.LoadOrderPath, false)
	if err != nil {
		return false, err
	}
	fromActive, err := readManifestPlugins(profile, profile.ActivePath, true)
	if err != nil {
		return false, err
	}

	activeKeys := make(map[string]bool, len(fromActive))
	for _, p := range fromActive {
		activeKeys[p.Key()] = true
	}

	filtered := make([]domain.Plugin, 0, len(fromLoadOrder))
	for _, p := range fromLoadOrder {
		if activeKeys[p.Key()] {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) != len(fromActive) {
		return true, nil
	}
	for i := range filtered {
		if !filtered[i].Equal(fromActive[i]) {
			return true, nil
		}
	}
	return false, nil
}
