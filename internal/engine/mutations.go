package engine

import (
	"fmt"

	"loadctl/internal/domain"
)

// maxActivePlugins is the hard cap on simultaneously active plugins (§4.3.3,
// invariant 5): activation must be refused once the active set would exceed
// this count.
const maxActivePlugins = 255

// getMasterPartitionPoint returns the index of the first non-master plugin,
// assuming plugins is already partitioned (masters first) — the invariant
// every mutation in this file maintains. Uses the no-throw master test: an
// unreadable header is treated as "not a master" rather than aborting the
// scan, matching the comparator's tolerance of missing/invalid files.
func getMasterPartitionPoint(profile domain.GameProfile, plugins []domain.Plugin) int {
	i := 0
	for i < len(plugins) && IsMasterNoThrow(profile, plugins[i]) {
		i++
	}
	return i
}

// isPartitioned reports whether plugins has all masters before all
// non-masters.
func isPartitioned(profile domain.GameProfile, plugins []domain.Plugin) bool {
	seenNonMaster := false
	for _, p := range plugins {
		if IsMasterNoThrow(profile, p) {
			if seenNonMaster {
				return false
			}
		} else {
			seenNonMaster = true
		}
	}
	return true
}

// SetLoadOrder replaces lo's full ordering with names, validating that the
// result contains no duplicates and keeps all masters before all
// non-masters (§4.3.4). For TEXTFILE profiles, names[0] must name the main
// master, and it is activated as a side effect (the main master is always
// active, invariant 3).
func SetLoadOrder(profile domain.GameProfile, lo *LoadOrder, names []string) error {
	seen := make(map[string]bool, len(names))
	newPlugins := make([]domain.Plugin, 0, len(names))
	for _, name := range names {
		p := domain.NewPlugin(name)
		if seen[p.Key()] {
			return domain.NewOpError(domain.ErrInvalidArgs, fmt.Sprintf("duplicate plugin %q", p.Name()), nil)
		}
		seen[p.Key()] = true
		if !Exists(profile, p) {
			return domain.NewOpError(domain.ErrFileNotFound, fmt.Sprintf("%q not found", p.Name()), nil)
		}
		if !IsValid(profile, p) {
			return domain.NewOpError(domain.ErrInvalidArgs, fmt.Sprintf("%q is not a valid plugin file", p.Name()), nil)
		}
		newPlugins = append(newPlugins, p)
	}

	if !isPartitioned(profile, newPlugins) {
		return domain.NewOpError(domain.ErrInvalidArgs, "load order is not partitioned: a master appears after a non-master", nil)
	}

	if profile.Method == domain.MethodTextfile {
		if len(newPlugins) == 0 || !newPlugins[0].EqualName(profile.MasterFile) {
			return domain.NewOpError(domain.ErrInvalidArgs, "first entry must be the game's main master", nil)
		}
	}

	active := make(map[string]bool)
	for _, p := range lo.Plugins {
		if p.Active {
			active[p.Key()] = true
		}
	}
	for i := range newPlugins {
		if active[newPlugins[i].Key()] {
			newPlugins[i].Active = true
		}
	}
	if profile.Method == domain.MethodTextfile {
		newPlugins[0].Active = true
	}

	lo.Plugins = newPlugins
	return nil
}

// SetPosition moves name to index, clamping index to the boundary between
// masters and non-masters appropriate to name's own master-ness, and to the
// list's length. Grounded on setPosition's re-derivation of the partition
// point from the current (post-removal) state on every call.
func SetPosition(profile domain.GameProfile, lo *LoadOrder, name string, index int) error {
	p := domain.NewPlugin(name)
	if !Exists(profile, p) {
		return domain.NewOpError(domain.ErrFileNotFound, fmt.Sprintf("%q not found", p.Name()), nil)
	}
	isMaster, err := IsMaster(profile, p)
	if err != nil {
		return err
	}

	active := false
	if idx := indexOf(lo.Plugins, p.Name()); idx >= 0 {
		active = lo.Plugins[idx].Active
	}
	remaining := removeByName(lo.Plugins, p.Name())

	partition := getMasterPartitionPoint(profile, remaining)
	if isMaster && index > partition {
		index = partition
	}
	if !isMaster && index < partition {
		index = partition
	}
	if index < 0 {
		index = 0
	}
	if index > len(remaining) {
		index = len(remaining)
	}

	p.Active = active
	lo.Plugins = insertAt(remaining, index, p)
	return nil
}

// countActivePlugins returns how many plugins in lo are currently active.
func countActivePlugins(lo *LoadOrder) int {
	n := 0
	for _, p := range lo.Plugins {
		if p.Active {
			n++
		}
	}
	return n
}

// Activate marks name active, inserting it into the load order first if it
// is not already present (masters at the partition boundary, non-masters
// appended), subject to the 255-active cap (invariant 5).
func Activate(profile domain.GameProfile, lo *LoadOrder, name string) error {
	p := domain.NewPlugin(name)
	if !Exists(profile, p) {
		return domain.NewOpError(domain.ErrFileNotFound, fmt.Sprintf("%q not found", p.Name()), nil)
	}

	if idx := indexOf(lo.Plugins, p.Name()); idx >= 0 {
		if !lo.Plugins[idx].Active && countActivePlugins(lo) >= maxActivePlugins {
			return domain.NewOpError(domain.ErrInvalidArgs, fmt.Sprintf("cannot activate more than %d plugins", maxActivePlugins), nil)
		}
		lo.Plugins[idx].Active = true
		return nil
	}

	if countActivePlugins(lo) >= maxActivePlugins {
		return domain.NewOpError(domain.ErrInvalidArgs, fmt.Sprintf("cannot activate more than %d plugins", maxActivePlugins), nil)
	}

	isMaster, err := IsMaster(profile, p)
	if err != nil {
		return err
	}
	p.Active = true

	if profile.Method == domain.MethodTextfile && p.EqualName(profile.MasterFile) {
		lo.Plugins = insertAt(lo.Plugins, 0, p)
		return nil
	}

	if isMaster {
		point := getMasterPartitionPoint(profile, lo.Plugins)
		lo.Plugins = insertAt(lo.Plugins, point, p)
	} else {
		lo.Plugins = append(lo.Plugins, p)
	}
	return nil
}

// Deactivate marks name inactive. The main master is permanently active
// for TEXTFILE profiles, and Update.esm is permanently active for the
// Update.esm variant (invariants 3-4); deactivating either is refused.
// Deactivating a plugin not in the load order, or already inactive, is a
// no-op.
func Deactivate(profile domain.GameProfile, lo *LoadOrder, name string) error {
	p := domain.NewPlugin(name)

	if profile.Method == domain.MethodTextfile && p.EqualName(profile.MasterFile) {
		return domain.NewOpError(domain.ErrInvalidArgs, "cannot deactivate the game's main master", nil)
	}
	if profile.IsUpdateEsmVariant() && p.EqualName("Update.esm") {
		return domain.NewOpError(domain.ErrInvalidArgs, "cannot deactivate Update.esm", nil)
	}

	idx := indexOf(lo.Plugins, p.Name())
	if idx < 0 {
		return nil
	}
	lo.Plugins[idx].Active = false
	return nil
}

// PartitionMasters stably reorders lo so that all masters precede all
// non-masters, preserving relative order within each group.
func PartitionMasters(profile domain.GameProfile, lo *LoadOrder) {
	masters := make([]domain.Plugin, 0, len(lo.Plugins))
	others := make([]domain.Plugin, 0, len(lo.Plugins))
	for _, p := range lo.Plugins {
		if IsMasterNoThrow(profile, p) {
			masters = append(masters, p)
		} else {
			others = append(others, p)
		}
	}
	lo.Plugins = append(masters, others...)
}

// Unique removes duplicate entries (by case-insensitive name), keeping each
// name's last occurrence and otherwise preserving relative order.
func Unique(lo *LoadOrder) {
	seen := make(map[string]bool, len(lo.Plugins))
	result := make([]domain.Plugin, 0, len(lo.Plugins))
	for i := len(lo.Plugins) - 1; i >= 0; i-- {
		p := lo.Plugins[i]
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		result = append(result, p)
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	lo.Plugins = result
}

// Fix repairs lo in place per §4.3.5: reload the active-plugins cache if it
// may be stale, deduplicate, restore the masters-before-non-masters
// partition, restore the main master (and, for the Update.esm variant,
// Update.esm) to always-active, drop any active entry whose backing file is
// absent or invalid, and trim the active set down to the 255 cap by
// deactivating from the end of the load order first. Grounded on
// lo_fix_plugin_lists (original_source/src/api/libloadorder.cpp:207-300),
// which reloads gh->activePlugins when stale and erases active entries that
// fail Exists before the cap trim.
func Fix(profile domain.GameProfile, lo *LoadOrder) error {
	if HasChangedActive(profile, lo) {
		if err := LoadActive(profile, lo); err != nil {
			return err
		}
	}

	Unique(lo)
	PartitionMasters(profile, lo)
	ensureMasterFirstAndActive(profile, lo)

	if profile.IsUpdateEsmVariant() {
		if idx := indexOf(lo.Plugins, "Update.esm"); idx >= 0 {
			lo.Plugins[idx].Active = true
		}
	}

	for i := range lo.Plugins {
		if lo.Plugins[i].Active && !IsValid(profile, lo.Plugins[i]) {
			lo.Plugins[i].Active = false
		}
	}

	for countActivePlugins(lo) > maxActivePlugins {
		for i := len(lo.Plugins) - 1; i >= 0; i-- {
			if !lo.Plugins[i].Active {
				continue
			}
			if i == 0 && profile.Method == domain.MethodTextfile {
				continue // main master is never dropped
			}
			if profile.IsUpdateEsmVariant() && lo.Plugins[i].EqualName("Update.esm") {
				continue
			}
			lo.Plugins[i].Active = false
			break
		}
	}
	return nil
}

// SetActivePlugins replaces the entire active set in one call (§6's
// distinct bulk "get/set active plugins" operation, as opposed to the
// single-plugin Activate/Deactivate pair): every name in names becomes
// active, every other plugin in lo becomes inactive, subject to the same
// existence check and 255-cap as Activate. Names not yet present in lo are
// inserted (masters at the partition boundary, non-masters appended). The
// main master and, for the Update.esm variant, Update.esm remain active
// regardless of whether they were named, per invariants 3-4.
func SetActivePlugins(profile domain.GameProfile, lo *LoadOrder, names []string) error {
	if len(names) > maxActivePlugins {
		return domain.NewOpError(domain.ErrInvalidArgs, fmt.Sprintf("cannot activate more than %d plugins", maxActivePlugins), nil)
	}

	target := make(map[string]bool, len(names))
	for _, name := range names {
		p := domain.NewPlugin(name)
		if target[p.Key()] {
			return domain.NewOpError(domain.ErrInvalidArgs, fmt.Sprintf("duplicate plugin %q", p.Name()), nil)
		}
		if !Exists(profile, p) {
			return domain.NewOpError(domain.ErrFileNotFound, fmt.Sprintf("%q not found", p.Name()), nil)
		}
		target[p.Key()] = true

		if indexOf(lo.Plugins, p.Name()) < 0 {
			isMaster, err := IsMaster(profile, p)
			if err != nil {
				return err
			}
			if isMaster {
				point := getMasterPartitionPoint(profile, lo.Plugins)
				lo.Plugins = insertAt(lo.Plugins, point, p)
			} else {
				lo.Plugins = append(lo.Plugins, p)
			}
		}
	}

	if profile.Method == domain.MethodTextfile {
		target[domain.NewPlugin(profile.MasterFile).Key()] = true
	}
	if profile.IsUpdateEsmVariant() {
		if idx := indexOf(lo.Plugins, "Update.esm"); idx >= 0 {
			target[lo.Plugins[idx].Key()] = true
		}
	}
	if len(target) > maxActivePlugins {
		return domain.NewOpError(domain.ErrInvalidArgs, fmt.Sprintf("cannot activate more than %d plugins", maxActivePlugins), nil)
	}

	for i := range lo.Plugins {
		lo.Plugins[i].Active = target[lo.Plugins[i].Key()]
	}
	return nil
}

// CheckValidity reports non-fatal problems with lo's current state without
// modifying it (§4.3.6): duplicate entries, masters appearing after
// non-masters, an active count over the cap, the first entry not being the
// main master, any entry missing from disk, a previous active-manifest
// write that dropped a non-representable filename, and a load-order/active
// manifest desync detected at handle-creation time (§4.5). The
// first-must-be-main-master check runs unconditionally, matching
// LoadOrder::CheckValidity (original_source/src/backend/LoadOrder.cpp:347-354),
// which checks it ahead of its method-gated checks. None of the checks in
// this function depend on the profile's method.
func CheckValidity(profile domain.GameProfile, lo *LoadOrder) []domain.ResultCode {
	var warnings []domain.ResultCode

	if len(lo.Plugins) > 0 && !lo.Plugins[0].EqualName(profile.MasterFile) {
		warnings = append(warnings, domain.WarnInvalidList)
	}

	seen := make(map[string]bool, len(lo.Plugins))
	dup := false
	missing := false
	for _, p := range lo.Plugins {
		if seen[p.Key()] {
			dup = true
		}
		seen[p.Key()] = true
		if !Exists(profile, p) {
			missing = true
		}
	}
	if dup {
		warnings = append(warnings, domain.WarnInvalidList)
	}
	if missing {
		warnings = append(warnings, domain.WarnInvalidList)
	}

	if !isPartitioned(profile, lo.Plugins) {
		warnings = append(warnings, domain.WarnInvalidList)
	}

	if countActivePlugins(lo) > maxActivePlugins {
		warnings = append(warnings, domain.WarnInvalidList)
	}

	if lo.activeWarning != domain.OK {
		warnings = append(warnings, lo.activeWarning)
	}
	if lo.desyncWarning != domain.OK {
		warnings = append(warnings, lo.desyncWarning)
	}

	return warnings
}
