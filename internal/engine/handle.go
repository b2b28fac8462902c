package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"loadctl/internal/domain"
)

// Handle is the public entry point into the engine: it owns a GameProfile
// and its currently loaded LoadOrder, and turns every mutation into the
// (ResultCode, error) contract of §6 rather than letting callers work with
// *LoadOrder directly. Handle does not own profile.Cache's lifetime;
// callers that built one are responsible for closing it.
type Handle struct {
	Profile domain.GameProfile
	lo      *LoadOrder
}

// Open loads a game's load order and returns a ready Handle. If both the
// load-order and active-plugins manifests existed and disagreed (§4.5), the
// mismatch warning is recorded as the handle's last error.
func Open(profile domain.GameProfile) (*Handle, error) {
	lo, err := Load(profile)
	if err != nil {
		domain.SetLastError(err.Error())
		return nil, err
	}
	if lo.desyncWarning != domain.OK {
		domain.SetLastError(lo.desyncWarning.String())
	} else {
		domain.ClearLastError()
	}
	return &Handle{Profile: profile, lo: lo}, nil
}

// Reload re-reads the load order from disk if HasChanged reports it may be
// stale (§4.4). A no-op otherwise.
func (h *Handle) Reload() (domain.ResultCode, error) {
	if !HasChanged(h.Profile, h.lo) {
		return domain.OK, nil
	}
	lo, err := Load(h.Profile)
	if err != nil {
		return h.fail(err)
	}
	h.lo = lo
	domain.ClearLastError()
	return domain.OK, nil
}

// GetLoadOrder returns the current load order as canonical plugin names.
func (h *Handle) GetLoadOrder() []string {
	return h.lo.GetLoadOrder()
}

// SetLoadOrder replaces the full load order and persists it.
func (h *Handle) SetLoadOrder(names []string) (domain.ResultCode, error) {
	if err := SetLoadOrder(h.Profile, h.lo, names); err != nil {
		return h.fail(err)
	}
	if err := Save(h.Profile, h.lo, false); err != nil {
		return h.fail(err)
	}
	return h.warnings()
}

// GetPosition returns the zero-based index of name, or -1 if it is not in
// the load order.
func (h *Handle) GetPosition(name string) int {
	return h.lo.GetPosition(name)
}

// GetPluginAtPosition returns the plugin name at index.
func (h *Handle) GetPluginAtPosition(index int) (string, domain.ResultCode, error) {
	name, err := h.lo.GetPluginAtPosition(index)
	if err != nil {
		code, rerr := h.fail(err)
		return "", code, rerr
	}
	return name, domain.OK, nil
}

// SetPosition moves name to index and persists the result.
func (h *Handle) SetPosition(name string, index int) (domain.ResultCode, error) {
	if err := SetPosition(h.Profile, h.lo, name, index); err != nil {
		return h.fail(err)
	}
	if err := Save(h.Profile, h.lo, false); err != nil {
		return h.fail(err)
	}
	return h.warnings()
}

// IsActive reports whether name is currently active.
func (h *Handle) IsActive(name string) bool {
	idx := h.lo.GetPosition(name)
	if idx < 0 {
		return false
	}
	return h.lo.Plugins[idx].Active
}

// Activate marks name active (inserting it into the load order if
// necessary) and persists both the load order and the active-plugins
// manifest.
func (h *Handle) Activate(name string) (domain.ResultCode, error) {
	if err := Activate(h.Profile, h.lo, name); err != nil {
		return h.fail(err)
	}
	if err := Save(h.Profile, h.lo, false); err != nil {
		return h.fail(err)
	}
	return h.warnings()
}

// Deactivate marks name inactive and persists the active-plugins manifest.
func (h *Handle) Deactivate(name string) (domain.ResultCode, error) {
	if err := Deactivate(h.Profile, h.lo, name); err != nil {
		return h.fail(err)
	}
	if err := SaveActive(h.Profile, h.lo); err != nil {
		return h.fail(err)
	}
	return h.warnings()
}

// GetActivePlugins returns the names of all currently active plugins, in
// load-order order.
func (h *Handle) GetActivePlugins() []string {
	var names []string
	for _, p := range h.lo.Plugins {
		if p.Active {
			names = append(names, p.Name())
		}
	}
	return names
}

// Fix repairs the in-memory load order (§4.3.5) and persists the result.
func (h *Handle) Fix() (domain.ResultCode, error) {
	if err := Fix(h.Profile, h.lo); err != nil {
		return h.fail(err)
	}
	if err := Save(h.Profile, h.lo, false); err != nil {
		return h.fail(err)
	}
	return h.warnings()
}

// SetMasterFile reassigns the profile's main master plugin (§6's distinct
// get/set main master operation). Refused for TEXTFILE profiles, where the
// main master is fixed by the variant. For TIMESTAMP profiles the proposed
// master must exist and parse as a valid plugin before it is accepted,
// matching §4.2's "permitted after validating that the proposed master
// exists and parses".
func (h *Handle) SetMasterFile(name string) (domain.ResultCode, error) {
	p := domain.NewPlugin(name)
	if !Exists(h.Profile, p) {
		return h.fail(domain.NewOpError(domain.ErrFileNotFound, fmt.Sprintf("%q not found", p.Name()), nil))
	}
	if !IsValid(h.Profile, p) {
		return h.fail(domain.NewOpError(domain.ErrInvalidArgs, fmt.Sprintf("%q does not parse as a valid plugin", p.Name()), nil))
	}
	if err := h.Profile.SetMasterFile(name); err != nil {
		return h.fail(err)
	}
	return h.warnings()
}

// SetActivePlugins replaces the entire active set in one call and persists
// the result — the bulk counterpart to Activate/Deactivate's single-plugin
// operations (§6).
func (h *Handle) SetActivePlugins(names []string) (domain.ResultCode, error) {
	if err := SetActivePlugins(h.Profile, h.lo, names); err != nil {
		return h.fail(err)
	}
	if err := Save(h.Profile, h.lo, false); err != nil {
		return h.fail(err)
	}
	return h.warnings()
}

// CheckDesync reports whether the in-memory load order has fallen out of
// sync with what a fresh read of disk would produce (§4.5). Entries present
// only in the in-memory copy are dropped before comparing — the asymmetric
// rule described in §9: additions on disk are always a desync, removals
// from disk are not, since the in-memory copy may simply be ahead of a
// concurrent writer that has not yet persisted its own additions.
func (h *Handle) CheckDesync() (bool, error) {
	fresh, err := Load(h.Profile)
	if err != nil {
		return false, err
	}
	current := h.lo.GetLoadOrder()
	onDisk := fresh.GetLoadOrder()

	onDiskSet := make(map[string]bool, len(onDisk))
	for _, n := range onDisk {
		onDiskSet[strings.ToLower(n)] = true
	}
	filtered := make([]string, 0, len(current))
	for _, n := range current {
		if onDiskSet[strings.ToLower(n)] {
			filtered = append(filtered, n)
		}
	}

	if len(filtered) != len(onDisk) {
		return true, nil
	}
	for i := range filtered {
		if !strings.EqualFold(filtered[i], onDisk[i]) {
			return true, nil
		}
	}
	return false, nil
}

// CheckValidity returns every validity warning currently present in the
// load order, without mutating or persisting anything.
func (h *Handle) CheckValidity() []domain.ResultCode {
	return CheckValidity(h.Profile, h.lo)
}

func (h *Handle) warnings() (domain.ResultCode, error) {
	warnings := CheckValidity(h.Profile, h.lo)
	domain.ClearLastError()
	if len(warnings) == 0 {
		return domain.OK, nil
	}
	code := warnings[0]
	domain.SetLastError(code.String())
	return code, nil
}

func (h *Handle) fail(err error) (domain.ResultCode, error) {
	domain.SetLastError(err.Error())
	if opErr, ok := err.(*domain.OpError); ok {
		return opErr.Code, err
	}
	return domain.ErrInvalidArgs, err
}

// masterFileFor returns the main master filename for a variant.
func masterFileFor(v domain.Variant) (string, bool) {
	switch v {
	case domain.G1:
		return "Morrowind.esm", true
	case domain.G2:
		return "Oblivion.esm", true
	case domain.G3:
		return "Skyrim.esm", true
	case domain.G4:
		return "Fallout3.esm", true
	case domain.G5:
		return "FalloutNV.esm", true
	default:
		return "", false
	}
}

// g2IniKeepsManifestsInGameDir reports whether gameDir's Oblivion.ini
// contains bUseMyGamesDirectory=0, per §4.2: when set, G2's manifests live
// in the game directory rather than the per-user application-data
// directory. Grounded on InitPaths (original_source/src/backend/game.cpp:
// 106-145), which scans the ini file for the literal setting followed by
// '0'. A missing or unreadable ini is treated as "not set" (default
// location).
func g2IniKeepsManifestsInGameDir(gameDir string) bool {
	data, err := os.ReadFile(filepath.Join(gameDir, "Oblivion.ini"))
	if err != nil {
		return false
	}
	const setting = "bUseMyGamesDirectory="
	content := string(data)
	pos := strings.Index(content, setting)
	if pos < 0 {
		return false
	}
	pos += len(setting)
	return pos < len(content) && content[pos] == '0'
}

// BuildProfile constructs a GameProfile for variant, resolving the two
// variant-dependent ambiguities §4.2 describes: G5's persistence method
// depends on how the game was installed (if a load-order manifest already
// exists at loadOrderPath, TEXTFILE is assumed; otherwise TIMESTAMP), and
// G2's manifest location depends on its ini setting. activePath and
// loadOrderPath are taken as already pointing at the caller's per-user
// application-data location (there is no single portable equivalent of
// Windows' local-appdata path to derive it from); BuildProfile only
// overrides them when the ini probe finds bUseMyGamesDirectory=0, which
// relocates both manifests into the game directory (dataDir's parent).
func BuildProfile(variant domain.Variant, dataDir, activePath, loadOrderPath string, parser domain.HeaderParser, cache domain.HeaderCache) (domain.GameProfile, error) {
	masterFile, ok := masterFileFor(variant)
	if !ok {
		return domain.GameProfile{}, fmt.Errorf("unknown variant %q", variant)
	}

	if variant == domain.G2 {
		gameDir := filepath.Dir(dataDir)
		if g2IniKeepsManifestsInGameDir(gameDir) {
			activePath = filepath.Join(gameDir, "plugins.txt")
			loadOrderPath = filepath.Join(gameDir, "loadorder.txt")
		}
	}

	profile, err := domain.NewGameProfile(variant, masterFile, dataDir, activePath, loadOrderPath)
	if err != nil {
		return domain.GameProfile{}, err
	}

	if variant == domain.G5 {
		if fileExists(loadOrderPath) {
			profile.Method = domain.MethodTextfile
		} else {
			profile.Method = domain.MethodTimestamp
		}
	}

	profile.Parser = parser
	profile.Cache = cache
	return profile, nil
}
