package engine

import (
	"os"

	"loadctl/internal/domain"
)

// LoadActive reads the active-plugins manifest and sets the Active flag on
// every matching entry already present in lo.Plugins (§4.3.3). Names in the
// manifest that do not correspond to a plugin already in the load order are
// ignored: by the time this runs, the directory scan in loadAdditionalFiles
// has already added every plugin that physically exists. A missing
// manifest is treated as an empty active set rather than an error (first
// run on a fresh install).
func LoadActive(profile domain.GameProfile, lo *LoadOrder) error {
	if !fileExists(profile.ActivePath) {
		return nil
	}

	var names []string
	var err error
	switch {
	case profile.IsG1():
		names, err = readG1Active(profile.ActivePath)
	default:
		names, err = readTranscodedLines(profile.ActivePath)
	}
	if err != nil {
		return err
	}

	for _, name := range names {
		if idx := indexOf(lo.Plugins, name); idx >= 0 {
			lo.Plugins[idx].Active = true
		}
	}
	return nil
}

// SaveActive writes the active-plugins manifest: one name per line, in
// load-order order. For TEXTFILE profiles the main master is omitted (it is
// implicitly always active and is never written to the manifest); for
// TIMESTAMP profiles it is written like any other active entry.
func SaveActive(profile domain.GameProfile, lo *LoadOrder) error {
	var names []string
	for _, p := range lo.Plugins {
		if !p.Active {
			continue
		}
		if profile.Method == domain.MethodTextfile && p.EqualName(profile.MasterFile) {
			continue
		}
		names = append(names, p.Name())
	}

	if profile.IsG1() {
		return writeG1Active(profile.ActivePath, names)
	}
	hadBadFilename, err := writeTranscodedActive(profile.ActivePath, names)
	if err != nil {
		return err
	}
	if hadBadFilename {
		lo.activeWarning = domain.WarnBadFilename
	} else {
		lo.activeWarning = domain.OK
	}
	if fi, err := os.Stat(profile.ActivePath); err == nil {
		lo.activeMtime = fi.ModTime()
	}
	return nil
}
