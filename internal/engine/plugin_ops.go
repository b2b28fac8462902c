// Package engine implements the load-order engine: the data model's
// filesystem-bound operations, the ordering invariants, cache-coherence
// against the filesystem, per-variant persistence, and repair.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"loadctl/internal/domain"
)

// plainPath returns <dataDir>/<name>, the un-ghosted on-disk path.
func plainPath(profile domain.GameProfile, name string) string {
	return filepath.Join(profile.DataDir, name)
}

// ghostPath returns <dataDir>/<name>.ghost.
func ghostPath(profile domain.GameProfile, name string) string {
	return plainPath(profile, name) + ".ghost"
}

// Exists reports whether either the plain file or its ghosted form is a
// regular file in the profile's data directory.
func Exists(profile domain.GameProfile, p domain.Plugin) bool {
	if fi, err := os.Stat(plainPath(profile, p.Name())); err == nil && fi.Mode().IsRegular() {
		return true
	}
	if fi, err := os.Stat(ghostPath(profile, p.Name())); err == nil && fi.Mode().IsRegular() {
		return true
	}
	return false
}

// IsGhosted reports whether the plain file is absent but the .ghost file
// exists.
func IsGhosted(profile domain.GameProfile, p domain.Plugin) bool {
	if _, err := os.Stat(plainPath(profile, p.Name())); err == nil {
		return false
	}
	fi, err := os.Stat(ghostPath(profile, p.Name()))
	return err == nil && fi.Mode().IsRegular()
}

// Unghost renames <name>.ghost to <name> if the plugin is currently
// ghosted; a no-op otherwise.
func Unghost(profile domain.GameProfile, p domain.Plugin) error {
	if !IsGhosted(profile, p) {
		return nil
	}
	if err := os.Rename(ghostPath(profile, p.Name()), plainPath(profile, p.Name())); err != nil {
		return domain.NewOpError(domain.ErrFileRenameFailed, fmt.Sprintf("unghosting %q", p.Name()), err)
	}
	return nil
}

// resolvedPath returns the actual on-disk path for a plugin, respecting the
// ghost suffix, and an error if neither form exists.
func resolvedPath(profile domain.GameProfile, p domain.Plugin) (string, error) {
	plain := plainPath(profile, p.Name())
	if fi, err := os.Stat(plain); err == nil && fi.Mode().IsRegular() {
		return plain, nil
	}
	ghost := ghostPath(profile, p.Name())
	if fi, err := os.Stat(ghost); err == nil && fi.Mode().IsRegular() {
		return ghost, nil
	}
	return "", domain.NewOpError(domain.ErrFileNotFound, fmt.Sprintf("%q not found", p.Name()), nil)
}

// ReadHeader parses the plugin's on-disk header via the profile's parser,
// consulting the profile's header cache first when one is configured.
func ReadHeader(profile domain.GameProfile, p domain.Plugin) (domain.Header, error) {
	path, err := resolvedPath(profile, p)
	if err != nil {
		return nil, err
	}

	fi, statErr := os.Stat(path)
	if statErr != nil {
		return nil, domain.NewOpError(domain.ErrFileReadFailed, fmt.Sprintf("stat %q", p.Name()), statErr)
	}

	if profile.Cache != nil {
		if h, ok, err := profile.Cache.Lookup(path, fi.Size(), fi.ModTime().UnixNano()); err == nil && ok {
			return h, nil
		}
	}

	h, err := profile.Parser.Parse(path, profile.HeaderDialect)
	if err != nil {
		return nil, domain.NewOpError(domain.ErrFileReadFailed, fmt.Sprintf("reading header of %q", p.Name()), err)
	}

	if profile.Cache != nil {
		_ = profile.Cache.Store(path, fi.Size(), fi.ModTime().UnixNano(), h)
	}

	return h, nil
}

// IsValid reports whether the name has a recognized plugin extension and
// its header parses without error.
func IsValid(profile domain.GameProfile, p domain.Plugin) bool {
	if !domain.HasPluginExtension(p.Name()) {
		return false
	}
	_, err := ReadHeader(profile, p)
	return err == nil
}

// IsMaster reports whether the header's master bit is set. It fails with
// an error when the extension test or the header parse fails.
func IsMaster(profile domain.GameProfile, p domain.Plugin) (bool, error) {
	if !domain.HasPluginExtension(p.Name()) {
		return false, domain.NewOpError(domain.ErrInvalidArgs, fmt.Sprintf("%q has no plugin extension", p.Name()), nil)
	}
	h, err := ReadHeader(profile, p)
	if err != nil {
		return false, err
	}
	return h.IsMaster(), nil
}

// IsMasterNoThrow is the no-throw variant used in sort comparators: any
// failure (missing file, unparseable header) is treated as "not a master".
func IsMasterNoThrow(profile domain.GameProfile, p domain.Plugin) bool {
	isMaster, err := IsMaster(profile, p)
	if err != nil {
		return false
	}
	return isMaster
}

// ModTime returns the mtime of the plugin's actual on-disk file (respecting
// the ghost suffix).
func ModTime(profile domain.GameProfile, p domain.Plugin) (time.Time, error) {
	path, err := resolvedPath(profile, p)
	if err != nil {
		return time.Time{}, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, domain.NewOpError(domain.ErrTimestampReadFailed, fmt.Sprintf("reading mtime of %q", p.Name()), err)
	}
	return fi.ModTime(), nil
}

// SetModTime writes the mtime of the plugin's actual on-disk file.
func SetModTime(profile domain.GameProfile, p domain.Plugin, t time.Time) error {
	path, err := resolvedPath(profile, p)
	if err != nil {
		return err
	}
	if err := os.Chtimes(path, t, t); err != nil {
		return domain.NewOpError(domain.ErrTimestampWriteFailed, fmt.Sprintf("writing mtime of %q", p.Name()), err)
	}
	return nil
}

// hasPluginFileSuffix reports whether a raw directory-entry name ends in
// .esm, .esp or .ghost, case-insensitively — used when scanning the data
// directory for candidate plugins (possibly still ghosted).
func hasPluginFileSuffix(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".esm") || strings.HasSuffix(lower, ".esp") || strings.HasSuffix(lower, ".ghost")
}
