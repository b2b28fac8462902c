package engine

import (
	"bufio"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"loadctl/internal/domain"
)

// readManifestPlugins reads a line-oriented plugin list (either the
// load-order manifest or the active-plugins manifest) and returns the
// subset of listed names that exist and parse as valid plugins, in file
// order. G1's embedded-ini active manifest is dispatched to ini_g1.go;
// everything else uses the shared line format.
func readManifestPlugins(profile domain.GameProfile, path string, transcode bool) ([]domain.Plugin, error) {
	var names []string
	var err error

	switch {
	case transcode && profile.IsG1():
		names, err = readG1Active(path)
	case transcode:
		names, err = readTranscodedLines(path)
	default:
		names, err = readUTF8Lines(path)
	}
	if err != nil {
		return nil, err
	}

	plugins := make([]domain.Plugin, 0, len(names))
	for _, name := range names {
		p := domain.NewPlugin(name)
		if IsValid(profile, p) {
			plugins = append(plugins, p)
		}
	}
	return plugins, nil
}

// readUTF8Lines reads a newline-delimited manifest, skipping blank lines
// and lines starting with '#', tolerating trailing '\r'. Every non-skipped
// line must be valid UTF-8.
func readUTF8Lines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewOpError(domain.ErrFileReadFailed, "opening manifest", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !utf8.ValidString(line) {
			return nil, domain.NewOpError(domain.ErrFileNotUtf8, "manifest line is not valid UTF-8", nil)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewOpError(domain.ErrFileReadFailed, "reading manifest", err)
	}
	return lines, nil
}

// writeUTF8Lines writes names one per line, LF-terminated.
func writeUTF8Lines(path string, names []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, name := range names {
		if _, err := w.WriteString(name + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

// readTranscodedLines reads the active-plugins manifest as Windows-1252
// (the historical system encoding for these manifests), decoding each line
// to UTF-8.
func readTranscodedLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewOpError(domain.ErrFileReadFailed, "opening active-plugins manifest", err)
	}
	defer f.Close()

	decoder := charmap.Windows1252.NewDecoder()
	r := transform.NewReader(f, decoder)

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewOpError(domain.ErrFileReadFailed, "reading active-plugins manifest", err)
	}
	return lines, nil
}

// writeTranscodedActive writes the active-plugins manifest encoded as
// Windows-1252. Names that cannot be represented in that encoding are
// dropped; the returned bool reports whether any were, so the caller can
// carry §7's WarnBadFilename forward on the LoadOrder instead of setting the
// process-wide last-error message directly, which a following CheckValidity
// call would otherwise clobber before it ever reaches the caller.
func writeTranscodedActive(path string, names []string) (bool, error) {
	f, err := os.Create(path)
	if err != nil {
		return false, domain.NewOpError(domain.ErrFileWriteFailed, "creating active-plugins manifest", err)
	}
	defer f.Close()

	hadBadFilename := false
	encoder := charmap.Windows1252.NewEncoder()
	w := bufio.NewWriter(f)
	for _, name := range names {
		encoded, err := encoder.String(name + "\n")
		if err != nil {
			hadBadFilename = true
			continue
		}
		if _, err := w.WriteString(encoded); err != nil {
			return false, domain.NewOpError(domain.ErrFileWriteFailed, "writing active-plugins manifest", err)
		}
	}
	return hadBadFilename, w.Flush()
}
