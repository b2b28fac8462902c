package engine

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"loadctl/internal/domain"
)

// G1 stores its active-plugins list as "GameFileN=name.esm" lines embedded
// in its main ini file, interleaved with unrelated settings. On read, every
// other line is ignored. On write, the file's bytes up to and including the
// "[Game Files]" marker are preserved verbatim; everything after the marker
// is replaced by the new GameFileN lines.

var g1GameFileLine = regexp.MustCompile(`(?i)^GameFile[0-9]{1,3}=.+\.es[mp]$`)

// readG1Active extracts the ordered list of plugin names from G1's ini
// file, matching any line of the form "GameFileN=name.esm" regardless of
// which ini section it appears under.
func readG1Active(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewOpError(domain.ErrFileReadFailed, "opening ini active-plugins manifest", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !g1GameFileLine.MatchString(line) {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		names = append(names, line[eq+1:])
	}
	if err := scanner.Err(); err != nil {
		return nil, domain.NewOpError(domain.ErrFileReadFailed, "reading ini active-plugins manifest", err)
	}
	return names, nil
}

// writeG1Active rewrites G1's ini active-plugins section: the existing
// file's bytes up to and including the literal "[Game Files]" marker are
// preserved verbatim, followed by one "GameFileN=name" line per active
// plugin. If the marker is absent (file missing or never had one), the
// section header is appended first.
func writeG1Active(path string, names []string) error {
	prefix, err := g1PrefixThroughGameFilesMarker(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return domain.NewOpError(domain.ErrFileWriteFailed, "writing ini active-plugins manifest", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(prefix); err != nil {
		return domain.NewOpError(domain.ErrFileWriteFailed, "writing ini active-plugins manifest", err)
	}
	if !strings.HasSuffix(prefix, "\n") {
		if _, err := w.WriteString("\n"); err != nil {
			return domain.NewOpError(domain.ErrFileWriteFailed, "writing ini active-plugins manifest", err)
		}
	}
	for i, name := range names {
		if _, err := fmt.Fprintf(w, "GameFile%d=%s\n", i, name); err != nil {
			return domain.NewOpError(domain.ErrFileWriteFailed, "writing ini active-plugins manifest", err)
		}
	}
	return w.Flush()
}

const gameFilesMarker = "[Game Files]"

// g1PrefixThroughGameFilesMarker returns the bytes of the existing file up
// to and including the marker, or just the marker itself if the file is
// absent or does not contain it.
func g1PrefixThroughGameFilesMarker(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return gameFilesMarker, nil
		}
		return "", domain.NewOpError(domain.ErrFileReadFailed, "reading existing ini file", err)
	}

	content := string(data)
	idx := strings.Index(content, gameFilesMarker)
	if idx < 0 {
		sep := ""
		if len(content) > 0 && !strings.HasSuffix(content, "\n") {
			sep = "\n"
		}
		return content + sep + gameFilesMarker, nil
	}
	return content[:idx+len(gameFilesMarker)], nil
}
