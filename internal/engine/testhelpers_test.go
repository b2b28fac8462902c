package engine_test

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"loadctl/internal/domain"
	"loadctl/internal/headerfmt"

	"github.com/stretchr/testify/require"
)

// writeUTF8LinesForTest writes a manifest in the same format the engine
// package's own writeUTF8Lines produces, without depending on its
// unexported symbol from this black-box test package.
func writeUTF8LinesForTest(path string, names []string) error {
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

func fileExistsForTest(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// newProfile builds a GameProfile rooted at a fresh temp directory, using
// the default headerfmt parser and no cache.
func newProfile(t *testing.T, variant domain.Variant, method domain.Method, masterFile string) domain.GameProfile {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "Data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))

	dialect := domain.DialectStandard
	if variant == domain.G1 {
		dialect = domain.DialectClassic
	}

	return domain.GameProfile{
		Variant:       variant,
		MasterFile:    masterFile,
		DataDir:       dataDir,
		ActivePath:    filepath.Join(root, "plugins.txt"),
		LoadOrderPath: filepath.Join(root, "loadorder.txt"),
		Method:        method,
		HeaderDialect: dialect,
		Parser:        headerfmt.New(),
	}
}

// writePlugin writes a minimal valid plugin file into profile.DataDir.
func writePlugin(t *testing.T, profile domain.GameProfile, name string, isMaster bool, masters []string) {
	t.Helper()

	sig := "TES4"
	if profile.HeaderDialect == domain.DialectClassic {
		sig = "TES3"
	}

	var flags uint32
	if isMaster {
		flags = 1
	}

	var data bytes.Buffer
	if profile.HeaderDialect == domain.DialectStandard {
		hedr := make([]byte, 12)
		data.WriteString("HEDR")
		require.NoError(t, binary.Write(&data, binary.LittleEndian, uint16(len(hedr))))
		data.Write(hedr)
	}
	for _, m := range masters {
		payload := append([]byte(m), 0)
		data.WriteString("MAST")
		require.NoError(t, binary.Write(&data, binary.LittleEndian, uint16(len(payload))))
		data.Write(payload)
	}

	var buf bytes.Buffer
	buf.WriteString(sig)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(data.Len())))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, flags))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(0)))
	buf.Write(data.Bytes())

	path := filepath.Join(profile.DataDir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// touch sets a plugin's mtime explicitly, for TIMESTAMP-method tests.
func touch(t *testing.T, profile domain.GameProfile, name string, when time.Time) {
	t.Helper()
	path := filepath.Join(profile.DataDir, name)
	require.NoError(t, os.Chtimes(path, when, when))
}

// removePluginFile deletes a plugin's on-disk file, simulating it going
// missing out from under an already-loaded LoadOrder.
func removePluginFile(profile domain.GameProfile, name string) error {
	return os.Remove(filepath.Join(profile.DataDir, name))
}

// writeNonPlugin writes a file with a plugin extension but no recognizable
// header, so IsValid reports it as invalid.
func writeNonPlugin(t *testing.T, profile domain.GameProfile, name string) {
	t.Helper()
	path := filepath.Join(profile.DataDir, name)
	require.NoError(t, os.WriteFile(path, []byte("not a plugin header"), 0644))
}
