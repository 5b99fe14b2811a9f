package results

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func archiveEntries(t *testing.T, archive []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func TestZipPackager_ParentDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "RUN1", "out.csv"), "a,b\n1,2\n")
	writeFile(t, filepath.Join(dir, "RUN1", "DAILY", "infections.csv"), "day,count\n")
	writeFile(t, filepath.Join(dir, "RUN2", "out.csv"), "a,b\n3,4\n")
	// Files outside RUN* subtrees are not part of the results.
	writeFile(t, filepath.Join(dir, "fred.log"), "noise")

	p := NewZipPackager(nil)
	packaged, err := p.PackageDirectory(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, packaged.FileCount)
	assert.Equal(t, int64(len(packaged.Archive)), packaged.TotalSizeBytes)
	assert.Equal(t, filepath.Base(dir), packaged.DirectoryName)

	entries := archiveEntries(t, packaged.Archive)
	var names []string
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"RUN1/DAILY/infections.csv",
		"RUN1/out.csv",
		"RUN2/out.csv",
	}, names)
	assert.Equal(t, "a,b\n1,2\n", entries["RUN1/out.csv"])
}

func TestZipPackager_SingleRunDirectory(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "RUN1")
	writeFile(t, filepath.Join(dir, "out.csv"), "a,b\n")
	writeFile(t, filepath.Join(dir, "DAILY", "infections.csv"), "day\n")

	p := NewZipPackager(nil)
	packaged, err := p.PackageDirectory(dir)
	require.NoError(t, err)

	// Archive layout matches the parent case: entries keep the RUN1/ prefix.
	entries := archiveEntries(t, packaged.Archive)
	assert.Contains(t, entries, "RUN1/out.csv")
	assert.Contains(t, entries, "RUN1/DAILY/infections.csv")
	assert.Equal(t, 2, packaged.FileCount)
}

func TestZipPackager_IncludePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "RUN1", "out.csv"), "a\n")
	writeFile(t, filepath.Join(dir, "RUN1", "debug.txt"), "noise\n")

	p := NewZipPackager(nil, "**/*.csv")
	packaged, err := p.PackageDirectory(dir)
	require.NoError(t, err)

	entries := archiveEntries(t, packaged.Archive)
	assert.Contains(t, entries, "RUN1/out.csv")
	assert.NotContains(t, entries, "RUN1/debug.txt")
	assert.Equal(t, 1, packaged.FileCount)
}

func TestZipPackager_SkipsSymlinks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "RUN1", "out.csv"), "a\n")

	outside := filepath.Join(t.TempDir(), "secret.txt")
	writeFile(t, outside, "secret")
	if err := os.Symlink(outside, filepath.Join(dir, "RUN1", "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	p := NewZipPackager(nil)
	packaged, err := p.PackageDirectory(dir)
	require.NoError(t, err)

	entries := archiveEntries(t, packaged.Archive)
	assert.Contains(t, entries, "RUN1/out.csv")
	assert.NotContains(t, entries, "RUN1/link.txt")
	assert.Equal(t, 1, packaged.FileCount)
}

func TestZipPackager_InvalidDirectories(t *testing.T) {
	p := NewZipPackager(nil)

	t.Run("missing", func(t *testing.T) {
		_, err := p.PackageDirectory(filepath.Join(t.TempDir(), "nope"))
		assert.True(t, IsInvalidResultsDir(err))
		assert.False(t, IsRetryable(err))
	})

	t.Run("not a directory", func(t *testing.T) {
		f := filepath.Join(t.TempDir(), "file.txt")
		writeFile(t, f, "x")
		_, err := p.PackageDirectory(f)
		assert.True(t, IsInvalidResultsDir(err))
	})

	t.Run("no run output", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "readme.md"), "not results")
		_, err := p.PackageDirectory(dir)
		require.Error(t, err)
		assert.True(t, IsInvalidResultsDir(err))
		assert.Contains(t, err.Error(), "no RUN* output")
	})
}

func TestIsRunDirName(t *testing.T) {
	assert.True(t, isRunDirName("RUN1"))
	assert.True(t, isRunDirName("RUN42"))
	assert.True(t, isRunDirName("run1"))
	assert.False(t, isRunDirName("OUT"))
	assert.False(t, isRunDirName("DAILY"))
}
