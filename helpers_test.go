package archive_test

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/klauspost/compress/zstd"
	"github.com/mholt/archiver/v3"
	"github.com/spf13/afero"
	"github.com/tj/assert"
)

func init() {
	log.SetHandler(discard.Default)
	// log.SetLevel(log.DebugLevel)
}

// entries returns the names and contents of the zip in b.
func entries(t testing.TB, b []byte) map[string]string {
	r, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	assert.NoError(t, err, "open zip")
	r.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	m := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		assert.NoError(t, err, "open entry")

		b, err := io.ReadAll(rc)
		assert.NoError(t, err, "read entry")
		assert.NoError(t, rc.Close(), "close entry")

		m[f.Name] = string(b)
	}

	return m
}

// names returns the sorted keys of m.
func names(m map[string]string) []string {
	var s []string
	for k := range m {
		s = append(s, k)
	}
	sort.Strings(s)
	return s
}

// readEntries returns the entries of the zip at path on fs.
func readEntries(t testing.TB, fs afero.Fs, path string) map[string]string {
	b, err := afero.ReadFile(fs, path)
	assert.NoError(t, err, "read archive")
	return entries(t, b)
}

// writeFiles writes files relative to dir on fs.
func writeFiles(t testing.TB, fs afero.Fs, dir string, files map[string]string) {
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		assert.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755), "mkdir")
		assert.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644), "write")
	}
}

// unzip extracts the zip at path to a new directory which is returned.
func unzip(t testing.TB, path string) string {
	dir := filepath.Join(t.TempDir(), "out")
	assert.NoError(t, archiver.Unarchive(path, dir), "unarchive")
	return dir
}

// tree returns the regular files beneath dir, relative to it.
func tree(t testing.TB, dir string) map[string]string {
	m := make(map[string]string)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		m[filepath.ToSlash(rel)] = string(b)
		return nil
	})

	assert.NoError(t, err, "walk")
	return m
}
