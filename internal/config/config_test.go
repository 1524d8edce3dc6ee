package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tj/assert"

	"github.com/tj/go-dirzip/internal/config"
)

// write returns the path of a config file containing s.
func write(t *testing.T, s string) string {
	path := filepath.Join(t.TempDir(), "dirzip.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(s), 0644), "write")
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, `
output: site.zip
source: ./site
method: zstd
dotfiles: false
ignore:
  - .gitignore
  - .upignore
`)

	c := config.Default()
	assert.NoError(t, config.Load(path, &c), "load")
	assert.NoError(t, c.Validate(), "validate")

	assert.Equal(t, config.Config{
		Output:   "site.zip",
		Source:   "./site",
		Method:   "zstd",
		Dotfiles: false,
		Ignore:   []string{".gitignore", ".upignore"},
	}, c)
}

func TestLoad_defaults(t *testing.T) {
	path := write(t, "output: out.zip\nsource: src\n")

	c := config.Default()
	assert.NoError(t, config.Load(path, &c), "load")

	assert.Equal(t, "deflate", c.Method)
	assert.True(t, c.Dotfiles, "dotfiles")
}

func TestLoad_unknownField(t *testing.T) {
	path := write(t, "output: out.zip\ncompression: 9\n")

	c := config.Default()
	assert.Error(t, config.Load(path, &c))
}

func TestLoad_missing(t *testing.T) {
	c := config.Default()
	assert.Error(t, config.Load(filepath.Join(t.TempDir(), "nope.yaml"), &c))
}

func TestConfig_Validate(t *testing.T) {
	t.Run("missing source", func(t *testing.T) {
		c := config.Default()
		c.Output = "out.zip"
		assert.Error(t, c.Validate())
	})

	t.Run("unknown method", func(t *testing.T) {
		c := config.Default()
		c.Output = "out.zip"
		c.Source = "src"
		c.Method = "bzip2"
		assert.Error(t, c.Validate())
	})

	t.Run("valid", func(t *testing.T) {
		c := config.Default()
		c.Output = "out.zip"
		c.Source = "src"
		assert.NoError(t, c.Validate())
	})
}
