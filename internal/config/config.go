// Package config loads dirzip settings from a YAML file.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// Config is the dirzip configuration.
type Config struct {
	// Output is the archive path.
	Output string `json:"output" validate:"required"`

	// Source is the directory to archive.
	Source string `json:"source" validate:"required"`

	// Method is the compression method.
	Method string `json:"method" validate:"omitempty,oneof=deflate store zstd"`

	// Dotfiles includes dotfiles when true.
	Dotfiles bool `json:"dotfiles"`

	// Ignore is a list of gitignore-style pattern files.
	Ignore []string `json:"ignore"`

	// Verbose enables debug logging.
	Verbose bool `json:"verbose"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Method:   "deflate",
		Dotfiles: true,
	}
}

// Load reads the YAML file at path into c, fields missing
// from the file are left untouched.
func Load(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading config")
	}

	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}

	return nil
}

// Validate the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
