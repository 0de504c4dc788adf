package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bindweave/bindweave/internal/typemap"
)

// Config is the generation configuration read from a YAML file. Flags
// override file values where both are given.
type Config struct {
	// Library is the native library name: the C include guard stem,
	// the Java System.loadLibrary argument, and the C# DllImport name.
	Library string `yaml:"library"`

	// Package is the Java package and .NET namespace.
	Package string `yaml:"package"`

	// Prefix is prepended to every exported native symbol.
	Prefix string `yaml:"prefix"`

	// Backends lists the targets to generate (c, java, dotnet).
	// Empty means all.
	Backends []string `yaml:"backends"`

	// StripDocs drops source doc comments from generated output.
	// Generated contract notes are kept regardless.
	StripDocs bool `yaml:"strip_docs"`

	// Output maps a backend name to its output file path. A backend
	// without an entry writes next to the module directory using a
	// default name.
	Output map[string]string `yaml:"output"`
}

// LoadConfig reads and validates a YAML config file. An empty path
// returns a zero config so every setting can come from flags.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, File: path, Message: err.Error()}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &LoadError{Code: ErrCodeBadConfig, File: path, Message: err.Error()}
	}
	if err := cfg.validate(); err != nil {
		return nil, &LoadError{Code: ErrCodeBadConfig, File: path, Message: err.Error()}
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for _, b := range c.Backends {
		if !validBackend(b) {
			return fmt.Errorf("unknown backend %q: must be one of %v", b, backendNames())
		}
	}
	for b := range c.Output {
		if !validBackend(b) {
			return fmt.Errorf("output path for unknown backend %q", b)
		}
	}
	return nil
}

// backends resolves the configured backend names to typed values, in
// canonical order.
func (c *Config) backends() []typemap.Backend {
	if len(c.Backends) == 0 {
		return nil
	}
	want := make(map[string]bool, len(c.Backends))
	for _, b := range c.Backends {
		want[b] = true
	}
	var out []typemap.Backend
	for _, b := range typemap.All {
		if want[string(b)] {
			out = append(out, b)
		}
	}
	return out
}

func validBackend(name string) bool {
	for _, b := range typemap.All {
		if string(b) == name {
			return true
		}
	}
	return false
}

func backendNames() []string {
	names := make([]string, len(typemap.All))
	for i, b := range typemap.All {
		names[i] = string(b)
	}
	return names
}
