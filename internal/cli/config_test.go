package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bindweave/bindweave/internal/typemap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bindweave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
	assert.Nil(t, cfg.backends())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotFound, asLoadError(t, err).Code)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "library: [unclosed")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Equal(t, ErrCodeBadConfig, asLoadError(t, err).Code)
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `library: calc
package: com.example.calc
prefix: calc_
backends:
  - java
strip_docs: true
output:
  c: include/calc.h
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "calc", cfg.Library)
	assert.Equal(t, "com.example.calc", cfg.Package)
	assert.Equal(t, "calc_", cfg.Prefix)
	assert.True(t, cfg.StripDocs)
	assert.Equal(t, "include/calc.h", cfg.Output["c"])
	assert.Equal(t, []typemap.Backend{typemap.BackendJava}, cfg.backends())
}

func TestLoadConfig_BackendsInCanonicalOrder(t *testing.T) {
	path := writeConfig(t, "library: calc\nbackends: [dotnet, c]\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []typemap.Backend{typemap.BackendC, typemap.BackendDotNet}, cfg.backends())
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	path := writeConfig(t, "library: calc\nbackends: [rust]\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	loadErr := asLoadError(t, err)
	assert.Equal(t, ErrCodeBadConfig, loadErr.Code)
	assert.Contains(t, loadErr.Message, "unknown backend")
}

func TestLoadConfig_OutputForUnknownBackend(t *testing.T) {
	path := writeConfig(t, "library: calc\noutput:\n  wasm: out.wat\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	loadErr := asLoadError(t, err)
	assert.Equal(t, ErrCodeBadConfig, loadErr.Code)
	assert.Contains(t, loadErr.Message, "wasm")
}
