package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadValidConfig(t *testing.T) {
	data := []byte(`
paths:
  build_dir:
    default: ./build
    linux: /tmp/build
variables:
  greeting: hello
`)
	cfg, err := Load(data)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "./build", cfg.Paths["build_dir"].Default)
	assert.Equal(t, "hello", cfg.Variables["greeting"])
}

func TestLoadRejectsUnknownTopLevelKey(t *testing.T) {
	_, err := Load([]byte("unknown_key: 1\n"))
	assert.Error(t, err)
}

func TestLoadRejectsPathMappingMissingDefault(t *testing.T) {
	data := []byte(`
paths:
  build_dir:
    linux: /tmp/build
`)
	_, err := Load(data)
	assert.Error(t, err)
}

func TestLoadEmptyDocument(t *testing.T) {
	cfg, err := Load([]byte(""))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.Paths)
}

func TestPathMappingForOSFallsBackToDefault(t *testing.T) {
	m := PathMapping{Default: "./out", Linux: "/opt/out"}
	assert.Equal(t, "/opt/out", m.ForOS("linux"))
	assert.Equal(t, "./out", m.ForOS("windows"))
	assert.Equal(t, "./out", m.ForOS("darwin"))
}

func TestLookupTriesPathsThenVariables(t *testing.T) {
	cfg := &ProjectConfig{
		Paths:     map[string]PathMapping{"build_dir": {Default: "./build"}},
		Variables: map[string]string{"name": "blueprint"},
	}
	v, ok := cfg.Lookup("build_dir", "linux")
	require.True(t, ok)
	assert.Equal(t, "./build", v)

	v, ok = cfg.Lookup("name", "linux")
	require.True(t, ok)
	assert.Equal(t, "blueprint", v)

	_, ok = cfg.Lookup("missing", "linux")
	assert.False(t, ok)
}

func TestLookupOnNilConfigIsFalseNotPanic(t *testing.T) {
	var cfg *ProjectConfig
	_, ok := cfg.Lookup("anything", "linux")
	assert.False(t, ok)
}
