// Package config implements the ExecutionContext's ProjectConfig
// (spec.md §6.3): per-key platform-specific path mappings and scalar
// variables, loaded from a blueprint.yaml project file.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PathMapping is a per-platform path value with a required default
// (spec.md §6.3).
type PathMapping struct {
	Default string `yaml:"default" json:"default"`
	Linux   string `yaml:"linux,omitempty" json:"linux,omitempty"`
	MacOS   string `yaml:"macos,omitempty" json:"macos,omitempty"`
	Windows string `yaml:"windows,omitempty" json:"windows,omitempty"`
}

// ForOS selects the OS-specific path if present, else the default
// (spec.md §6.3's resolver rule).
func (m PathMapping) ForOS(osName string) string {
	switch osName {
	case "linux":
		if m.Linux != "" {
			return m.Linux
		}
	case "darwin", "macos":
		if m.MacOS != "" {
			return m.MacOS
		}
	case "windows":
		if m.Windows != "" {
			return m.Windows
		}
	}
	return m.Default
}

// ProjectConfig holds per-key path mappings and scalar variables
// (spec.md §6.3).
type ProjectConfig struct {
	Paths     map[string]PathMapping `yaml:"paths"`
	Variables map[string]string      `yaml:"variables"`
}

// rawConfig mirrors ProjectConfig for YAML decoding, which Load does
// only after jsonschema validation has accepted the document.
type rawConfig struct {
	Paths     map[string]PathMapping `yaml:"paths"`
	Variables map[string]string      `yaml:"variables"`
}

// Load parses a blueprint.yaml document, validating it against
// configSchemaJSON (see validate.go) before returning a ProjectConfig.
func Load(data []byte) (*ProjectConfig, error) {
	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return &ProjectConfig{Paths: raw.Paths, Variables: raw.Variables}, nil
}

// Lookup implements spec.md §4.2's two-stage config resolution: first as
// a typed path (with platform overrides), then as a scalar variable.
// ok is false if neither is defined.
func (c *ProjectConfig) Lookup(key, osName string) (string, bool) {
	if c == nil {
		return "", false
	}
	if mapping, ok := c.Paths[key]; ok {
		return mapping.ForOS(osName), true
	}
	if v, ok := c.Variables[key]; ok {
		return v, true
	}
	return "", false
}
