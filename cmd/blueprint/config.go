package main

import (
	"os"

	"github.com/blueprint-lang/blueprint/internal/config"
)

// loadProjectConfig reads blueprint.yaml from path if it exists,
// returning a nil *config.ProjectConfig (not an error) when it doesn't
// — a project with no config file simply has no path mappings or
// variables defined (spec.md §6.3).
func loadProjectConfig(path string) (*config.ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return config.Load(data)
}
