package config

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// configSchemaJSON is the meta-schema blueprint.yaml must satisfy. Using
// a compiled JSON Schema (instead of hand-rolled field checks) gives
// precise JSON-pointer error locations, matching the teacher's
// core/types validator pattern.
const configSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "paths": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "required": ["default"],
        "properties": {
          "default": {"type": "string"},
          "linux": {"type": "string"},
          "macos": {"type": "string"},
          "windows": {"type": "string"}
        }
      }
    },
    "variables": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    }
  }
}`

var (
	validatorOnce sync.Once
	validator     *jsonschema.Schema
	validatorErr  error
)

func compiledValidator() (*jsonschema.Schema, error) {
	validatorOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		const resourceURL = "blueprint://config-schema.json"
		if err := compiler.AddResource(resourceURL, bytes.NewReader([]byte(configSchemaJSON))); err != nil {
			validatorErr = fmt.Errorf("compile config schema resource: %w", err)
			return
		}
		sc, err := compiler.Compile(resourceURL)
		if err != nil {
			validatorErr = fmt.Errorf("compile config schema: %w", err)
			return
		}
		validator = sc
	})
	return validator, validatorErr
}

// Validate checks a blueprint.yaml document against the project config
// schema, reporting the first violation with its JSON-pointer location.
func Validate(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode yaml for validation: %w", err)
	}
	// jsonschema validates against JSON-shaped documents; yaml.v3 already
	// decodes mappings as map[string]interface{}, which is JSON-compatible.
	sc, err := compiledValidator()
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	if err := sc.Validate(doc); err != nil {
		return fmt.Errorf("invalid blueprint.yaml: %w", err)
	}
	return nil
}
