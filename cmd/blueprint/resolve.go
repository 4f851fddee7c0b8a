package main

import (
	"fmt"
	"os"

	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/blueprint-lang/blueprint/internal/resolver"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/spf13/cobra"
)

// loadCompiledFile reads and decodes a schema file written by `compile`.
func loadCompiledFile(path string) (schema.CompiledFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.CompiledFile{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	cf, err := schema.Load(f)
	if err != nil {
		return schema.CompiledFile{}, fmt.Errorf("loading %s: %w", path, err)
	}
	return cf, nil
}

// resolveSchemaFile loads a compiled schema file and resolves it against
// the current OS environment and project config (spec.md §4.2).
func resolveSchemaFile(schemaPath, configPath string) (*plan.Plan, error) {
	cf, err := loadCompiledFile(schemaPath)
	if err != nil {
		return nil, err
	}
	cfg, err := loadProjectConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", configPath, err)
	}
	p, err := resolver.Resolve(cf.Schema, resolver.OSEnvironment{}, cfg, resolver.HostOS())
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", schemaPath, err)
	}
	return p, nil
}

func newResolveCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "resolve <file.bpc>",
		Short: "Resolve a compiled schema into a plan, reporting any resolution errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveSchemaFile(args[0], configPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "resolved %d ops, topologically ordered: %v\n", len(p.Ops), p.IsTopologicallyOrdered())
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "blueprint.yaml", "project config file")
	return cmd
}
