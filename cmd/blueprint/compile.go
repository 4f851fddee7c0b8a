package main

import (
	"fmt"
	"os"

	"github.com/blueprint-lang/blueprint/internal/generator"
	"github.com/blueprint-lang/blueprint/internal/schema"
	"github.com/spf13/cobra"
)

func newCompileCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "compile <file.bp>",
		Short: "Compile a Blueprint source file into a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = args[0] + "c"
			}
			return runCompile(args[0], out)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output schema file path (default: <file>c)")
	return cmd
}

func runCompile(file, out string) error {
	mod, source, err := parseSource(file)
	if err != nil {
		return err
	}

	sc, err := generator.Generate(file, mod, newFSSourceLoader(file))
	if err != nil {
		return fmt.Errorf("generating schema: %w", err)
	}

	meta := &schema.Metadata{
		SourceFile:     file,
		SourceContent:  string(source),
		RequiredEnv:    collectEnvRefs(sc),
		RequiredConfig: collectConfigRefs(sc),
	}
	cf := schema.NewCompiledFile(sc, string(source), meta)

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()
	if err := schema.Save(f, cf); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(os.Stdout, "compiled %s -> %s (%d ops)\n", file, out, len(sc.Entries))
	return nil
}

// collectEnvRefs/collectConfigRefs walk every operand of every entry
// (including nested sub-plan bodies) for VEnvRef/VConfigRef names, so
// the compiled file's Metadata can tell a caller what a schema needs
// from its environment before resolution is attempted (spec.md §3.7).
func collectEnvRefs(sc schema.Schema) []string    { return collectRefs(sc, schema.VEnvRef) }
func collectConfigRefs(sc schema.Schema) []string { return collectRefs(sc, schema.VConfigRef) }

func collectRefs(sc schema.Schema, kind schema.ValueKind) []string {
	seen := map[string]bool{}
	var out []string
	note := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var walkValue func(schema.SchemaValue)
	walkValue = func(sv schema.SchemaValue) {
		switch sv.Kind {
		case kind:
			if kind == schema.VEnvRef {
				note(sv.EnvRef)
			} else {
				note(sv.ConfigRef)
			}
		case schema.VList:
			for _, item := range sv.List {
				walkValue(item)
			}
		}
	}
	var walkSubPlan func(*schema.SchemaSubPlan)
	var walkEntries func([]schema.SchemaEntry)
	walkValues := func(op schema.SchemaOp) {
		for _, sv := range []schema.SchemaValue{
			op.Path, op.Content, op.Src, op.Dst,
			op.Method, op.Url, op.Headers, op.Body,
			op.Host, op.Port, op.Handle, op.Data, op.MaxBytes,
			op.Command, op.Args, op.Name, op.Default,
			op.Seconds, op.Message, op.Value, op.Str,
			op.Left, op.Right, op.Values, op.Start,
			op.Collection, op.Index, op.NewValue,
			op.Cond, op.Then, op.Else,
			op.DependencyValue, op.Iterable,
		} {
			walkValue(sv)
		}
		walkSubPlan(op.LoopBody)
		walkSubPlan(op.ThenBody)
		walkSubPlan(op.ElseBody)
	}
	walkSubPlan = func(sp *schema.SchemaSubPlan) {
		if sp == nil {
			return
		}
		walkEntries(sp.Entries)
	}
	walkEntries = func(entries []schema.SchemaEntry) {
		for _, e := range entries {
			walkValues(e.Op)
		}
	}
	walkEntries(sc.Entries)
	return out
}
