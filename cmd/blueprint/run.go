package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/blueprint-lang/blueprint/internal/interpreter"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var dryRun bool
	var maxConcurrent int
	var watch bool
	cmd := &cobra.Command{
		Use:   "run <file.bpc>",
		Short: "Resolve a compiled schema into a plan and execute it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaPath := args[0]
			x := interpreter.New()
			x.DryRun = dryRun
			if maxConcurrent > 0 {
				x.MaxConcurrent = maxConcurrent
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !watch {
				return execOnce(ctx, x, schemaPath, configPath)
			}
			return watchAndRun(ctx, x, schemaPath, configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "blueprint.yaml", "project config file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "resolve dependency shape without running any op (spec.md §5)")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "bound on simultaneously active op tasks (default 64)")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-resolve and rerun whenever the schema or config file changes")
	return cmd
}

func execOnce(ctx context.Context, x *interpreter.Executor, schemaPath, configPath string) error {
	p, err := resolveSchemaFile(schemaPath, configPath)
	if err != nil {
		return err
	}
	if _, err := x.Run(ctx, p); err != nil {
		return fmt.Errorf("running %s: %w", schemaPath, err)
	}
	fmt.Fprintf(os.Stdout, "ran %s (%d ops)\n", schemaPath, len(p.Ops))
	return nil
}

// watchAndRun backs --watch (SPEC_FULL.md §D.2): re-resolve and rerun
// every time the schema file or project config changes, the way the
// teacher's own file-watch tooling reuses fsnotify for a development
// loop instead of polling.
func watchAndRun(ctx context.Context, x *interpreter.Executor, schemaPath, configPath string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range []string{schemaPath, configPath} {
		if _, err := os.Stat(p); err == nil {
			if err := watcher.Add(p); err != nil {
				return fmt.Errorf("watching %s: %w", p, err)
			}
		}
	}

	if err := execOnce(ctx, x, schemaPath, configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stdout, "%s changed, rerunning...\n", ev.Name)
			if err := execOnce(ctx, x, schemaPath, configPath); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}
