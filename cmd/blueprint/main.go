// Command blueprint compiles, resolves, inspects and runs Blueprint
// schemas (spec.md's schema generator / plan resolver / streaming
// interpreter pipeline). Parsing Blueprint's own source syntax is an
// external collaborator (spec.md §1); see Frontend in frontend.go for
// the seam a real front-end plugs into.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "blueprint",
		Short:         "Compile, resolve, inspect and run Blueprint schemas",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(newCompileCmd(), newResolveCmd(), newPlanCmd(), newRunCmd())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "blueprint:", err)
		os.Exit(1)
	}
}
