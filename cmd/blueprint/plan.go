package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/blueprint-lang/blueprint/internal/plan"
	"github.com/spf13/cobra"
)

const (
	colorBold   = "\033[1m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

func newPlanCmd() *cobra.Command {
	var configPath string
	var noColor bool
	cmd := &cobra.Command{
		Use:   "plan <file.bpc>",
		Short: "Resolve a compiled schema and print its dependency tree without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveSchemaFile(args[0], configPath)
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stdout, formatPlan(p, !noColor))
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "blueprint.yaml", "project config file")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI color in the tree output")
	return cmd
}

// formatPlan renders p as a human-readable dependency tree (op id, kind,
// inputs, guard), the dry-run presentation layer over §5's execution
// semantics (no op actually runs).
func formatPlan(p *plan.Plan, color bool) string {
	var b strings.Builder
	header := "plan"
	if color {
		b.WriteString(fmt.Sprintf("%s%s%s:%s\n", colorBold, colorBlue, header, colorReset))
	} else {
		b.WriteString(header + ":\n")
	}
	for i, op := range p.Ops {
		formatOp(&b, op, "", i == len(p.Ops)-1, color)
	}
	return b.String()
}

func formatOp(b *strings.Builder, op plan.Op, prefix string, isLast bool, color bool) {
	connector, nextPrefix := "├─ ", prefix+"│  "
	if isLast {
		connector, nextPrefix = "└─ ", prefix+"   "
	}

	line := fmt.Sprintf("#%d %s", op.ID, op.Payload.Kind)
	if len(op.Inputs) > 0 {
		line += fmt.Sprintf(" <- %v", op.Inputs)
	}
	if op.Guard != nil {
		line += fmt.Sprintf(" [guard #%d]", *op.Guard)
	}
	if color {
		b.WriteString(fmt.Sprintf("%s%s%s%s%s%s\n", prefix, connector, colorCyan, line, colorReset, colorGray))
	} else {
		b.WriteString(prefix + connector + line + "\n")
	}

	for _, sub := range subPlansOf(op.Payload) {
		formatSubPlan(b, sub.label, sub.body, nextPrefix, color)
	}
}

type labeledSubPlan struct {
	label string
	body  *plan.SubPlan
}

func subPlansOf(p plan.Payload) []labeledSubPlan {
	var out []labeledSubPlan
	if p.LoopBody != nil {
		out = append(out, labeledSubPlan{"body", p.LoopBody})
	}
	if p.ThenBody != nil {
		out = append(out, labeledSubPlan{"then", p.ThenBody})
	}
	if p.ElseBody != nil {
		out = append(out, labeledSubPlan{"else", p.ElseBody})
	}
	return out
}

func formatSubPlan(b *strings.Builder, label string, sp *plan.SubPlan, prefix string, color bool) {
	if color {
		b.WriteString(fmt.Sprintf("%s%s%s(%s, output=#%d)%s\n", prefix, colorYellow, label, strings.Join(sp.Params, ","), sp.Output, colorReset))
	} else {
		b.WriteString(fmt.Sprintf("%s%s(%s, output=#%d)\n", prefix, label, strings.Join(sp.Params, ","), sp.Output))
	}
	for i, op := range sp.Ops {
		formatOp(b, op, prefix, i == len(sp.Ops)-1, color)
	}
}
