// Command logexpr parses a boolean expression from the command line,
// reports its normalized form and tautology/contradiction verdicts, and
// optionally prints a minimized or DNF/CNF rendering (spec §6; grounded
// on the teacher's cmd/devcmd/main.go flag/exit-code layout, ported to
// cobra to match the pack's cobra-based CLI convention, e.g.
// jsturma-joblet's internal/rnx/jobs command set).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/logexpr/core/ast"
	"github.com/aledsdavies/logexpr/core/registry"
	"github.com/aledsdavies/logexpr/expr"
	"github.com/aledsdavies/logexpr/runtime/parser"
)

// Exit code constants, carried over from the teacher's main.go convention.
const (
	ExitSuccess          = 0
	ExitInvalidArguments = 1
	ExitParseError       = 2
	ExitEvaluationError  = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var (
		strategyFlag string
		minimize     bool
		dnf          bool
		cnf          bool
		noUnicode    bool
		noSuggest    bool
	)

	exitCode := ExitSuccess

	root := &cobra.Command{
		Use:           "logexpr <expression>",
		Short:         "Parse, normalize, and reason about a boolean expression",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := parseStrategy(strategyFlag)
			if err != nil {
				exitCode = ExitInvalidArguments
				return err
			}

			reg := registry.New()
			ast.RegisterFactories(reg)

			e, err := expr.Parse(reg, args[0],
				expr.WithStrategy(strategy),
				expr.WithUnicodeNormalization(!noUnicode),
				expr.WithAliasSuggestions(!noSuggest),
			)
			if err != nil {
				exitCode = ExitParseError
				return err
			}

			out, err := describe(e, minimize, dnf, cnf)
			if err != nil {
				exitCode = ExitEvaluationError
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	root.Flags().StringVar(&strategyFlag, "strategy", "shunting-yard", "Parser algorithm: 'shunting-yard' or 'pratt'")
	root.Flags().BoolVar(&minimize, "minimize", false, "Also print the BDD-minimized form")
	root.Flags().BoolVar(&dnf, "dnf", false, "Also print the disjunctive normal form")
	root.Flags().BoolVar(&cnf, "cnf", false, "Also print the conjunctive normal form")
	root.Flags().BoolVar(&noUnicode, "no-unicode-normalization", false, "Disable NFKC normalization before tokenizing")
	root.Flags().BoolVar(&noSuggest, "no-alias-suggestions", false, "Disable Levenshtein alias suggestions on unknown tokens")

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if exitCode == ExitSuccess {
			exitCode = ExitInvalidArguments
		}
		return exitCode
	}
	return exitCode
}

func parseStrategy(s string) (parser.Strategy, error) {
	switch s {
	case "shunting-yard", "":
		return parser.ShuntingYard, nil
	case "pratt":
		return parser.Pratt, nil
	default:
		return 0, fmt.Errorf("unknown --strategy %q (want 'shunting-yard' or 'pratt')", s)
	}
}

func describe(e *expr.Expression, minimize, dnf, cnf bool) (string, error) {
	var b strings.Builder

	normalized := e.Normalize()
	fmt.Fprintf(&b, "normalized: %s\n", normalized.Root().String())
	fmt.Fprintf(&b, "variables:  %s\n", strings.Join(e.VariableOrder(), ", "))

	taut, err := e.IsTautology()
	if err != nil {
		return "", err
	}
	contra, err := e.IsContradiction()
	if err != nil {
		return "", err
	}
	sat, err := e.IsSatisfiable()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "tautology:     %t\n", taut)
	fmt.Fprintf(&b, "contradiction: %t\n", contra)
	fmt.Fprintf(&b, "satisfiable:   %t\n", sat)

	if minimize {
		m, err := e.Minimize()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "minimized: %s\n", m.Root().String())
	}
	if dnf {
		d, err := e.ToDnf()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "dnf: %s\n", d.Root().String())
	}
	if cnf {
		c, err := e.ToCnf()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "cnf: %s\n", c.Root().String())
	}

	return b.String(), nil
}
