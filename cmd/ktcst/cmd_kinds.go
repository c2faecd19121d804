package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dhamidi/ktcst/kotlin/parser"
	"github.com/spf13/cobra"
)

var kindsSections = []string{"kinds", "fields", "conflicts", "operators", "aliases"}

func newKindsCmd() *cobra.Command {
	var hidden bool
	var section string

	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "Describe the grammar: node kinds, fields, conflicts, operators and aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if section != "" {
				if !slices.Contains(kindsSections, section) {
					return fmt.Errorf("unknown section %q (want one of %s)", section, strings.Join(kindsSections, ", "))
				}
				return printSection(out, section, hidden)
			}
			for i, s := range kindsSections {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "# %s\n", s)
				if err := printSection(out, s, hidden); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&hidden, "hidden", false, "include hidden kinds")
	cmd.Flags().StringVar(&section, "section", "", "print one section ("+strings.Join(kindsSections, ", ")+")")

	return cmd
}

func printSection(w io.Writer, section string, hidden bool) error {
	switch section {
	case "kinds":
		for _, k := range parser.Kinds() {
			if k.IsHidden() && !hidden {
				continue
			}
			class := "anonymous"
			switch {
			case k.IsHidden():
				class = "hidden"
			case k.IsNamed():
				class = "named"
			}
			line := fmt.Sprintf("%-36s %s", k, class)
			if p := parser.Placeholders(k); len(p) > 0 {
				line += "  always: " + strings.Join(p, ", ")
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	case "fields":
		for _, f := range parser.Fields() {
			fmt.Fprintln(w, f)
		}
	case "conflicts":
		for _, g := range parser.ConflictGroups() {
			var alts []string
			for _, a := range g.Ordered() {
				alts = append(alts, fmt.Sprintf("%s(%d)", a.Name, a.DynamicPrecedence))
			}
			fmt.Fprintf(w, "%-32s %s\n", g.Name, strings.Join(alts, " > "))
		}
	case "operators":
		table := parser.OperatorTable()
		tokens := make([]parser.TokenKind, 0, len(table))
		for tok := range table {
			tokens = append(tokens, tok)
		}
		// Tightest binding first.
		slices.SortFunc(tokens, func(a, b parser.TokenKind) int {
			if d := table[b].Level - table[a].Level; d != 0 {
				return d
			}
			return strings.Compare(a.String(), b.String())
		})
		for _, tok := range tokens {
			op := table[tok]
			rhs := ""
			if op.TypeRHS {
				rhs = " type"
			}
			fmt.Fprintf(w, "%-8s %-28s %2d %s%s\n", tok, op.Kind, op.Level, op.Assoc, rhs)
		}
	case "aliases":
		for _, a := range parser.Aliases() {
			fmt.Fprintf(w, "%s: %s -> %s\n", a[0], a[1], a[2])
		}
	}
	return nil
}
