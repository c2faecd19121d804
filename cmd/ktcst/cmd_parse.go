package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/ktcst/format"
	"github.com/dhamidi/ktcst/kotlin/parser"
	"github.com/dhamidi/ktcst/project"
	"github.com/spf13/cobra"
)

func newParseCmd(o *options) *cobra.Command {
	var outputFormat string
	var text bool
	var positions bool
	var expression bool

	cmd := &cobra.Command{
		Use:   "parse <file|glob>...",
		Short: "Parse Kotlin files and print their syntax trees",
		Long: `Parse Kotlin files and print their syntax trees.

Syntax errors are printed to stderr; the tree is printed regardless and
contains ERROR nodes where the input was malformed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat == "" {
				outputFormat = o.proj.Config.Format
			}
			out := cmd.OutOrStdout()
			enc, err := format.New(outputFormat, out)
			if err != nil {
				return err
			}
			if tree, ok := enc.(*format.TreeEncoder); ok {
				tree.Positions = positions
			}
			renderer := o.renderer(false)

			if expression {
				errorCount := 0
				for i, src := range args {
					p := parser.ParseExpression(strings.NewReader(src), parser.WithFile(fmt.Sprintf("<arg %d>", i+1)))
					tree := p.Finish()
					if err := emit(out, enc, tree, text); err != nil {
						return err
					}
					if err := renderer.Render(cmd.ErrOrStderr(), []byte(src), p.Errors()); err != nil {
						return err
					}
					errorCount += len(p.Errors())
				}
				if errorCount > 0 {
					return errSyntax
				}
				return nil
			}

			paths, err := project.ExpandPaths(args)
			if err != nil {
				return err
			}
			files, err := parser.ParseFiles(cmd.Context(), paths, o.proj.Config.Jobs)
			if err != nil {
				return err
			}

			errorCount := 0
			for _, f := range files {
				if err := emit(out, enc, f.Tree, text); err != nil {
					return fmt.Errorf("encode %s: %w", f.Path, err)
				}
				if err := renderer.Render(cmd.ErrOrStderr(), f.Content, f.Errors); err != nil {
					return err
				}
				errorCount += len(f.Errors)
			}
			if errorCount > 0 {
				return errSyntax
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format ("+strings.Join(format.Names(), ", ")+"), default from the project")
	cmd.Flags().BoolVar(&text, "text", false, "print the text reassembled from the tree instead")
	cmd.Flags().BoolVar(&positions, "positions", false, "include node spans in tree output")
	cmd.Flags().BoolVarP(&expression, "expression", "e", false, "parse the arguments as expressions")

	return cmd
}

func emit(w io.Writer, enc format.Encoder, tree *parser.Node, text bool) error {
	if text {
		_, err := io.WriteString(w, tree.Text())
		return err
	}
	return enc.Encode(tree)
}
