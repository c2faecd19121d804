package main

import (
	"fmt"

	"github.com/dhamidi/ktcst/internal/corpora"
	"github.com/dhamidi/ktcst/kotlin/parser"
	"github.com/dhamidi/ktcst/project"
	"github.com/spf13/cobra"
)

func newCheckCmd(o *options) *cobra.Command {
	var compact bool
	var roundtrip bool

	cmd := &cobra.Command{
		Use:   "check [file|glob]...",
		Short: "Report syntax errors, by default for every project file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var paths []string
			var err error
			if len(args) == 0 {
				paths, err = o.proj.Files()
			} else {
				paths, err = project.ExpandPaths(args)
			}
			if err != nil {
				return err
			}

			files, err := parser.ParseFiles(cmd.Context(), paths, o.proj.Config.Jobs)
			if err != nil {
				return err
			}
			log.Infof("checking %d files", len(files))

			stderr := cmd.ErrOrStderr()
			renderer := o.renderer(compact)
			errorCount, failedFiles := 0, 0
			for _, f := range files {
				problems := len(f.Errors)
				if err := renderer.Render(stderr, f.Content, f.Errors); err != nil {
					return err
				}
				if roundtrip {
					if got := f.Tree.Text(); got != string(f.Content) {
						fmt.Fprintf(stderr, "%s: tree text differs from the source\n", f.Path)
						fmt.Fprint(stderr, corpora.UnifiedDiff(f.Path, f.Path+" (tree)", string(f.Content), got))
						problems++
					}
					for _, m := range parser.MissingPlaceholders(f.Tree) {
						fmt.Fprintf(stderr, "%s: %s\n", f.Path, m)
						problems++
					}
				}
				if problems > 0 {
					errorCount += problems
					failedFiles++
				}
			}

			fmt.Fprint(stderr, renderer.Summary(errorCount, failedFiles))
			if errorCount > 0 {
				return errSyntax
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "one line per error")
	cmd.Flags().BoolVar(&roundtrip, "roundtrip", false, "also verify that trees reproduce their source")

	return cmd
}
