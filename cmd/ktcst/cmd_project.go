package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProjectCmd(o *options) *cobra.Command {
	var files bool

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show the project configuration and its entry points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			proj := o.proj

			paths, err := proj.Files()
			if err != nil {
				return err
			}
			if files {
				for _, p := range paths {
					fmt.Fprintln(out, p)
				}
				return nil
			}

			config := proj.ConfigPath
			if config == "" {
				config = "(defaults)"
			}
			fmt.Fprintf(out, "Root:    %s\n", proj.RootDir)
			fmt.Fprintf(out, "Config:  %s\n", config)
			fmt.Fprintf(out, "Format:  %s\n", proj.Config.Format)
			fmt.Fprintf(out, "Files:   %d\n", len(paths))

			entrypoints, err := proj.FindEntrypoints(cmd.Context())
			if err != nil {
				return err
			}
			if len(entrypoints) == 0 {
				return nil
			}
			fmt.Fprintln(out, "\nEntry points:")
			for _, ep := range entrypoints {
				fmt.Fprintf(out, "  %-24s %s (%s)\n", ep.Slug, ep.FullName, ep.File)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&files, "files", false, "list the project files only")

	return cmd
}
