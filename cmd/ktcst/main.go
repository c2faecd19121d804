package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhamidi/ktcst/format"
	"github.com/dhamidi/ktcst/project"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/kutil/util"
)

const version = "0.1.0"

var log = commonlog.GetLogger("ktcst")

// errSyntax reports that input had syntax errors. They are printed as
// diagnostics already.
var errSyntax = errors.New("syntax errors")

type options struct {
	verbose int
	logFile string
	color   string
	jobs    int
	dir     string

	proj *project.Project
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ktcst",
		Short:         "Concrete syntax trees for Kotlin",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbose, "verbose", "v", "add verbosity (repeatable)")
	flags.StringVar(&opts.logFile, "log", "", "log to this file instead of stderr")
	flags.StringVar(&opts.color, "color", "auto", "colored diagnostics (auto, always, never)")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "files parsed in parallel (0 for no limit)")
	flags.StringVarP(&opts.dir, "dir", "C", ".", "project directory")

	rootCmd.AddCommand(newParseCmd(opts))
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newReplCmd(opts))
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newKindsCmd())
	rootCmd.AddCommand(newProjectCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errSyntax) {
			fmt.Fprintln(os.Stderr, "ktcst:", err)
		}
		util.Exit(1)
	}
	util.Exit(0)
}

// setup loads the project configuration and lets flags override it.
func (o *options) setup(cmd *cobra.Command) error {
	proj, err := project.LoadFrom(o.dir)
	if err != nil {
		return err
	}

	cfg := &proj.Config
	flags := cmd.Flags()
	if flags.Changed("color") {
		cfg.Color = o.color
	}
	if flags.Changed("jobs") {
		cfg.Jobs = o.jobs
	}
	if flags.Changed("verbose") {
		cfg.Verbosity = o.verbose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.proj = proj

	var path *string
	if o.logFile != "" {
		path = &o.logFile
	}
	commonlog.Configure(cfg.Verbosity, path)
	if proj.ConfigPath != "" {
		log.Debugf("using %s", proj.ConfigPath)
	}
	return nil
}

func (o *options) colorize(f *os.File) bool {
	switch o.proj.Config.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return termenv.NewOutput(f).ColorProfile() != termenv.Ascii
}

func (o *options) renderer(compact bool) format.DiagnosticRenderer {
	return format.DiagnosticRenderer{
		Compact:  compact,
		Colorize: o.colorize(os.Stderr),
		MaxWidth: 160,
	}
}
