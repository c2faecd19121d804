package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/ktcst/format"
	"github.com/dhamidi/ktcst/kotlin/parser"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const (
	promptMain     = "kt> "
	promptContinue = "... "
	historyFile    = ".ktcst_history"
)

func newReplCmd(o *options) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Parse Kotlin interactively",
		Long: `Parse Kotlin interactively.

Input is read until it forms complete declarations or statements, then
its tree is printed. An empty line submits incomplete input as is.
Commands: :format <name>, :help, :quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat == "" {
				outputFormat = o.proj.Config.Format
			}
			r := &repl{
				out:      cmd.OutOrStdout(),
				errOut:   cmd.ErrOrStderr(),
				renderer: o.renderer(false),
			}
			if err := r.setFormat(outputFormat); err != nil {
				return err
			}
			return r.run()
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format, default from the project")

	return cmd
}

type repl struct {
	out      io.Writer
	errOut   io.Writer
	renderer format.DiagnosticRenderer
	format   string
	enc      format.Encoder
}

func (r *repl) setFormat(name string) error {
	enc, err := format.New(name, r.out)
	if err != nil {
		return err
	}
	r.format, r.enc = name, enc
	return nil
}

func (r *repl) run() error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	history := historyPath()
	if f, err := os.Open(history); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(history); err == nil {
			ln.WriteHistory(f)
			f.Close()
		} else {
			log.Warningf("history: %s", err)
		}
	}()

	fmt.Fprintf(r.out, "ktcst %s, :help for commands\n", version)
	for {
		src, ok := readUntilComplete(ln)
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(src)

		if strings.HasPrefix(trimmed, ":") {
			if quit := r.command(trimmed); quit {
				return nil
			}
			continue
		}
		r.eval(src)
	}
}

// command runs a colon command and reports whether the session ends.
func (r *repl) command(line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":format", ":f":
		if len(fields) != 2 {
			fmt.Fprintf(r.out, "format is %s (%s)\n", r.format, strings.Join(format.Names(), ", "))
			break
		}
		if err := r.setFormat(fields[1]); err != nil {
			fmt.Fprintln(r.errOut, err)
		}
	case ":help", ":h":
		fmt.Fprintln(r.out, ":format <name>  switch the output format")
		fmt.Fprintln(r.out, ":quit           leave")
	default:
		fmt.Fprintf(r.errOut, "unknown command %s\n", fields[0])
	}
	return false
}

func (r *repl) eval(src string) {
	p := parser.ParseSourceFile(strings.NewReader(src), parser.WithFile("<repl>"))
	tree := p.Finish()
	if err := r.enc.Encode(tree); err != nil {
		fmt.Fprintln(r.errOut, err)
	}
	if err := r.renderer.Render(r.errOut, []byte(src), p.Errors()); err != nil {
		fmt.Fprintln(r.errOut, err)
	}
}

// readUntilComplete reads lines until the parser accepts them as a whole,
// or the user enters an empty continuation line. It reports false at the
// end of input.
func readUntilComplete(ln *liner.State) (string, bool) {
	var sb strings.Builder
	p := parser.ParseSourceFile(strings.NewReader(""))
	for {
		prompt := promptMain
		if sb.Len() > 0 {
			prompt = promptContinue
		}
		line, err := ln.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			return "", true
		case errors.Is(err, io.EOF):
			return sb.String(), sb.Len() > 0
		case err != nil:
			log.Errorf("%s", err)
			return "", false
		}

		if sb.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return sb.String(), true
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(line)

		src := strings.TrimSpace(sb.String())
		if src == "" || strings.HasPrefix(src, ":") {
			return sb.String(), true
		}
		p.Reset(strings.NewReader(sb.String()))
		if p.IsComplete() {
			return sb.String(), true
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}
