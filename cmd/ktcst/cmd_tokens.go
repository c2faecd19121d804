package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dhamidi/ktcst/format"
	"github.com/dhamidi/ktcst/kotlin/parser"
	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	var significant bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the tokens of a Kotlin file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read kotlin file: %w", err)
			}

			tokens := parser.Tokenize(data, filename)
			if significant {
				// The parser cursor sees inferred terminators and no trivia.
				p := parser.ParseSourceFile(bytes.NewReader(data), parser.WithFile(filename))
				p.Finish()
				tokens = p.Tokens()
			}
			return format.NewTokenLineEncoder(cmd.OutOrStdout()).EncodeTokens(tokens)
		},
	}

	cmd.Flags().BoolVar(&significant, "significant", false, "print the parser's view: no trivia, inferred terminators")

	return cmd
}
