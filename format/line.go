package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/ktcst/kotlin/parser"
)

// TokenLineEncoder writes one tab-separated line per token:
// position, token kind, quoted literal and, for tree leaves, the kind of
// the enclosing node.
type TokenLineEncoder struct {
	w io.Writer
}

func NewTokenLineEncoder(w io.Writer) *TokenLineEncoder {
	return &TokenLineEncoder{w: w}
}

func (e *TokenLineEncoder) Encode(node *parser.Node) error {
	return write(e.w, e.MarshalText, node)
}

func (e *TokenLineEncoder) MarshalText(node *parser.Node) ([]byte, error) {
	var sb strings.Builder
	var walk func(n, parent *parser.Node)
	walk = func(n, parent *parser.Node) {
		if n.Token != nil {
			owner := n.Kind
			if parent != nil && n.Kind == parser.KindToken {
				owner = parent.Kind
			}
			writeToken(&sb, *n.Token)
			fmt.Fprintf(&sb, "\t%s\n", owner)
			return
		}
		for _, c := range n.Children {
			walk(c, n)
		}
	}
	walk(node, nil)
	return []byte(sb.String()), nil
}

// EncodeTokens writes a raw token stream, trivia included.
func (e *TokenLineEncoder) EncodeTokens(tokens []parser.Token) error {
	var sb strings.Builder
	for _, tok := range tokens {
		writeToken(&sb, tok)
		sb.WriteString("\n")
	}
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func writeToken(sb *strings.Builder, tok parser.Token) {
	fmt.Fprintf(sb, "%d:%d\t%s\t%q", tok.Span.Start.Line, tok.Span.Start.Column, tok.Kind, tok.Literal)
}
