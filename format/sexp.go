package format

import (
	"io"

	"github.com/dhamidi/ktcst/kotlin/parser"
)

// SExprEncoder writes one s-expression line per tree.
type SExprEncoder struct {
	w io.Writer
}

func NewSExprEncoder(w io.Writer) *SExprEncoder {
	return &SExprEncoder{w: w}
}

func (e *SExprEncoder) Encode(node *parser.Node) error {
	return write(e.w, e.MarshalText, node)
}

func (e *SExprEncoder) MarshalText(node *parser.Node) ([]byte, error) {
	return []byte(node.SExpr() + "\n"), nil
}

// TreeEncoder writes the indented dump of Node.String, every token
// included.
type TreeEncoder struct {
	w io.Writer

	// Positions adds the span of every node.
	Positions bool
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(node *parser.Node) error {
	return write(e.w, e.MarshalText, node)
}

func (e *TreeEncoder) MarshalText(node *parser.Node) ([]byte, error) {
	if e.Positions {
		return []byte(node.StringWithPositions()), nil
	}
	return []byte(node.String()), nil
}
