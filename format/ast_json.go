package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/ktcst/kotlin/parser"
	"github.com/iancoleman/strcase"
)

// ASTJSONEncoder writes the full tree, anonymous tokens included, as
// indented JSON.
type ASTJSONEncoder struct {
	w io.Writer
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(node *parser.Node) error {
	return write(e.w, e.MarshalText, node)
}

func (e *ASTJSONEncoder) MarshalText(node *parser.Node) ([]byte, error) {
	text, err := json.MarshalIndent(nodeToAST(node), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(text, '\n'), nil
}

type astNode struct {
	Kind     string     `json:"kind" yaml:"kind"`
	Field    string     `json:"field,omitempty" yaml:"field,omitempty"`
	Span     *astSpan   `json:"span,omitempty" yaml:"span,omitempty"`
	Token    *string    `json:"token,omitempty" yaml:"token,omitempty"`
	Error    *astError  `json:"error,omitempty" yaml:"error,omitempty"`
	Children []*astNode `json:"children,omitempty" yaml:"children,omitempty"`
}

type astSpan struct {
	Start astPosition `json:"start" yaml:"start"`
	End   astPosition `json:"end" yaml:"end"`
}

type astPosition struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

type astError struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Message  string   `json:"message" yaml:"message"`
	Expected []string `json:"expected,omitempty" yaml:"expected,omitempty"`
	Got      string   `json:"got,omitempty" yaml:"got,omitempty"`
}

// ErrorCode is the snake_case name of an error kind, as used in
// encoded trees and editor diagnostics.
func ErrorCode(kind parser.ErrorKind) string {
	return strcase.ToSnake(kind.String())
}

func nodeToAST(n *parser.Node) *astNode {
	an := &astNode{
		Kind:  n.Kind.String(),
		Field: n.Field,
	}

	if n.Span.Start.Line != 0 || n.Span.End.Line != 0 {
		an.Span = &astSpan{
			Start: toPosition(n.Span.Start),
			End:   toPosition(n.Span.End),
		}
	}

	if n.Token != nil {
		lit := n.Token.Literal
		an.Token = &lit
	}

	if n.Error != nil {
		an.Error = &astError{
			Kind:    ErrorCode(n.Error.Kind),
			Message: n.Error.Message,
		}
		for _, exp := range n.Error.Expected {
			an.Error.Expected = append(an.Error.Expected, exp.String())
		}
		if n.Error.Got != nil {
			an.Error.Got = n.Error.Got.Literal
		}
	}

	if len(n.Children) > 0 {
		an.Children = make([]*astNode, len(n.Children))
		for i, child := range n.Children {
			an.Children[i] = nodeToAST(child)
		}
	}

	return an
}

func toPosition(p parser.Position) astPosition {
	return astPosition{Offset: p.Offset, Line: p.Line, Column: p.Column}
}
