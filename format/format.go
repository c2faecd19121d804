package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/ktcst/kotlin/parser"
)

type Encoder interface {
	Encode(node *parser.Node) error
	MarshalText(node *parser.Node) ([]byte, error)
}

var encoders = map[string]func(io.Writer) Encoder{
	"sexp":   func(w io.Writer) Encoder { return NewSExprEncoder(w) },
	"json":   func(w io.Writer) Encoder { return NewASTJSONEncoder(w) },
	"yaml":   func(w io.Writer) Encoder { return NewYAMLEncoder(w) },
	"tree":   func(w io.Writer) Encoder { return NewTreeEncoder(w) },
	"tokens": func(w io.Writer) Encoder { return NewTokenLineEncoder(w) },
}

// Names lists the registered output formats.
func Names() []string {
	return []string{"sexp", "json", "yaml", "tree", "tokens"}
}

// New returns the encoder registered under name.
func New(name string, w io.Writer) (Encoder, error) {
	mk, ok := encoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return mk(w), nil
}

func write(w io.Writer, m func(*parser.Node) ([]byte, error), node *parser.Node) error {
	text, err := m(node)
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
