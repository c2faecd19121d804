package parser

import (
	"fmt"
	"strings"
)

// SExpr renders the named nodes of the subtree as an s-expression, one
// pair of parentheses per node, with field names as "field: " prefixes.
// Anonymous tokens and blank placeholders are left out.
func (n *Node) SExpr() string {
	var sb strings.Builder
	n.writeSExpr(&sb)
	return sb.String()
}

func (n *Node) writeSExpr(sb *strings.Builder) {
	sb.WriteString("(")
	sb.WriteString(n.Kind.String())
	for _, c := range n.Children {
		if !sexprVisible(c) {
			continue
		}
		sb.WriteString(" ")
		if c.Field != "" {
			sb.WriteString(c.Field)
			sb.WriteString(": ")
		}
		c.writeSExpr(sb)
	}
	sb.WriteString(")")
}

func sexprVisible(n *Node) bool {
	switch n.Kind {
	case KindBlank, KindLineComment, KindMultilineComment:
		return false
	}
	return n.IsNamed()
}

// Pattern is a parsed s-expression, see ParseSExpr.
type Pattern struct {
	kind     string
	field    string
	children []*Pattern
}

func (s *Pattern) String() string {
	var sb strings.Builder
	if s.field != "" {
		sb.WriteString(s.field + ": ")
	}
	if s.kind == "_" {
		sb.WriteString("_")
		return sb.String()
	}
	sb.WriteString("(" + s.kind)
	for _, c := range s.children {
		sb.WriteString(" " + c.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// ParseSExpr reads a pattern in the SExpr format. A bare "_" matches any
// single node.
func ParseSExpr(src string) (*Pattern, error) {
	r := &sexprReader{src: src}
	s, err := r.node()
	if err != nil {
		return nil, err
	}
	r.space()
	if r.pos < len(r.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d", r.src[r.pos:], r.pos)
	}
	return s, nil
}

type sexprReader struct {
	src string
	pos int
}

func (r *sexprReader) space() {
	for r.pos < len(r.src) && strings.ContainsRune(" \t\r\n", rune(r.src[r.pos])) {
		r.pos++
	}
}

func (r *sexprReader) word() string {
	start := r.pos
	for r.pos < len(r.src) && !strings.ContainsRune(" \t\r\n():", rune(r.src[r.pos])) {
		r.pos++
	}
	return r.src[start:r.pos]
}

func (r *sexprReader) node() (*Pattern, error) {
	r.space()
	if r.pos >= len(r.src) {
		return nil, fmt.Errorf("unexpected end of pattern")
	}
	if r.src[r.pos] != '(' {
		w := r.word()
		if w != "_" {
			return nil, fmt.Errorf("expected '(' at offset %d", r.pos)
		}
		return &Pattern{kind: "_"}, nil
	}
	r.pos++
	r.space()
	s := &Pattern{kind: r.word()}
	if s.kind == "" {
		return nil, fmt.Errorf("missing node kind at offset %d", r.pos)
	}
	for {
		r.space()
		if r.pos >= len(r.src) {
			return nil, fmt.Errorf("unclosed (%s", s.kind)
		}
		if r.src[r.pos] == ')' {
			r.pos++
			return s, nil
		}
		field := ""
		if r.src[r.pos] != '(' {
			save := r.pos
			w := r.word()
			if r.pos < len(r.src) && r.src[r.pos] == ':' {
				r.pos++
				field = w
			} else {
				r.pos = save
			}
		}
		c, err := r.node()
		if err != nil {
			return nil, err
		}
		c.field = field
		s.children = append(s.children, c)
	}
}

// DiffTree compares tree against a pattern in the SExpr format and
// returns one line per mismatch. An empty result means the tree matches.
func DiffTree(want string, tree *Node) ([]string, error) {
	pattern, err := ParseSExpr(want)
	if err != nil {
		return nil, fmt.Errorf("parsing pattern: %w", err)
	}
	var diffs []string
	diffSExpr(pattern, tree, tree.Kind.String(), &diffs)
	return diffs, nil
}

func diffSExpr(want *Pattern, got *Node, path string, diffs *[]string) {
	if want.kind == "_" {
		return
	}
	if want.kind != got.Kind.String() {
		*diffs = append(*diffs, fmt.Sprintf("%s: want %s, got %s", path, want.kind, got.Kind))
		return
	}

	var children []*Node
	for _, c := range got.Children {
		if sexprVisible(c) {
			children = append(children, c)
		}
	}
	for i, w := range want.children {
		if i >= len(children) {
			*diffs = append(*diffs, fmt.Sprintf("%s: missing child %s", path, w))
			continue
		}
		c := children[i]
		childPath := fmt.Sprintf("%s/%s[%d]", path, c.Kind, i)
		if w.field != "" && w.field != c.Field {
			*diffs = append(*diffs, fmt.Sprintf("%s: want field %q, got %q", childPath, w.field, c.Field))
		}
		diffSExpr(w, c, childPath, diffs)
	}
	for _, c := range children[min(len(want.children), len(children)):] {
		*diffs = append(*diffs, fmt.Sprintf("%s: unexpected child %s", path, c.SExpr()))
	}
}
