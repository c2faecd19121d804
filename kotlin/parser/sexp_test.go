package parser

import (
	"strings"
	"testing"
)

func TestParseSExpr(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "(a)", want: "(a)"},
		{input: "_", want: "_"},
		{input: " (a f: (b) _ ) ", want: "(a f: (b) _)"},
		{input: "(a\n\t(b (c))\n\tg: _)", want: "(a (b (c)) g: _)"},
		{input: "(a", wantErr: true},
		{input: "a", wantErr: true},
		{input: "()", wantErr: true},
		{input: "(a) (b)", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSExpr(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSExpr(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSExpr(%q): %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDiffTree(t *testing.T) {
	tree, err := Parse([]byte("1\n2"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		pattern string
		diffs   int
		contain string
	}{
		{"match", "(source_file (integer_literal) (integer_literal))", 0, ""},
		{"wildcards", "(source_file _ _)", 0, ""},
		{"fields", "(source_file statements: (integer_literal) statements: _)", 0, ""},
		{"wrong kind", "(source_file (integer_literal) (real_literal))", 1, "want real_literal, got integer_literal"},
		{"wrong field", "(source_file imports: (integer_literal) _)", 1, `want field "imports"`},
		{"missing child", "(source_file _ _ _)", 1, "missing child"},
		{"unexpected child", "(source_file _)", 1, "unexpected child (integer_literal)"},
		{"wrong root", "(block)", 1, "want block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diffs, err := DiffTree(tt.pattern, tree)
			if err != nil {
				t.Fatal(err)
			}
			if len(diffs) != tt.diffs {
				t.Fatalf("got %d diffs %q, want %d", len(diffs), diffs, tt.diffs)
			}
			if tt.contain != "" && !strings.Contains(diffs[0], tt.contain) {
				t.Errorf("diff %q does not mention %q", diffs[0], tt.contain)
			}
		})
	}

	if _, err := DiffTree("(source_file", tree); err == nil {
		t.Error("expected an error for a malformed pattern")
	}
}

func TestSExprOmitsAnonymousNodes(t *testing.T) {
	tree, err := Parse([]byte("// c\nf(/* a */)\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := "(source_file statements: (call_expression (simple_identifier) (call_suffix (value_arguments))))"
	if got := tree.SExpr(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
