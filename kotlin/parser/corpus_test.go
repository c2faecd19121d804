package parser

import (
	"strings"
	"testing"

	"github.com/dhamidi/ktcst/internal/corpora"
)

// Set KTCST_REFRESH to a glob such as "testdata/**" to rewrite outputs.
func TestCorpus(t *testing.T) {
	corpora.Corpus{
		Root:      "testdata",
		Refresh:   "KTCST_REFRESH",
		Extension: "kt",
		Outputs: []corpora.Output{
			{Extension: "errors"},
		},
		Test: func(t *testing.T, path, text string) []string {
			p := ParseSourceFile(strings.NewReader(text), WithFile(path))
			tree := p.Finish()
			if got := tree.Text(); got != text {
				t.Errorf("round trip:\n%s", corpora.UnifiedDiff("input", "tree", text, got))
			}
			return []string{ErrorList(p.Errors()).Messages()}
		},
	}.Run(t)
}
