// Package corpora runs table-driven tests whose table lives in a testdata
// directory: every input file is a case, and its expected outputs sit next
// to it under an extra extension.
package corpora

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// Corpus describes one directory of test cases.
type Corpus struct {
	// Root is relative to the directory of the test file calling Run.
	Root string

	// Refresh names an environment variable holding a glob. Cases whose
	// name matches it have their output files rewritten instead of checked.
	Refresh string

	// Extension selects the input files, without the dot.
	Extension string

	// Outputs are stored as <input>.<Extension>. A missing file means the
	// output is expected to be empty.
	Outputs []Output

	// Test runs one case and returns one string per element of Outputs.
	Test func(t *testing.T, path, text string) []string
}

// Output is one expected result of a case.
type Output struct {
	Extension string

	// Compare defaults to Diff.
	Compare func(got, want string) string
}

func (c Corpus) Run(t *testing.T) {
	t.Helper()
	testDir := callerDir()
	root := filepath.Join(testDir, c.Root)

	var cases []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.TrimPrefix(filepath.Ext(path), ".") == c.Extension {
			cases = append(cases, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("corpora: walking %s: %v", root, err)
	}
	if len(cases) == 0 {
		t.Fatalf("corpora: no .%s files in %s", c.Extension, root)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if refresh != "" && !doublestar.ValidatePattern(refresh) {
			t.Fatalf("corpora: %s=%q is not a valid glob", c.Refresh, refresh)
		}
	}
	if refresh != "" {
		// Refreshed outputs are unchecked, so the run as a whole must not pass.
		t.Logf("corpora: refreshing outputs matching %s=%s", c.Refresh, refresh)
		t.Fail()
	}

	for _, path := range cases {
		name, _ := filepath.Rel(testDir, path)
		name = filepath.ToSlash(name)
		t.Run(name, func(t *testing.T) {
			input, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("corpora: reading %s: %v", path, err)
			}
			results := c.Test(t, name, string(input))
			if len(results) != len(c.Outputs) {
				t.Fatalf("corpora: got %d results for %d outputs", len(results), len(c.Outputs))
			}

			rewrite := false
			if refresh != "" {
				rewrite, _ = doublestar.Match(refresh, name)
			}
			for i, output := range c.Outputs {
				outPath := path + "." + output.Extension
				if rewrite {
					if err := store(outPath, results[i]); err != nil {
						t.Errorf("corpora: %v", err)
					}
					continue
				}
				want, err := os.ReadFile(outPath)
				if err != nil && !errors.Is(err, fs.ErrNotExist) {
					t.Errorf("corpora: reading %s: %v", outPath, err)
					continue
				}
				compare := output.Compare
				if compare == nil {
					compare = Diff
				}
				if msg := compare(results[i], string(want)); msg != "" {
					t.Errorf("output mismatch for %s:\n%s", outPath, msg)
				}
			}
		})
	}
}

// store writes an output file, or removes it when the output is empty.
func store(path, content string) error {
	if content == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Diff returns a unified diff from want to got, or "" when they are equal.
func Diff(got, want string) string {
	return UnifiedDiff("want", "got", want, got)
}

// UnifiedDiff renders the changes from a to b with two lines of context.
func UnifiedDiff(fromFile, toFile, a, b string) string {
	if a == b {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: fromFile,
		ToFile:   toFile,
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

func callerDir() string {
	_, file, _, ok := runtime.Caller(2)
	if !ok {
		panic("corpora: cannot locate the calling test file")
	}
	return filepath.Dir(file)
}
