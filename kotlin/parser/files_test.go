package parser

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	sources := map[string]string{
		"a.kt": "fun a() = 1\n",
		"b.kt": "class B {\n",
		"c.kt": "val c = \"ok\"\n",
	}
	var paths []string
	for _, name := range []string{"a.kt", "b.kt", "c.kt"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(sources[name]), 0o644))
		paths = append(paths, path)
	}

	files, err := ParseFiles(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, files, 3)

	for i, f := range files {
		assert.Equal(t, paths[i], f.Path, "results keep the order of paths")
		assert.Equal(t, sources[filepath.Base(f.Path)], f.Tree.Text())
	}
	assert.Empty(t, files[0].Errors)
	assert.NotEmpty(t, files[1].Errors, "syntax errors are reported per file")
	assert.Equal(t, paths[1], files[1].Errors[0].Span.Start.File)
}

func TestParseFilesMissing(t *testing.T) {
	_, err := ParseFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing.kt")}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseFileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ParseFile(ctx, "x.kt", []byte("val x = 1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMarshalJSON(t *testing.T) {
	tree, _ := Parse([]byte("val x ="))
	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var root struct {
		Kind     string `json:"kind"`
		Children []struct {
			Kind     string `json:"kind"`
			Field    string `json:"field"`
			Children []struct {
				Kind  string `json:"kind"`
				Field string `json:"field"`
				Error *struct {
					Kind    string `json:"kind"`
					Message string `json:"message"`
				} `json:"error"`
			} `json:"children"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal(data, &root))
	assert.Equal(t, "source_file", root.Kind)

	var found bool
	for _, c := range root.Children {
		if c.Kind != "property_declaration" {
			continue
		}
		assert.Equal(t, FieldStatements, c.Field)
		for _, gc := range c.Children {
			if gc.Kind == "ERROR" {
				found = true
				assert.Equal(t, FieldValue, gc.Field)
				require.NotNil(t, gc.Error)
				assert.Equal(t, "SyntaxError", gc.Error.Kind)
				assert.Equal(t, "expected expression", gc.Error.Message)
			}
		}
	}
	assert.True(t, found, "ERROR node with its error in %s", data)
}
