package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestLoadFromDefaults(t *testing.T) {
	proj, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, proj.ConfigPath)
	if diff := cmp.Diff(DefaultConfig(), proj.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFrom(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		ConfigFile: "include:\n  - src/**/*.kt\nformat: json\njobs: 4\n",
	})

	proj, err := LoadFrom(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigFile), proj.ConfigPath)

	want := DefaultConfig()
	want.Include = []string{"src/**/*.kt"}
	want.Format = "json"
	want.Jobs = 4
	if diff := cmp.Diff(want, proj.Config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{ConfigFile: "format: xml\n"})

	_, err := LoadFrom(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ConfigFile)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", ""},
		{"color", "color: never\n", ""},
		{"unknown key", "colour: always\n", "colour"},
		{"bad format", "format: xml\n", "unknown format"},
		{"bad color", "color: sometimes\n", "color must be"},
		{"negative jobs", "jobs: -1\n", "jobs"},
		{"bad glob", "include: ['a/[']\n", "invalid glob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.input))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/a.kt":         "",
		"src/sub/b.kts":    "",
		"src/readme.md":    "",
		"build/gen.kt":     "",
		"lib/build/x.kt":   "",
		"src/.gradle/y.kt": "",
	})

	proj, err := LoadFrom(root)
	require.NoError(t, err)
	files, err := proj.Files()
	require.NoError(t, err)

	want := []string{
		filepath.Join(root, "src", "a.kt"),
		filepath.Join(root, "src", "sub", "b.kts"),
	}
	assert.Equal(t, want, files)
}

func TestIncludes(t *testing.T) {
	root := t.TempDir()
	proj, err := LoadFrom(root)
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "a.kt"), true},
		{filepath.Join(root, "pkg", "b.kts"), true},
		{filepath.Join(root, "build", "c.kt"), false},
		{filepath.Join(root, "notes.txt"), false},
		{filepath.Join(filepath.Dir(root), "outside.kt"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, proj.Includes(tt.path), tt.path)
	}
}

func TestExpandPaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.kt":   "",
		"b.kt":   "",
		"c.java": "",
	})
	a := filepath.Join(root, "a.kt")
	b := filepath.Join(root, "b.kt")

	paths, err := ExpandPaths([]string{a, filepath.Join(root, "*.kt")})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, paths, "duplicates are dropped")

	_, err = ExpandPaths([]string{filepath.Join(root, "*.kts")})
	assert.ErrorContains(t, err, "no such file")
}

func TestFindEntrypoints(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"DropZoneApp.kt": "package com.example.app\n\nfun main(args: Array<String>) {\n}\n",
		"lib.kt":         "fun helper() = 1\n",
		"ext.kt":         "fun String.main() {}\n",
		"script.kt":      "fun main() = println(\"hi\")\n",
	})
	proj, err := LoadFrom(root)
	require.NoError(t, err)

	got, err := proj.FindEntrypoints(context.Background())
	require.NoError(t, err)

	want := []Entrypoint{
		{
			File:      filepath.Join(root, "DropZoneApp.kt"),
			Package:   "com.example.app",
			ClassName: "DropZoneAppKt",
			FullName:  "com.example.app.DropZoneAppKt",
			Slug:      "drop-zone-app",
		},
		{
			File:      filepath.Join(root, "script.kt"),
			ClassName: "ScriptKt",
			FullName:  "ScriptKt",
			Slug:      "script",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entrypoints mismatch (-want +got):\n%s", diff)
	}
}

func TestFacadeClassName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"main", "MainKt"},
		{"App", "AppKt"},
		{"my-app", "My_appKt"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, facadeClassName(tt.input))
		})
	}
}
