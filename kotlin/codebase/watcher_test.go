package codebase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcherScan(t *testing.T) {
	c, root := newTestCodebase(t, map[string]string{"a.kt": "class A\n"})
	a := filepath.Join(root, "a.kt")
	b := filepath.Join(root, "b.kt")

	changed := map[string]bool{}
	w := NewFileWatcher(c, time.Hour)
	w.OnChange = func(path string, info *FileInfo) {
		changed[path] = info != nil
	}

	w.Scan()
	assert.Equal(t, map[string]bool{a: true}, changed)
	require.NotNil(t, c.GetFile(a))

	clear(changed)
	require.NoError(t, os.WriteFile(b, []byte("class B\n"), 0o644))
	w.Scan()
	assert.Equal(t, map[string]bool{b: true}, changed, "unchanged files are not reparsed")

	clear(changed)
	require.NoError(t, os.WriteFile(a, []byte("class A2\n"), 0o644))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(a, later, later))
	w.Scan()
	assert.Equal(t, map[string]bool{a: true}, changed)
	assert.Equal(t, "A2", c.Symbols(a)[0].Name)

	clear(changed)
	require.NoError(t, os.Remove(a))
	w.Scan()
	assert.Equal(t, map[string]bool{a: false}, changed)
	assert.Nil(t, c.GetFile(a))
}

func TestFileWatcherSeededAfterScanAll(t *testing.T) {
	c, root := newTestCodebase(t, map[string]string{"a.kt": "class A\n", "b.kt": "class B\n"})
	require.NoError(t, c.ScanAll(context.Background()))
	d := filepath.Join(root, "d.kt")

	var changed []string
	w := NewFileWatcher(c, time.Hour)
	w.OnChange = func(path string, info *FileInfo) {
		changed = append(changed, path)
	}
	w.seed()

	w.Scan()
	assert.Empty(t, changed, "files parsed by ScanAll are not parsed again")

	require.NoError(t, os.WriteFile(d, []byte("class D\n"), 0o644))
	w.Scan()
	assert.Equal(t, []string{d}, changed)
}

func TestFileWatcherSkip(t *testing.T) {
	c, root := newTestCodebase(t, map[string]string{"a.kt": "class A\n"})
	a := filepath.Join(root, "a.kt")

	w := NewFileWatcher(c, 0)
	w.Skip = func(path string) bool { return path == a }
	w.Scan()
	assert.Nil(t, c.GetFile(a))
}

func TestFileWatcherStop(t *testing.T) {
	c, _ := newTestCodebase(t, nil)
	w := NewFileWatcher(c, time.Millisecond)
	w.Start()
	w.Stop()
	w.Stop()
}
