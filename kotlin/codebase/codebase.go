package codebase

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/dhamidi/ktcst/kotlin/parser"
	"github.com/dhamidi/ktcst/project"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ktcst.codebase")

// Codebase holds the parsed files of a project. It is safe for concurrent
// use.
type Codebase struct {
	mu      sync.RWMutex
	project *project.Project
	files   map[string]*FileInfo
}

type FileInfo struct {
	Path    string
	Content []byte
	Tree    *parser.Node
	Errors  []*parser.Error
	Index   *parser.Index
	Symbols []Symbol
}

func New(proj *project.Project) *Codebase {
	return &Codebase{
		project: proj,
		files:   make(map[string]*FileInfo),
	}
}

func (c *Codebase) RootDir() string {
	return c.project.RootDir
}

func (c *Codebase) Project() *project.Project {
	return c.project
}

// ScanAll parses every project file in parallel.
func (c *Codebase) ScanAll(ctx context.Context) error {
	paths, err := c.project.Files()
	if err != nil {
		return err
	}
	files, err := parser.ParseFiles(ctx, paths, c.project.Config.Jobs)
	if err != nil {
		return fmt.Errorf("scan %s: %w", c.RootDir(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range files {
		c.files[f.Path] = newFileInfo(f.Path, f.Content, f.Tree, f.Errors)
	}
	log.Infof("scanned %d files in %s", len(files), c.RootDir())
	return nil
}

func (c *Codebase) ScanFile(path string) (*FileInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return c.UpdateFile(path, content), nil
}

// UpdateFile reparses path from content and replaces what was known
// about it.
func (c *Codebase) UpdateFile(path string, content []byte) *FileInfo {
	p := parser.ParseSourceFile(bytes.NewReader(content), parser.WithFile(path))
	tree := p.Finish()
	info := newFileInfo(path, content, tree, p.Errors())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = info
	return info
}

func newFileInfo(path string, content []byte, tree *parser.Node, errs []*parser.Error) *FileInfo {
	symbols := DocumentSymbols(tree)
	for i := range symbols {
		setPath(&symbols[i], path)
	}
	return &FileInfo{
		Path:    path,
		Content: content,
		Tree:    tree,
		Errors:  errs,
		Index:   parser.NewIndex(tree),
		Symbols: symbols,
	}
}

func setPath(s *Symbol, path string) {
	s.Path = path
	for i := range s.Children {
		setPath(&s.Children[i], path)
	}
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Paths returns the known files, sorted.
func (c *Codebase) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Symbols returns the document symbols of path, or nil for an unknown file.
func (c *Codebase) Symbols(path string) []Symbol {
	f := c.GetFile(path)
	if f == nil {
		return nil
	}
	return f.Symbols
}

// FindSymbols returns the symbols of all files whose name contains query,
// ignoring case. An empty query matches everything.
func (c *Codebase) FindSymbols(query string) []Symbol {
	query = strings.ToLower(query)
	var found []Symbol
	for _, path := range c.Paths() {
		walkSymbols(c.Symbols(path), func(s Symbol) {
			if strings.Contains(strings.ToLower(s.Name), query) {
				found = append(found, s)
			}
		})
	}
	return found
}

// ErrorCount sums the syntax errors over all files.
func (c *Codebase) ErrorCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, f := range c.files {
		n += len(f.Errors)
	}
	return n
}
