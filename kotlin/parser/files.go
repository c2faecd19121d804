package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// File is the result of parsing one file from disk.
type File struct {
	Path    string
	Content []byte
	Tree    *Node
	Errors  []*Error
}

// ParseFiles parses paths concurrently, at most jobs at a time (all at
// once when jobs <= 0). Syntax errors are reported per file; the returned
// error is for unreadable files and cancellation only. Results are in the
// order of paths.
func ParseFiles(ctx context.Context, paths []string, jobs int, opts ...Option) ([]*File, error) {
	files := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			f, err := ParseFile(ctx, path, content, opts...)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// ParseFile parses content as the file at path.
func ParseFile(ctx context.Context, path string, content []byte, opts ...Option) (*File, error) {
	opts = append([]Option{WithFile(path)}, opts...)
	p := ParseSourceFile(bytes.NewReader(content), opts...)
	tree, err := p.FinishContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	log.Debugf("parsed %s: %d errors", path, len(p.Errors()))
	return &File{
		Path:    path,
		Content: content,
		Tree:    tree,
		Errors:  p.Errors(),
	}, nil
}
