package codebase

import (
	"bytes"
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dhamidi/ktcst/format"
	"github.com/dhamidi/ktcst/kotlin/parser"
	"github.com/dhamidi/ktcst/project"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const lsName = "ktcst"

var byteOrderMark = []byte("\ufeff")

// LSPServer reports syntax errors as diagnostics and answers symbol
// queries for the Kotlin files of one project.
type LSPServer struct {
	codebase *Codebase
	watcher  *FileWatcher
	handler  protocol.Handler
	server   *server.Server
	version  string

	mu     sync.Mutex
	open   map[string]bool
	notify glsp.NotifyFunc
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version: version,
		open:    make(map[string]bool),
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		WorkspaceSymbol:            ls.workspaceSymbol,
		TextDocumentHover:          ls.textDocumentHover,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) RunTCP(address string) error {
	return ls.server.RunTCP(address)
}

func (ls *LSPServer) RunWebSocket(address string) error {
	return ls.server.RunWebSocket(address)
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	} else if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	}

	proj, err := project.LoadFrom(rootDir)
	if err != nil {
		log.Warningf("%s, using defaults", err)
		proj = &project.Project{RootDir: rootDir, Config: project.DefaultConfig()}
	}
	ls.codebase = New(proj)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.DocumentSymbolProvider = true
	capabilities.WorkspaceSymbolProvider = true
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.mu.Lock()
	ls.notify = ctx.Notify
	ls.mu.Unlock()

	if err := ls.codebase.ScanAll(context.Background()); err != nil {
		log.Errorf("%s", err)
	}
	for _, path := range ls.codebase.Paths() {
		ls.publish(path, ls.codebase.GetFile(path))
	}

	ls.watcher = NewFileWatcher(ls.codebase, time.Second)
	ls.watcher.Skip = ls.isOpen
	ls.watcher.OnChange = ls.publish
	ls.watcher.Start()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.setOpen(path, true)
	ls.publishTo(ctx.Notify, path, ls.codebase.UpdateFile(path, []byte(params.TextDocument.Text)))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.publishTo(ctx.Notify, path, ls.codebase.UpdateFile(path, []byte(textChange.Text)))
		}
	}
	return nil
}

// textDocumentDidClose drops the editor buffer. Project files fall back
// to their content on disk; other files are forgotten.
func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.setOpen(path, false)
	if ls.codebase.Project().Includes(path) {
		if f, err := ls.codebase.ScanFile(path); err == nil {
			ls.publishTo(ctx.Notify, path, f)
			return nil
		}
	}
	ls.codebase.RemoveFile(path)
	ls.publishTo(ctx.Notify, path, nil)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	var f *FileInfo
	if params.Text != nil {
		f = ls.codebase.UpdateFile(path, []byte(*params.Text))
	} else if f, err = ls.codebase.ScanFile(path); err != nil {
		return nil
	}
	ls.publishTo(ctx.Notify, path, f)
	return nil
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	f := ls.codebase.GetFile(path)
	if f == nil {
		return []protocol.DocumentSymbol{}, nil
	}
	return toDocumentSymbols(f.Content, f.Symbols), nil
}

func (ls *LSPServer) workspaceSymbol(ctx *glsp.Context, params *protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	symbols := []protocol.SymbolInformation{}
	for _, s := range ls.codebase.FindSymbols(params.Query) {
		f := ls.codebase.GetFile(s.Path)
		if f == nil {
			continue
		}
		symbols = append(symbols, protocol.SymbolInformation{
			Name: s.Name,
			Kind: toSymbolKind(s.Kind),
			Location: protocol.Location{
				URI:   pathToURI(s.Path),
				Range: toRange(f.Content, s.NameSpan),
			},
		})
	}
	return symbols, nil
}

// textDocumentHover shows the chain of node kinds enclosing the cursor.
func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	f := ls.codebase.GetFile(path)
	if f == nil {
		return nil, nil
	}
	var nodes []*parser.Node
	for _, n := range f.Index.Path(fromPosition(f.Content, params.Position)) {
		if n.IsNamed() {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindPlainText,
			Value: kindPath(nodes),
		},
		Range: ptrTo(toRange(f.Content, nodes[len(nodes)-1].Span)),
	}, nil
}

func kindPath(nodes []*parser.Node) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Kind.String()
	}
	return strings.Join(names, " > ")
}

func (ls *LSPServer) setOpen(path string, open bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if open {
		ls.open[path] = true
	} else {
		delete(ls.open, path)
	}
}

func (ls *LSPServer) isOpen(path string) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.open[path]
}

// publish sends diagnostics outside of a request, e.g. for the watcher.
func (ls *LSPServer) publish(path string, f *FileInfo) {
	ls.mu.Lock()
	notify := ls.notify
	ls.mu.Unlock()
	if notify != nil {
		ls.publishTo(notify, path, f)
	}
}

// publishTo reports the errors of f. A nil f clears the diagnostics.
func (ls *LSPServer) publishTo(notify glsp.NotifyFunc, path string, f *FileInfo) {
	diagnostics := []protocol.Diagnostic{}
	if f != nil {
		diagnostics = toDiagnostics(f.Content, f.Errors)
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Diagnostics: diagnostics,
	})
}

func toDiagnostics(content []byte, errs []*parser.Error) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(errs))
	source := lsName
	for _, e := range errs {
		severity := protocol.DiagnosticSeverityError
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    toRange(content, e.Span),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: format.ErrorCode(e.Kind)},
			Source:   &source,
			Message:  e.Message,
		})
	}
	return diagnostics
}

func toDocumentSymbols(content []byte, symbols []Symbol) []protocol.DocumentSymbol {
	result := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, s := range symbols {
		detail := s.Kind.String()
		result = append(result, protocol.DocumentSymbol{
			Name:           s.Name,
			Detail:         &detail,
			Kind:           toSymbolKind(s.Kind),
			Range:          toRange(content, s.Span),
			SelectionRange: toRange(content, s.NameSpan),
			Children:       toDocumentSymbols(content, s.Children),
		})
	}
	return result
}

func toSymbolKind(kind SymbolKind) protocol.SymbolKind {
	switch kind {
	case SymbolInterface:
		return protocol.SymbolKindInterface
	case SymbolEnum:
		return protocol.SymbolKindEnum
	case SymbolEnumEntry:
		return protocol.SymbolKindEnumMember
	case SymbolObject:
		return protocol.SymbolKindObject
	case SymbolFunction:
		return protocol.SymbolKindFunction
	case SymbolConstructor:
		return protocol.SymbolKindConstructor
	case SymbolProperty:
		return protocol.SymbolKindProperty
	case SymbolTypeAlias:
		return protocol.SymbolKindTypeParameter
	default:
		return protocol.SymbolKindClass
	}
}

func toRange(content []byte, span parser.Span) protocol.Range {
	return protocol.Range{
		Start: toPosition(content, span.Start),
		End:   toPosition(content, span.End),
	}
}

// toPosition converts a parser position into a zero-based line and a
// character offset in UTF-16 code units. Editors drop a byte order mark,
// so it takes no character.
func toPosition(content []byte, pos parser.Position) protocol.Position {
	offset := min(max(pos.Offset, 0), len(content))
	lineStart := offset
	for lineStart > 0 && content[lineStart-1] != '\n' && content[lineStart-1] != '\r' {
		lineStart--
	}
	if lineStart == 0 && bytes.HasPrefix(content, byteOrderMark) {
		lineStart = min(len(byteOrderMark), offset)
	}
	return protocol.Position{
		Line:      protocol.UInteger(max(pos.Line-1, 0)),
		Character: protocol.UInteger(utf16Len(content[lineStart:offset])),
	}
}

// fromPosition is the inverse of toPosition. Characters past the end of
// the line clamp to the line end.
func fromPosition(content []byte, pos protocol.Position) int {
	offset := 0
	if bytes.HasPrefix(content, byteOrderMark) {
		offset = len(byteOrderMark)
	}
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		i := bytes.IndexAny(content[offset:], "\r\n")
		if i < 0 {
			return len(content)
		}
		offset += i + 1
		if content[offset-1] == '\r' && offset < len(content) && content[offset] == '\n' {
			offset++
		}
	}
	units := protocol.UInteger(0)
	for offset < len(content) && units < pos.Character {
		r, size := utf8.DecodeRune(content[offset:])
		if r == '\n' || r == '\r' {
			break
		}
		units += protocol.UInteger(utf16.RuneLen(r))
		offset += size
	}
	return offset
}

func utf16Len(b []byte) int {
	units := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		units += utf16.RuneLen(r)
		b = b[size:]
	}
	return units
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func ptrTo[T any](v T) *T {
	return &v
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
