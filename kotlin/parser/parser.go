package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tliron/commonlog"
)

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

func WithStartLine(line int) Option {
	return func(p *Parser) {
		p.startLine = line
	}
}

// WithComments collects comment tokens for Comments. Comments are part of
// the tree either way.
func WithComments() Option {
	return func(p *Parser) {
		p.includeComments = true
	}
}

// WithTerminator replaces the newline-based statement terminator.
func WithTerminator(t TerminatorRecognizer) Option {
	return func(p *Parser) {
		p.recognizer = t
	}
}

type parseFunc func(*Parser) *Node

type Parser struct {
	file            string
	startLine       int
	includeComments bool
	recognizer      TerminatorRecognizer
	reader          io.Reader
	input           []byte
	lexer           *Lexer
	tokens          []Token
	trivia          [][]Token
	comments        []Token
	pos             int
	termAt          int
	depth           int
	entry           parseFunc
	incomplete      bool
	errors          []*Error
	ctx             context.Context

	// noTrailingLambda stops a "{" from attaching to the preceding
	// expression, as in "class A : B by c { }".
	noTrailingLambda bool
}

func newParser(r io.Reader, entry parseFunc, opts []Option) *Parser {
	p := &Parser{
		startLine:  1,
		reader:     r,
		entry:      entry,
		recognizer: NewlineTerminator{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func ParseSourceFile(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseSourceFile, opts)
}

func ParseExpression(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseExpressionUnit, opts)
}

// Parse parses one source file held in memory. The tree is returned even
// when the error is non-nil; the error is an ErrorList.
func Parse(src []byte, opts ...Option) (*Node, error) {
	p := ParseSourceFile(bytes.NewReader(src), opts...)
	node := p.Finish()
	return node, ErrorList(p.Errors()).Err()
}

// Tokenize returns every token of src, whitespace and comments included.
func Tokenize(src []byte, file string) []Token {
	l := NewLexer(src, file)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

func (p *Parser) Comments() []Token {
	return p.comments
}

// Tokens returns the significant tokens of the last parse.
func (p *Parser) Tokens() []Token {
	return p.tokens
}

// Errors returns the errors of the last parse in source order.
func (p *Parser) Errors() []*Error {
	return p.errors
}

// Lexer returns the lexer of the last parse.
func (p *Parser) Lexer() *Lexer {
	return p.lexer
}

func (p *Parser) readAll() error {
	if p.input != nil {
		return nil
	}
	data, err := io.ReadAll(p.reader)
	if err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	p.input = data
	return nil
}

// IsComplete reports whether the input so far forms a complete unit.
// Input is incomplete when it is empty, when an error is reported at the
// end of input ("1 +", an unclosed "{"), or when a string literal is still
// open there.
func (p *Parser) IsComplete() bool {
	if err := p.readAll(); err != nil {
		return false
	}
	if len(bytes.TrimSpace(p.input)) == 0 {
		return false
	}
	p.run()
	return !p.incomplete
}

// Finish parses the input and returns the tree. The tree is complete even
// for malformed input: errors become ERROR nodes and are listed by Errors.
func (p *Parser) Finish() *Node {
	node, err := p.FinishContext(context.Background())
	if err != nil {
		return nil
	}
	return node
}

type bailout struct {
	err error
}

// FinishContext is Finish with cancellation. The context is checked at
// every token; a cancelled parse returns nil and the context's error.
func (p *Parser) FinishContext(ctx context.Context) (node *Node, err error) {
	if err := p.readAll(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.ctx = ctx
	defer func() {
		p.ctx = nil
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			node, err = nil, b.err
		}
	}()
	return p.run(), nil
}

func (p *Parser) Reset(r io.Reader) {
	p.reader = r
	p.input = nil
	p.lexer = nil
	p.tokens = nil
	p.trivia = nil
	p.comments = nil
	p.errors = nil
	p.pos = 0
	p.incomplete = false
}

func (p *Parser) run() *Node {
	p.lexer = NewLexer(p.input, p.file)
	p.lexer.line = p.startLine
	p.tokens = nil
	p.trivia = nil
	p.comments = nil
	p.errors = nil
	p.pos = 0
	p.termAt = -1
	p.depth = 0
	p.incomplete = false
	p.noTrailingLambda = false
	p.tokenize()
	node := p.entry(p)
	ErrorList(p.errors).Sort()
	return node
}

// tokenize folds whitespace into the Leading text of the next token and
// sets comments aside, keyed by the significant token they precede.
func (p *Parser) tokenize() {
	var leading strings.Builder
	var comments []Token
	for {
		tok := p.lexer.NextToken()
		if tok.Kind == TokenWhitespace {
			leading.WriteString(tok.Literal)
			continue
		}
		tok.Leading = leading.String()
		leading.Reset()
		if tok.Kind == TokenLineComment || tok.Kind == TokenBlockComment {
			comments = append(comments, tok)
			if p.includeComments {
				p.comments = append(p.comments, tok)
			}
			continue
		}
		p.tokens = append(p.tokens, tok)
		p.trivia = append(p.trivia, comments)
		comments = nil
		if tok.Kind == TokenEOF {
			break
		}
	}
}

// mark is a snapshot of the parser state for backtracking.
type mark struct {
	pos        int
	termAt     int
	depth      int
	errors     int
	incomplete bool
}

func (p *Parser) mark() mark {
	return mark{
		pos:        p.pos,
		termAt:     p.termAt,
		depth:      p.depth,
		errors:     len(p.errors),
		incomplete: p.incomplete,
	}
}

func (p *Parser) reset(m mark) {
	p.pos = m.pos
	p.termAt = m.termAt
	p.depth = m.depth
	p.errors = p.errors[:m.errors]
	p.incomplete = m.incomplete
}

// failedSince reports whether errors were recorded after m.
func (p *Parser) failedSince(m mark) bool {
	return len(p.errors) > m.errors
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() Token {
	if p.ctx != nil {
		if err := p.ctx.Err(); err != nil {
			panic(bailout{err})
		}
	}
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

// checkWord reports whether the next token is the identifier word.
func (p *Parser) checkWord(word string) bool {
	tok := p.peek()
	return tok.Kind == TokenIdent && tok.Literal == word
}

// adjacent reports whether the token n positions ahead directly follows
// the one before it, with nothing in between.
func (p *Parser) adjacent(n int) bool {
	i := p.pos + n
	if i <= 0 || i >= len(p.tokens) {
		return false
	}
	return p.tokens[i].Span.Start.Offset == p.tokens[i-1].Span.End.Offset
}

// newlineBefore reports whether a line break separates the next token
// from the previous one.
func (p *Parser) newlineBefore() bool {
	if p.pos == 0 {
		return false
	}
	return p.peek().Span.Start.Line > p.tokens[p.pos-1].Span.End.Line
}

func (p *Parser) prevEnd() Position {
	if p.pos == 0 {
		return Position{File: p.file, Line: p.startLine, Column: 1}
	}
	return p.tokens[p.pos-1].Span.End
}

// mustProgress returns a function that checks if the parser has advanced.
// Call it at the start of a loop iteration, then call the returned function
// at the end to break if no progress was made. The token that blocked
// progress is moved into an ERROR node under parent.
func (p *Parser) mustProgress(parent *Node) func() bool {
	saved := p.pos
	return func() bool {
		if p.pos == saved {
			if !p.check(TokenEOF) {
				parent.AddChild(p.stray())
			}
			return false
		}
		return true
	}
}

// nest tracks bracket depth for the terminator recognizer. A "{" starts a
// new statement context; "(", "[" and "${" deepen the current one. Any
// bracket lifts noTrailingLambda. Use as defer p.nest(kind)().
func (p *Parser) nest(open TokenKind) func() {
	saved, savedLambda := p.depth, p.noTrailingLambda
	if open == TokenLBrace {
		p.depth = 0
	} else {
		p.depth++
	}
	p.noTrailingLambda = false
	return func() {
		p.depth = saved
		p.noTrailingLambda = savedLambda
	}
}

// terminatorAhead asks the recognizer whether a terminator follows the
// last consumed token.
func (p *Parser) terminatorAhead() bool {
	_, ok := p.recognizeTerminator()
	return ok
}

func (p *Parser) recognizeTerminator() (Token, bool) {
	if p.pos == 0 || p.termAt == p.pos {
		return Token{}, false
	}
	last := p.tokens[p.pos-1]
	return p.recognizer.RecognizeTerminator(p.input[last.Span.End.Offset:], p.depth, last)
}

// terminator consumes a virtual terminator into n.
func (p *Parser) terminator(n *Node) bool {
	tok, ok := p.recognizeTerminator()
	if !ok {
		return false
	}
	p.termAt = p.pos
	n.AddChild(&Node{Kind: KindToken, Token: &tok, Span: tok.Span})
	return true
}

// semis consumes statement separators: semicolons and terminators.
func (p *Parser) semis(n *Node) bool {
	found := false
	for {
		switch {
		case p.check(TokenSemicolon):
			p.token(n)
		case p.terminator(n):
		default:
			return found
		}
		found = true
	}
}

// leaf consumes the next token as a node of the given kind. Comments
// before the token travel with it.
func (p *Parser) leaf(kind NodeKind) *Node {
	i := p.pos
	tok := p.advance()
	n := &Node{Kind: kind, Token: &tok, Span: tok.Span}
	for _, c := range p.trivia[i] {
		c := c
		ck := KindLineComment
		if c.Kind == TokenBlockComment {
			ck = KindMultilineComment
		}
		n.comments = append(n.comments, &Node{Kind: ck, Token: &c, Span: c.Span})
	}
	return n
}

// token consumes the next token into n as an anonymous leaf.
func (p *Parser) token(n *Node) {
	n.AddChild(p.leaf(KindToken))
}

// accept consumes a token of the given kind into n if it is next.
func (p *Parser) accept(n *Node, kind TokenKind) bool {
	if !p.check(kind) {
		return false
	}
	p.token(n)
	return true
}

// expect consumes a token of the given kind into n, or attaches a
// zero-width error.
func (p *Parser) expect(n *Node, kind TokenKind) bool {
	if p.accept(n, kind) {
		return true
	}
	n.AddChild(p.missing(kind))
	return false
}

func (p *Parser) startNode(kind NodeKind) *Node {
	at := p.prevEnd()
	return &Node{
		Kind: kind,
		Span: Span{Start: at, End: at},
	}
}

func (p *Parser) blank(field string) *Node {
	n := p.startNode(KindBlank)
	n.Field = field
	return n
}

// placeholder binds field to a blank node unless a child already has it.
func (p *Parser) placeholder(n *Node, field string) {
	if n.ChildByField(field) == nil {
		n.AddChild(p.blank(field))
	}
}

func (p *Parser) addError(kind ErrorKind, msg string, span Span, expected []TokenKind) *Error {
	got := p.peek()
	if got.Kind == TokenEOF || (got.Kind == TokenUnterminated && got.Span.Start.Offset == len(p.input)) {
		p.incomplete = true
	}
	e := &Error{
		Kind:     kind,
		Message:  msg,
		Span:     span,
		Expected: expected,
		Got:      &got,
	}
	p.errors = append(p.errors, e)
	return e
}

// missing returns a zero-width ERROR node for tokens that should have
// been present. Nothing is consumed.
func (p *Parser) missing(expected ...TokenKind) *Node {
	return p.missingMessage(expectedMessage(expected), expected...)
}

func (p *Parser) missingMessage(msg string, expected ...TokenKind) *Node {
	n := p.startNode(KindError)
	n.Error = p.addError(SyntaxError, msg, n.Span, expected)
	return n
}

// errorNode consumes the offending token and then skips, with brackets
// balanced, until stop reports true or a closing bracket of an enclosing
// construct is reached. The skipped tokens stay in the tree as leaves of
// the ERROR node.
func (p *Parser) errorNode(msg string, stop func() bool, expected ...TokenKind) *Node {
	tok := p.peek()
	kind := SyntaxError
	if tok.Kind == TokenError {
		kind = LexError
		msg = p.lexer.Message(tok.Span.Start.Offset)
	}
	n := p.startNode(KindError)
	if tok.Kind != TokenEOF && tok.Kind != TokenUnterminated && !isCloser(tok.Kind) {
		p.skip(n, stop)
	}
	n.Error = p.addError(kind, msg, n.Span, expected)
	if log.AllowLevel(commonlog.Debug) {
		log.Debugf("recovered at %s: %s", tok.Span.Start, msg)
	}
	return n
}

// stray wraps exactly one token, whatever it is, in an ERROR node.
func (p *Parser) stray() *Node {
	tok := p.peek()
	n := p.startNode(KindError)
	msg := "unexpected '" + tok.Literal + "'"
	kind := SyntaxError
	if tok.Kind == TokenError {
		kind = LexError
		msg = p.lexer.Message(tok.Span.Start.Offset)
	}
	p.token(n)
	n.Error = p.addError(kind, msg, n.Span, nil)
	return n
}

// skip consumes at least one token into n, then continues until stop
// holds outside nested brackets. The end of an open string always stops
// it.
func (p *Parser) skip(n *Node, stop func() bool) {
	depth := 0
	for first := true; !p.check(TokenEOF); first = false {
		kind := p.peek().Kind
		if !first && depth == 0 {
			if isCloser(kind) || kind == TokenUnterminated || stop == nil || stop() {
				return
			}
		}
		switch {
		case isOpener(kind):
			depth++
		case isCloser(kind):
			depth--
		}
		p.token(n)
	}
}

func isOpener(kind TokenKind) bool {
	switch kind {
	case TokenLParen, TokenLBracket, TokenLBrace, TokenInterpStart:
		return true
	}
	return false
}

func isCloser(kind TokenKind) bool {
	switch kind {
	case TokenRParen, TokenRBracket, TokenRBrace, TokenInterpEnd:
		return true
	}
	return false
}

// atStatementEnd is the recovery point for statements.
func (p *Parser) atStatementEnd() bool {
	return p.match(TokenSemicolon, TokenRBrace, TokenEOF) || p.newlineBefore()
}

// atListEnd returns the recovery point for comma-separated lists closed
// by closer.
func (p *Parser) atListEnd(closer TokenKind) func() bool {
	return func() bool {
		return p.match(TokenComma, closer, TokenEOF) || p.atDeclarationLine()
	}
}

// atDeclarationLine reports whether the next token starts a line with a
// declaration keyword. Inside an unclosed bracket this is where the
// enclosing file or body picks up again.
func (p *Parser) atDeclarationLine() bool {
	return p.newlineBefore() && p.match(
		TokenFun, TokenClass, TokenInterface, TokenObject, TokenVal, TokenVar,
		TokenTypealias, TokenImport, TokenPackage,
	)
}
