package parser

import (
	"bytes"
	"unicode"
	"unicode/utf8"
)

var byteOrderMark = []byte("\ufeff")

type lexMode int

const (
	modeCode lexMode = iota
	modeLineString
	modeMultiLineString
)

// lexFrame is one entry of the lexer's mode stack. Strings push a string
// frame; "${" pushes a code frame that is popped by its matching "}".
type lexFrame struct {
	mode   lexMode
	interp bool
	braces int
}

type Lexer struct {
	input    []byte
	file     string
	pos      int
	line     int
	column   int
	frames   []lexFrame
	messages map[int]string

	// pending is a token already classified by the previous scan, such as
	// a numeric suffix, emitted before anything else.
	pending      *Token
	pendingIdent bool
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:    input,
		file:     file,
		line:     1,
		column:   1,
		frames:   []lexFrame{{mode: modeCode}},
		messages: make(map[int]string),
	}
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

// Message returns the diagnostic recorded for the error token starting at
// offset.
func (l *Lexer) Message(offset int) string {
	if msg, ok := l.messages[offset]; ok {
		return msg
	}
	return "unexpected character"
}

// bodyStart is the offset of the first byte after a byte order mark.
func (l *Lexer) bodyStart() int {
	if bytes.HasPrefix(l.input, byteOrderMark) {
		return len(byteOrderMark)
	}
	return 0
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' || (ch == '\r' && l.peek() != '\n') {
		l.line++
		l.column = 1
	} else if ch&0xC0 != 0x80 {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) advanceRune() {
	_, size := utf8.DecodeRune(l.input[l.pos:])
	if size == 0 {
		return
	}
	l.advanceN(size)
}

func (l *Lexer) top() *lexFrame {
	return &l.frames[len(l.frames)-1]
}

func (l *Lexer) push(f lexFrame) {
	l.frames = append(l.frames, f)
}

func (l *Lexer) pop() {
	if len(l.frames) > 1 {
		l.frames = l.frames[:len(l.frames)-1]
	}
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func (l *Lexer) errorToken(start Position, msg string) Token {
	if l.pos == start.Offset {
		l.advanceRune()
	}
	l.messages[start.Offset] = msg
	return l.token(TokenError, start)
}

func (l *Lexer) NextToken() Token {
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		return tok
	}

	start := l.Position()

	if l.pos >= len(l.input) {
		for len(l.frames) > 1 {
			f := l.top()
			l.pop()
			if f.mode != modeCode {
				l.pendingIdent = false
				return Token{Kind: TokenUnterminated, Span: Span{Start: start, End: start}}
			}
		}
		return Token{Kind: TokenEOF, Span: Span{Start: start, End: start}}
	}

	switch l.top().mode {
	case modeLineString:
		return l.scanLineStringPart(start)
	case modeMultiLineString:
		return l.scanMultiLineStringPart(start)
	}
	return l.scanCode(start)
}

func (l *Lexer) scanCode(start Position) Token {
	// A byte order mark is trivia and takes no column.
	if l.pos == 0 && bytes.HasPrefix(l.input, byteOrderMark) {
		l.pos += len(byteOrderMark)
		for l.pos < len(l.input) && isWhitespace(l.peek()) {
			l.advance()
		}
		return l.token(TokenWhitespace, start)
	}

	ch := l.peek()

	if l.pos == l.bodyStart() && ch == '#' && l.peekN(1) == '!' {
		for l.pos < len(l.input) && l.peek() != '\n' && l.peek() != '\r' {
			l.advance()
		}
		return l.token(TokenShebang, start)
	}

	if ch == '/' && l.peekN(1) == '/' {
		return l.scanLineComment(start)
	}
	if ch == '/' && l.peekN(1) == '*' {
		return l.scanBlockComment(start)
	}

	if isWhitespace(ch) {
		for l.pos < len(l.input) && isWhitespace(l.peek()) {
			l.advance()
		}
		return l.token(TokenWhitespace, start)
	}

	if ch == '`' {
		return l.scanQuotedIdent(start)
	}

	if l.isIdentStartAt(0) {
		return l.scanIdentOrKeyword(start)
	}

	if isDigit(ch) || (ch == '.' && isDigit(l.peekN(1))) {
		return l.scanNumber(start)
	}

	switch ch {
	case '\'':
		return l.scanCharLiteral(start)
	case '"':
		if l.peekN(1) == '"' && l.peekN(2) == '"' {
			l.advanceN(3)
			l.push(lexFrame{mode: modeMultiLineString})
			return l.token(TokenTripleQuote, start)
		}
		l.advance()
		l.push(lexFrame{mode: modeLineString})
		return l.token(TokenQuote, start)
	case '{':
		l.advance()
		if f := l.top(); f.interp {
			f.braces++
		}
		return l.token(TokenLBrace, start)
	case '}':
		l.advance()
		if f := l.top(); f.interp {
			if f.braces == 0 {
				l.pop()
				return l.token(TokenInterpEnd, start)
			}
			f.braces--
		}
		return l.token(TokenRBrace, start)
	}

	return l.scanOperator(start)
}

func (l *Lexer) scanLineComment(start Position) Token {
	for l.pos < len(l.input) && l.peek() != '\n' && l.peek() != '\r' {
		l.advance()
	}
	return l.token(TokenLineComment, start)
}

// Block comments nest.
func (l *Lexer) scanBlockComment(start Position) Token {
	l.advanceN(2)
	depth := 1
	for l.pos < len(l.input) {
		switch {
		case l.peek() == '/' && l.peekN(1) == '*':
			l.advanceN(2)
			depth++
		case l.peek() == '*' && l.peekN(1) == '/':
			l.advanceN(2)
			depth--
			if depth == 0 {
				return l.token(TokenBlockComment, start)
			}
		default:
			l.advance()
		}
	}
	return l.errorToken(start, "unterminated block comment")
}

func (l *Lexer) scanQuotedIdent(start Position) Token {
	l.advance()
	for l.pos < len(l.input) {
		ch := l.peek()
		if ch == '`' {
			if l.pos == start.Offset+1 {
				break
			}
			l.advance()
			return l.token(TokenIdent, start)
		}
		if ch == '\n' || ch == '\r' {
			break
		}
		l.advance()
	}
	return l.errorToken(start, "unterminated quoted identifier")
}

func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	l.scanIdentChars()
	word := string(l.input[start.Offset:l.pos])
	kind := LookupKeyword(word)
	if kind == TokenAs && l.peek() == '?' {
		l.advance()
		kind = TokenAsSafe
	}
	return l.token(kind, start)
}

func (l *Lexer) scanIdentChars() {
	for l.pos < len(l.input) {
		ch := l.peek()
		if ch < utf8.RuneSelf {
			if !isASCIIIdentPart(ch) {
				return
			}
			l.advance()
			continue
		}
		r, size := utf8.DecodeRune(l.input[l.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return
		}
		l.advanceN(size)
	}
}

func (l *Lexer) isIdentStartAt(n int) bool {
	if l.pos+n >= len(l.input) {
		return false
	}
	ch := l.input[l.pos+n]
	if ch < utf8.RuneSelf {
		return ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
	}
	r, _ := utf8.DecodeRune(l.input[l.pos+n:])
	return unicode.IsLetter(r)
}

func (l *Lexer) scanOperator(start Position) Token {
	ch := l.peek()
	next := l.peekN(1)

	op := func(n int, kind TokenKind) Token {
		l.advanceN(n)
		return l.token(kind, start)
	}

	switch ch {
	case '(':
		return op(1, TokenLParen)
	case ')':
		return op(1, TokenRParen)
	case '[':
		return op(1, TokenLBracket)
	case ']':
		return op(1, TokenRBracket)
	case ',':
		return op(1, TokenComma)
	case ';':
		return op(1, TokenSemicolon)
	case '@':
		return op(1, TokenAt)
	case '.':
		if next == '.' {
			if l.peekN(2) == '<' {
				return op(3, TokenRangeUntil)
			}
			return op(2, TokenRange)
		}
		return op(1, TokenDot)
	case ':':
		if next == ':' {
			return op(2, TokenColonColon)
		}
		return op(1, TokenColon)
	case '=':
		if next == '=' {
			if l.peekN(2) == '=' {
				return op(3, TokenStrictEQ)
			}
			return op(2, TokenEQ)
		}
		return op(1, TokenAssign)
	case '!':
		switch {
		case next == '=' && l.peekN(2) == '=':
			return op(3, TokenStrictNE)
		case next == '=':
			return op(2, TokenNE)
		case next == '!':
			return op(2, TokenNotNull)
		case next == 'i' && l.peekN(2) == 'n' && !l.isIdentPartAt(3):
			return op(3, TokenNotIn)
		case next == 'i' && l.peekN(2) == 's' && !l.isIdentPartAt(3):
			return op(3, TokenNotIs)
		}
		return op(1, TokenNot)
	case '<':
		if next == '=' {
			return op(2, TokenLE)
		}
		return op(1, TokenLT)
	case '>':
		if next == '=' {
			return op(2, TokenGE)
		}
		return op(1, TokenGT)
	case '+':
		switch next {
		case '+':
			return op(2, TokenIncrement)
		case '=':
			return op(2, TokenPlusAssign)
		}
		return op(1, TokenPlus)
	case '-':
		switch next {
		case '-':
			return op(2, TokenDecrement)
		case '=':
			return op(2, TokenMinusAssign)
		case '>':
			return op(2, TokenArrow)
		}
		return op(1, TokenMinus)
	case '*':
		if next == '=' {
			return op(2, TokenStarAssign)
		}
		return op(1, TokenStar)
	case '/':
		if next == '=' {
			return op(2, TokenSlashAssign)
		}
		return op(1, TokenSlash)
	case '%':
		if next == '=' {
			return op(2, TokenPercentAssign)
		}
		return op(1, TokenPercent)
	case '&':
		if next == '&' {
			return op(2, TokenAnd)
		}
	case '|':
		if next == '|' {
			return op(2, TokenOr)
		}
	case '?':
		switch next {
		case '.':
			return op(2, TokenSafeDot)
		case ':':
			return op(2, TokenElvis)
		}
		return op(1, TokenQuestion)
	}

	return l.errorToken(start, "unexpected character")
}

func (l *Lexer) isIdentPartAt(n int) bool {
	if l.pos+n >= len(l.input) {
		return false
	}
	ch := l.input[l.pos+n]
	if ch < utf8.RuneSelf {
		return isASCIIIdentPart(ch)
	}
	r, _ := utf8.DecodeRune(l.input[l.pos+n:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isBinDigit(ch byte) bool {
	return ch == '0' || ch == '1'
}

func isASCIIIdentPart(ch byte) bool {
	return ch == '_' || isDigit(ch) || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}
