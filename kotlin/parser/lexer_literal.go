package parser

const msgUnterminatedChar = "unterminated character literal"

// skipLine advances to the end of the current line.
func (l *Lexer) skipLine() {
	for l.pos < len(l.input) && l.peek() != '\n' && l.peek() != '\r' {
		l.advance()
	}
}

// scanDigits consumes digits accepted by ok. Underscores are taken only
// when another digit follows them.
func (l *Lexer) scanDigits(ok func(byte) bool) {
	for ok(l.peek()) {
		l.advance()
		n := 0
		for l.peekN(n) == '_' {
			n++
		}
		if n > 0 && ok(l.peekN(n)) {
			l.advanceN(n)
		}
	}
}

func (l *Lexer) scanNumber(start Position) Token {
	ch := l.peek()
	next := l.peekN(1)

	if ch == '0' && (next == 'x' || next == 'X') && isHexDigit(l.peekN(2)) {
		l.advanceN(2)
		l.scanDigits(isHexDigit)
		return l.withSuffix(l.token(TokenHexLiteral, start))
	}
	if ch == '0' && (next == 'b' || next == 'B') && isBinDigit(l.peekN(2)) {
		l.advanceN(2)
		l.scanDigits(isBinDigit)
		return l.withSuffix(l.token(TokenBinLiteral, start))
	}

	kind := TokenIntLiteral
	l.scanDigits(isDigit)

	if l.peek() == '.' && isDigit(l.peekN(1)) {
		l.advance()
		l.scanDigits(isDigit)
		kind = TokenRealLiteral
	}

	if e := l.peek(); e == 'e' || e == 'E' {
		sign := 0
		if s := l.peekN(1); s == '+' || s == '-' {
			sign = 1
		}
		if isDigit(l.peekN(1 + sign)) {
			l.advanceN(1 + sign)
			l.scanDigits(isDigit)
			kind = TokenRealLiteral
		}
	}

	if f := l.peek(); (f == 'f' || f == 'F') && !l.isIdentPartAt(1) {
		l.advance()
		return l.token(TokenRealLiteral, start)
	}

	tok := l.token(kind, start)
	if kind == TokenRealLiteral {
		return tok
	}
	return l.withSuffix(tok)
}

// withSuffix queues an unsigned or long suffix that directly follows an
// integer, hex or binary literal.
func (l *Lexer) withSuffix(tok Token) Token {
	start := l.Position()
	n := 0
	kind := TokenUnsignedSuffix
	switch l.peek() {
	case 'u', 'U':
		n = 1
		if l.peekN(1) == 'L' {
			n = 2
		}
	case 'L':
		n = 1
		kind = TokenLongSuffix
	}
	if n == 0 || l.isIdentPartAt(n) {
		return tok
	}
	l.advanceN(n)
	suffix := l.token(kind, start)
	l.pending = &suffix
	return tok
}

// escapeLen returns the length of a valid escape sequence at the cursor,
// or 0.
func (l *Lexer) escapeLen() int {
	if l.peek() != '\\' {
		return 0
	}
	switch l.peekN(1) {
	case 't', 'b', 'r', 'n', '\'', '"', '\\', '$':
		return 2
	case 'u':
		for i := 2; i < 6; i++ {
			if !isHexDigit(l.peekN(i)) {
				return 0
			}
		}
		return 6
	}
	return 0
}

// scanBadEscape consumes a backslash and the character after it, unless
// that character ends the line.
func (l *Lexer) scanBadEscape(start Position) Token {
	l.advance()
	if ch := l.peek(); ch != '\n' && ch != '\r' && l.pos < len(l.input) {
		l.advanceRune()
	}
	return l.errorToken(start, "invalid escape sequence")
}

func (l *Lexer) scanCharLiteral(start Position) Token {
	l.advance()

	valid := true
	switch ch := l.peek(); {
	case ch == '\\':
		if n := l.escapeLen(); n > 0 {
			l.advanceN(n)
		} else {
			valid = false
			l.advance()
			if c := l.peek(); c != '\n' && c != '\r' && c != '\'' && l.pos < len(l.input) {
				l.advanceRune()
			}
		}
	case ch == '\'':
		l.advance()
		return l.errorToken(start, "empty character literal")
	case ch == '\n' || ch == '\r' || l.pos >= len(l.input):
		return l.errorToken(start, msgUnterminatedChar)
	default:
		l.advanceRune()
	}

	if l.peek() != '\'' {
		l.skipLine()
		return l.errorToken(start, msgUnterminatedChar)
	}
	l.advance()
	if !valid {
		return l.errorToken(start, "invalid escape sequence in character literal")
	}
	return l.token(TokenCharLiteral, start)
}

// scanInterpolation handles "$name" and "${" inside either kind of
// string. It reports false when the dollar sign is plain text.
func (l *Lexer) scanInterpolation(start Position) (Token, bool) {
	if l.peek() != '$' {
		return Token{}, false
	}
	if l.peekN(1) == '{' {
		l.advanceN(2)
		l.push(lexFrame{mode: modeCode, interp: true})
		return l.token(TokenInterpStart, start), true
	}
	if l.isIdentStartAt(1) {
		l.advance()
		l.pendingIdent = true
		return l.token(TokenDollar, start), true
	}
	return Token{}, false
}

func (l *Lexer) startsInterpolation() bool {
	return l.peek() == '$' && (l.peekN(1) == '{' || l.isIdentStartAt(1))
}

func (l *Lexer) scanInterpolatedIdent(start Position) Token {
	l.pendingIdent = false
	l.scanIdentChars()
	return l.token(TokenIdent, start)
}

func (l *Lexer) scanLineStringPart(start Position) Token {
	if l.pendingIdent {
		return l.scanInterpolatedIdent(start)
	}
	if tok, ok := l.scanInterpolation(start); ok {
		return tok
	}

	switch l.peek() {
	case '"':
		l.advance()
		l.pop()
		return l.token(TokenQuote, start)
	case '\n', '\r':
		// A line string cannot span lines: without its closing quote it
		// takes the rest of the input and ends unterminated there.
		for l.pos < len(l.input) {
			l.advance()
		}
		return l.token(TokenStringText, start)
	case '\\':
		if n := l.escapeLen(); n > 0 {
			l.advanceN(n)
			return l.token(TokenEscape, start)
		}
		return l.scanBadEscape(start)
	}

	for l.pos < len(l.input) {
		ch := l.peek()
		if ch == '"' || ch == '\\' || ch == '\n' || ch == '\r' || l.startsInterpolation() {
			break
		}
		l.advance()
	}
	return l.token(TokenStringText, start)
}

func (l *Lexer) quoteRun() int {
	n := 0
	for l.peekN(n) == '"' {
		n++
	}
	return n
}

// scanMultiLineStringPart never processes escapes. A run of more than
// three quotes closes the string on its last three.
func (l *Lexer) scanMultiLineStringPart(start Position) Token {
	if l.pendingIdent {
		return l.scanInterpolatedIdent(start)
	}
	if tok, ok := l.scanInterpolation(start); ok {
		return tok
	}

	if n := l.quoteRun(); n >= 3 {
		if n > 3 {
			l.advanceN(n - 3)
			return l.token(TokenStringText, start)
		}
		l.advanceN(3)
		l.pop()
		return l.token(TokenTripleQuote, start)
	}

	for l.pos < len(l.input) {
		if l.startsInterpolation() {
			break
		}
		if l.peek() == '"' {
			n := l.quoteRun()
			if n >= 3 {
				break
			}
			l.advanceN(n)
			continue
		}
		l.advance()
	}
	return l.token(TokenStringText, start)
}
