package parser

import "bytes"

// TerminatorRecognizer decides whether a virtual statement terminator
// belongs right after the last significant token. The parser consults it
// only where the grammar accepts either ";" or an automatic terminator.
//
// rest is the input following last. bracketDepth counts the "(", "[" and
// "${" regions opened since the innermost "{". Implementations must not
// block and must not keep state between calls.
type TerminatorRecognizer interface {
	RecognizeTerminator(rest []byte, bracketDepth int, last Token) (Token, bool)
}

// TerminatorFunc adapts a function to TerminatorRecognizer.
type TerminatorFunc func(rest []byte, bracketDepth int, last Token) (Token, bool)

func (f TerminatorFunc) RecognizeTerminator(rest []byte, bracketDepth int, last Token) (Token, bool) {
	return f(rest, bracketDepth, last)
}

// NewlineTerminator is the default recognizer: a line break (or the end of
// input) outside brackets ends a statement, unless the last token cannot
// end one or the next token continues the expression.
type NewlineTerminator struct{}

func (NewlineTerminator) RecognizeTerminator(rest []byte, bracketDepth int, last Token) (Token, bool) {
	if bracketDepth > 0 || !canEndStatement(last) {
		return Token{}, false
	}
	at := Token{Kind: TokenTerminator, Span: Span{Start: last.Span.End, End: last.Span.End}}

	i, broke := skipTrivia(rest)
	if i >= len(rest) {
		return at, true
	}
	if !broke || continuesLine(rest[i:]) {
		return Token{}, false
	}
	return at, true
}

// skipTrivia returns the offset of the next token in rest and whether a
// line break was crossed on the way.
func skipTrivia(rest []byte) (int, bool) {
	i := 0
	broke := false
	for i < len(rest) {
		switch {
		case rest[i] == '\n' || rest[i] == '\r':
			broke = true
			i++
		case isWhitespace(rest[i]):
			i++
		case bytes.HasPrefix(rest[i:], []byte("//")):
			for i < len(rest) && rest[i] != '\n' && rest[i] != '\r' {
				i++
			}
		case bytes.HasPrefix(rest[i:], []byte("/*")):
			end := bytes.Index(rest[i+2:], []byte("*/"))
			if end < 0 {
				return len(rest), broke
			}
			if bytes.ContainsAny(rest[i:i+2+end], "\r\n") {
				broke = true
			}
			i += end + 4
		default:
			return i, broke
		}
	}
	return i, broke
}

func canEndStatement(last Token) bool {
	switch last.Kind {
	case TokenIdent, TokenIntLiteral, TokenHexLiteral, TokenBinLiteral, TokenRealLiteral,
		TokenUnsignedSuffix, TokenLongSuffix, TokenCharLiteral,
		TokenQuote, TokenTripleQuote,
		TokenRParen, TokenRBracket, TokenRBrace,
		TokenThis, TokenSuper, TokenNull, TokenTrue, TokenFalse,
		TokenReturn, TokenBreak, TokenContinue, TokenClass,
		TokenIncrement, TokenDecrement, TokenNotNull, TokenQuestion, TokenGT, TokenStar,
		TokenError, TokenUnterminated:
		return true
	}
	return false
}

var continuations = [][]byte{
	[]byte("?."), []byte("?:"), []byte("&&"), []byte("||"),
	[]byte("->"), []byte("=="), []byte("!="), []byte("<="), []byte(">="),
	[]byte("as?"),
}

var continuationWords = map[string]bool{
	"as":      true,
	"else":    true,
	"catch":   true,
	"finally": true,
	"where":   true,
	"by":      true,
}

// continuesLine reports whether next starts with a token that can only
// extend the previous line.
func continuesLine(next []byte) bool {
	for _, c := range continuations {
		if bytes.HasPrefix(next, c) {
			return true
		}
	}
	switch next[0] {
	case '.', ',', ')', ']', '}', '=', '<', '>', '*', '/', '%', '?':
		return true
	case ':':
		return len(next) == 1 || next[1] != ':'
	}

	end := 0
	for end < len(next) && isASCIIIdentPart(next[end]) {
		end++
	}
	return end > 0 && continuationWords[string(next[:end])]
}
