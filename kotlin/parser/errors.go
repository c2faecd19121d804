package parser

import (
	"fmt"
	"sort"
	"strings"
)

type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	LexError
	UnterminatedLiteral
)

func (k ErrorKind) String() string {
	switch k {
	case LexError:
		return "LexError"
	case UnterminatedLiteral:
		return "UnterminatedLiteral"
	}
	return "SyntaxError"
}

type Error struct {
	Kind     ErrorKind
	Message  string
	Span     Span
	Expected []TokenKind
	Got      *Token
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
}

// ErrorList collects the errors of one parse in source order.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Err returns nil for an empty list.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Span.Start.Offset < l[j].Span.Start.Offset
	})
}

// Messages renders one error per line.
func (l ErrorList) Messages() string {
	var sb strings.Builder
	for _, e := range l {
		sb.WriteString(e.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

func expectedMessage(kinds []TokenKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = describe(k)
	}
	switch len(names) {
	case 0:
		return "unexpected token"
	case 1:
		return "expected " + names[0]
	}
	return "expected " + strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

// Token categories without a fixed spelling.
var tokenDescriptions = map[TokenKind]string{
	TokenEOF:            "end of input",
	TokenError:          "invalid token",
	TokenTerminator:     "newline",
	TokenIdent:          "identifier",
	TokenIntLiteral:     "integer literal",
	TokenHexLiteral:     "hex literal",
	TokenBinLiteral:     "binary literal",
	TokenRealLiteral:    "real literal",
	TokenCharLiteral:    "character literal",
	TokenStringText:     "string text",
	TokenEscape:         "escape sequence",
	TokenUnterminated:   "end of string",
	TokenUnsignedSuffix: "'u'",
	TokenLongSuffix:     "'L'",
}

// describe names a token kind for messages: literal spellings are
// single-quoted, categories are spelled out.
func describe(k TokenKind) string {
	if d, ok := tokenDescriptions[k]; ok {
		return d
	}
	return "'" + k.String() + "'"
}
