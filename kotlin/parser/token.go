package parser

import "fmt"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

// Contains reports whether the byte offset lies inside the span.
// Zero-width spans contain nothing.
func (s Span) Contains(offset int) bool {
	return s.Start.Offset <= offset && offset < s.End.Offset
}

func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenLineComment
	TokenBlockComment
	TokenShebang
	TokenTerminator

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenHexLiteral
	TokenBinLiteral
	TokenRealLiteral
	TokenUnsignedSuffix
	TokenLongSuffix
	TokenCharLiteral

	// String parts
	TokenQuote
	TokenTripleQuote
	TokenStringText
	TokenEscape
	TokenDollar
	TokenInterpStart
	TokenInterpEnd
	TokenUnterminated

	// Keywords
	TokenAs
	TokenAsSafe
	TokenBreak
	TokenClass
	TokenContinue
	TokenDo
	TokenElse
	TokenFalse
	TokenFor
	TokenFun
	TokenIf
	TokenImport
	TokenIn
	TokenNotIn
	TokenInterface
	TokenIs
	TokenNotIs
	TokenNull
	TokenObject
	TokenPackage
	TokenReturn
	TokenSuper
	TokenThis
	TokenThrow
	TokenTrue
	TokenTry
	TokenTypealias
	TokenVal
	TokenVar
	TokenWhen
	TokenWhile

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenIncrement
	TokenDecrement
	TokenAssign
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
	TokenPercentAssign
	TokenEQ
	TokenNE
	TokenStrictEQ
	TokenStrictNE
	TokenLT
	TokenGT
	TokenLE
	TokenGE
	TokenAnd
	TokenOr
	TokenNot
	TokenNotNull
	TokenQuestion
	TokenSafeDot
	TokenElvis
	TokenColon
	TokenColonColon
	TokenDot
	TokenRange
	TokenRangeUntil
	TokenArrow
	TokenAt

	// Separators
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenSemicolon
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:            "EOF",
	TokenError:          "Error",
	TokenWhitespace:     "Whitespace",
	TokenLineComment:    "LineComment",
	TokenBlockComment:   "BlockComment",
	TokenShebang:        "Shebang",
	TokenTerminator:     "Terminator",
	TokenIdent:          "Ident",
	TokenIntLiteral:     "IntLiteral",
	TokenHexLiteral:     "HexLiteral",
	TokenBinLiteral:     "BinLiteral",
	TokenRealLiteral:    "RealLiteral",
	TokenUnsignedSuffix: "UnsignedSuffix",
	TokenLongSuffix:     "LongSuffix",
	TokenCharLiteral:    "CharLiteral",
	TokenQuote:          `"`,
	TokenTripleQuote:    `"""`,
	TokenStringText:     "StringText",
	TokenEscape:         "Escape",
	TokenDollar:         "$",
	TokenInterpStart:    "${",
	TokenInterpEnd:      "}",
	TokenUnterminated:   "Unterminated",
	TokenAs:             "as",
	TokenAsSafe:         "as?",
	TokenBreak:          "break",
	TokenClass:          "class",
	TokenContinue:       "continue",
	TokenDo:             "do",
	TokenElse:           "else",
	TokenFalse:          "false",
	TokenFor:            "for",
	TokenFun:            "fun",
	TokenIf:             "if",
	TokenImport:         "import",
	TokenIn:             "in",
	TokenNotIn:          "!in",
	TokenInterface:      "interface",
	TokenIs:             "is",
	TokenNotIs:          "!is",
	TokenNull:           "null",
	TokenObject:         "object",
	TokenPackage:        "package",
	TokenReturn:         "return",
	TokenSuper:          "super",
	TokenThis:           "this",
	TokenThrow:          "throw",
	TokenTrue:           "true",
	TokenTry:            "try",
	TokenTypealias:      "typealias",
	TokenVal:            "val",
	TokenVar:            "var",
	TokenWhen:           "when",
	TokenWhile:          "while",
	TokenPlus:           "+",
	TokenMinus:          "-",
	TokenStar:           "*",
	TokenSlash:          "/",
	TokenPercent:        "%",
	TokenIncrement:      "++",
	TokenDecrement:      "--",
	TokenAssign:         "=",
	TokenPlusAssign:     "+=",
	TokenMinusAssign:    "-=",
	TokenStarAssign:     "*=",
	TokenSlashAssign:    "/=",
	TokenPercentAssign:  "%=",
	TokenEQ:             "==",
	TokenNE:             "!=",
	TokenStrictEQ:       "===",
	TokenStrictNE:       "!==",
	TokenLT:             "<",
	TokenGT:             ">",
	TokenLE:             "<=",
	TokenGE:             ">=",
	TokenAnd:            "&&",
	TokenOr:             "||",
	TokenNot:            "!",
	TokenNotNull:        "!!",
	TokenQuestion:       "?",
	TokenSafeDot:        "?.",
	TokenElvis:          "?:",
	TokenColon:          ":",
	TokenColonColon:     "::",
	TokenDot:            ".",
	TokenRange:          "..",
	TokenRangeUntil:     "..<",
	TokenArrow:          "->",
	TokenAt:             "@",
	TokenLParen:         "(",
	TokenRParen:         ")",
	TokenLBracket:       "[",
	TokenRBracket:       "]",
	TokenLBrace:         "{",
	TokenRBrace:         "}",
	TokenComma:          ",",
	TokenSemicolon:      ";",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsTrivia reports whether tokens of this kind are skipped by the parser
// cursor. Trivia still ends up in the tree.
func (k TokenKind) IsTrivia() bool {
	switch k {
	case TokenWhitespace, TokenLineComment, TokenBlockComment:
		return true
	}
	return false
}

// Token is one lexeme. Leading holds the whitespace between the previous
// token and this one, so that Leading+Literal over all tokens reproduces
// the input.
type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
	Leading string
}

// Text returns the source bytes covered by the token including its leading
// whitespace.
func (t Token) Text() string {
	return t.Leading + t.Literal
}

var keywords = map[string]TokenKind{
	"as":        TokenAs,
	"break":     TokenBreak,
	"class":     TokenClass,
	"continue":  TokenContinue,
	"do":        TokenDo,
	"else":      TokenElse,
	"false":     TokenFalse,
	"for":       TokenFor,
	"fun":       TokenFun,
	"if":        TokenIf,
	"import":    TokenImport,
	"in":        TokenIn,
	"interface": TokenInterface,
	"is":        TokenIs,
	"null":      TokenNull,
	"object":    TokenObject,
	"package":   TokenPackage,
	"return":    TokenReturn,
	"super":     TokenSuper,
	"this":      TokenThis,
	"throw":     TokenThrow,
	"true":      TokenTrue,
	"try":       TokenTry,
	"typealias": TokenTypealias,
	"val":       TokenVal,
	"var":       TokenVar,
	"when":      TokenWhen,
	"while":     TokenWhile,
}

// LookupKeyword maps hard keywords to their kind. Soft keywords and
// modifiers are identifiers; the parser decides their role by position.
func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

// modifierClasses groups the modifier words by the node kind they are
// rendered as in modifier position.
var modifierClasses = map[string]NodeKind{
	"sealed":      KindClassModifier,
	"annotation":  KindClassModifier,
	"data":        KindClassModifier,
	"inner":       KindClassModifier,
	"value":       KindClassModifier,
	"enum":        KindClassModifier,
	"override":    KindMemberModifier,
	"lateinit":    KindMemberModifier,
	"public":      KindVisibilityModifier,
	"private":     KindVisibilityModifier,
	"protected":   KindVisibilityModifier,
	"internal":    KindVisibilityModifier,
	"tailrec":     KindFunctionModifier,
	"operator":    KindFunctionModifier,
	"infix":       KindFunctionModifier,
	"inline":      KindFunctionModifier,
	"external":    KindFunctionModifier,
	"suspend":     KindFunctionModifier,
	"const":       KindPropertyModifier,
	"abstract":    KindInheritanceModifier,
	"final":       KindInheritanceModifier,
	"open":        KindInheritanceModifier,
	"vararg":      KindParameterModifier,
	"noinline":    KindParameterModifier,
	"crossinline": KindParameterModifier,
	"expect":      KindPlatformModifier,
	"actual":      KindPlatformModifier,
	"companion":   KindClassModifier,
}

func isModifierWord(s string) bool {
	_, ok := modifierClasses[s]
	return ok
}
