package parser

type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
	AssocNone
)

func (a Assoc) String() string {
	switch a {
	case AssocRight:
		return "right"
	case AssocNone:
		return "none"
	}
	return "left"
}

// Precedence levels, higher binds tighter.
const (
	PrecLambdaLiteral  = 0
	PrecReturnOrThrow  = 0
	PrecComment        = 0
	PrecVarDecl        = 1
	PrecAssignment     = 1
	PrecBlock          = 1
	PrecSpread         = 2
	PrecSimpleUserType = 2
	PrecDisjunction    = 3
	PrecConjunction    = 4
	PrecEquality       = 5
	PrecComparison     = 6
	PrecCheck          = 7
	PrecElvis          = 8
	PrecInfix          = 9
	PrecRange          = 10
	PrecAdditive       = 11
	PrecMultiplicative = 12
	PrecAs             = 13
	PrecTypeRHS        = 14
	PrecPrefix         = 15
	PrecPostfix        = 16
)

type Precedence struct {
	Level int
	Assoc Assoc
}

// Operator is one entry of the operator table.
type Operator struct {
	Kind NodeKind
	Precedence

	// TypeRHS operators take a type instead of an expression on the right.
	TypeRHS bool
}

var binaryOperators = map[TokenKind]Operator{
	TokenStar:       {KindMultiplicativeExpression, Precedence{PrecMultiplicative, AssocLeft}, false},
	TokenSlash:      {KindMultiplicativeExpression, Precedence{PrecMultiplicative, AssocLeft}, false},
	TokenPercent:    {KindMultiplicativeExpression, Precedence{PrecMultiplicative, AssocLeft}, false},
	TokenPlus:       {KindAdditiveExpression, Precedence{PrecAdditive, AssocLeft}, false},
	TokenMinus:      {KindAdditiveExpression, Precedence{PrecAdditive, AssocLeft}, false},
	TokenRange:      {KindRangeExpression, Precedence{PrecRange, AssocLeft}, false},
	TokenRangeUntil: {KindRangeExpression, Precedence{PrecRange, AssocLeft}, false},
	TokenIdent:      {KindInfixExpression, Precedence{PrecInfix, AssocLeft}, false},
	TokenElvis:      {KindElvisExpression, Precedence{PrecElvis, AssocLeft}, false},
	TokenIn:         {KindCheckExpression, Precedence{PrecCheck, AssocLeft}, false},
	TokenNotIn:      {KindCheckExpression, Precedence{PrecCheck, AssocLeft}, false},
	TokenIs:         {KindCheckExpression, Precedence{PrecCheck, AssocLeft}, true},
	TokenNotIs:      {KindCheckExpression, Precedence{PrecCheck, AssocLeft}, true},
	TokenLT:         {KindComparisonExpression, Precedence{PrecComparison, AssocLeft}, false},
	TokenGT:         {KindComparisonExpression, Precedence{PrecComparison, AssocLeft}, false},
	TokenLE:         {KindComparisonExpression, Precedence{PrecComparison, AssocLeft}, false},
	TokenGE:         {KindComparisonExpression, Precedence{PrecComparison, AssocLeft}, false},
	TokenEQ:         {KindEqualityExpression, Precedence{PrecEquality, AssocLeft}, false},
	TokenNE:         {KindEqualityExpression, Precedence{PrecEquality, AssocLeft}, false},
	TokenStrictEQ:   {KindEqualityExpression, Precedence{PrecEquality, AssocLeft}, false},
	TokenStrictNE:   {KindEqualityExpression, Precedence{PrecEquality, AssocLeft}, false},
	TokenAnd:        {KindConjunctionExpression, Precedence{PrecConjunction, AssocLeft}, false},
	TokenOr:         {KindDisjunctionExpression, Precedence{PrecDisjunction, AssocLeft}, false},
	TokenAs:         {KindAsExpression, Precedence{PrecAs, AssocLeft}, true},
	TokenAsSafe:     {KindAsExpression, Precedence{PrecAs, AssocLeft}, true},
}

var assignmentOperators = map[TokenKind]bool{
	TokenAssign:        true,
	TokenPlusAssign:    true,
	TokenMinusAssign:   true,
	TokenStarAssign:    true,
	TokenSlashAssign:   true,
	TokenPercentAssign: true,
}

var prefixOperators = map[TokenKind]bool{
	TokenPlus:      true,
	TokenMinus:     true,
	TokenNot:       true,
	TokenIncrement: true,
	TokenDecrement: true,
}

var postfixOperators = map[TokenKind]bool{
	TokenIncrement: true,
	TokenDecrement: true,
	TokenNotNull:   true,
}

// Unary rules share the table so that every level is declared in one place.
var (
	PrefixPrecedence     = Precedence{PrecPrefix, AssocRight}
	PostfixPrecedence    = Precedence{PrecPostfix, AssocLeft}
	AssignmentPrecedence = Precedence{PrecAssignment, AssocRight}
	SpreadPrecedence     = Precedence{PrecSpread, AssocRight}
)

// BinaryOperator looks up the table entry for an operator token.
func BinaryOperator(kind TokenKind) (Operator, bool) {
	op, ok := binaryOperators[kind]
	return op, ok
}

// OperatorTable lists the binary operator entries by token kind, for
// inspection tools.
func OperatorTable() map[TokenKind]Operator {
	table := make(map[TokenKind]Operator, len(binaryOperators))
	for k, v := range binaryOperators {
		table[k] = v
	}
	return table
}
