package parser

func (p *Parser) parseExpression() *Node {
	return p.parseBinary(PrecDisjunction)
}

// parseBinary is the precedence-climbing loop over binaryOperators. It
// stops where the terminator recognizer would end the statement.
func (p *Parser) parseBinary(minPrec int) *Node {
	left := p.parsePrefix()
	for {
		if p.terminatorAhead() {
			return left
		}
		op, ok := binaryOperators[p.peek().Kind]
		if !ok || op.Level < minPrec {
			return left
		}
		if p.check(TokenIdent) && !p.atInfixFunction() {
			return left
		}

		node := p.startNode(op.Kind)
		node.AddField(FieldLeft, left)
		node.AddField(FieldOperator, p.leaf(KindToken))
		switch {
		case op.TypeRHS:
			node.AddField(FieldRight, p.parseType())
		case op.Assoc == AssocRight:
			node.AddField(FieldRight, p.parseBinary(op.Level))
		default:
			node.AddField(FieldRight, p.parseBinary(op.Level+1))
		}
		left = node
	}
}

// atInfixFunction reports whether the identifier ahead is used as an
// infix function name, as in "a shl b".
func (p *Parser) atInfixFunction() bool {
	if p.atAccessor() || p.atModifier() {
		return false
	}
	next := p.peekN(1)
	if next.Span.Start.Line > p.peek().Span.End.Line {
		return false
	}
	return canStartExpression(next.Kind)
}

func canStartExpression(kind TokenKind) bool {
	switch kind {
	case TokenIdent, TokenIntLiteral, TokenHexLiteral, TokenBinLiteral, TokenRealLiteral,
		TokenCharLiteral, TokenQuote, TokenTripleQuote,
		TokenLParen, TokenLBracket, TokenLBrace,
		TokenThis, TokenSuper, TokenNull, TokenTrue, TokenFalse,
		TokenIf, TokenWhen, TokenTry, TokenObject, TokenFun,
		TokenReturn, TokenThrow, TokenBreak, TokenContinue,
		TokenPlus, TokenMinus, TokenNot, TokenIncrement, TokenDecrement,
		TokenAt, TokenColonColon:
		return true
	}
	return false
}

func (p *Parser) parsePrefix() *Node {
	switch {
	case prefixOperators[p.peek().Kind]:
		node := p.startNode(KindPrefixExpression)
		node.AddField(FieldOperator, p.leaf(KindToken))
		node.AddChild(p.parsePrefix())
		return node
	case p.atLabel():
		node := p.startNode(KindPrefixExpression)
		node.AddChild(p.parseLabel())
		node.AddChild(p.parsePrefix())
		return node
	case p.check(TokenAt):
		node := p.startNode(KindPrefixExpression)
		node.AddChild(p.parseAnnotation())
		node.AddChild(p.parsePrefix())
		return node
	}
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix extends expr with call, index, navigation and postfix
// operator suffixes.
func (p *Parser) parsePostfix(expr *Node) *Node {
	for {
		if p.terminatorAhead() {
			return expr
		}
		switch kind := p.peek().Kind; {
		case kind == TokenLT:
			if !p.typeArgumentsAhead() {
				return expr
			}
			call, _ := p.resolve(conflictGenerics, map[string]attempt{
				"call_with_type_arguments": func() (*Node, bool) {
					m := p.mark()
					suffix := p.startNode(KindCallSuffix)
					suffix.AddChild(p.parseTypeArguments())
					if p.failedSince(m) || !p.check(TokenLParen) {
						return nil, false
					}
					p.parseCallArguments(suffix)
					node := p.startNode(KindCallExpression)
					node.AddChild(expr)
					node.AddChild(suffix)
					return node, true
				},
				"comparison": func() (*Node, bool) {
					return nil, true
				},
			})
			if call == nil {
				return expr
			}
			expr = call
		case kind == TokenLParen:
			node := p.startNode(KindCallExpression)
			node.AddChild(expr)
			suffix := p.startNode(KindCallSuffix)
			p.parseCallArguments(suffix)
			node.AddChild(suffix)
			expr = node
		case kind == TokenLBrace || p.atAnnotatedLambda():
			if p.noTrailingLambda {
				return expr
			}
			node := p.startNode(KindCallExpression)
			node.AddChild(expr)
			suffix := p.startNode(KindCallSuffix)
			suffix.AddChild(p.parseAnnotatedLambda())
			node.AddChild(suffix)
			expr = node
		case kind == TokenLBracket:
			node := p.startNode(KindIndexingExpression)
			node.AddChild(expr)
			node.AddChild(p.parseIndexingSuffix())
			expr = node
		case kind == TokenDot || kind == TokenSafeDot:
			node := p.startNode(KindNavigationExpression)
			node.AddChild(expr)
			node.AddChild(p.parseNavigationSuffix())
			expr = node
		case kind == TokenColonColon:
			node := p.startNode(KindCallableReference)
			node.AddChild(expr)
			p.parseReferenceTarget(node)
			expr = node
		case postfixOperators[kind]:
			node := p.startNode(KindPostfixExpression)
			node.AddChild(expr)
			node.AddField(FieldOperator, p.leaf(KindToken))
			expr = node
		default:
			return expr
		}
	}
}

// parseCallArguments adds value arguments and an optional trailing
// lambda to a call suffix.
func (p *Parser) parseCallArguments(suffix *Node) {
	suffix.AddChild(p.parseValueArguments())
	if p.noTrailingLambda || p.terminatorAhead() {
		return
	}
	if p.check(TokenLBrace) || p.atAnnotatedLambda() {
		suffix.AddChild(p.parseAnnotatedLambda())
	}
}

// atAnnotatedLambda reports whether a label or annotations precede a
// lambda literal on the same line.
func (p *Parser) atAnnotatedLambda() bool {
	if !p.atLabel() && !p.check(TokenAt) {
		return false
	}
	m := p.mark()
	defer p.reset(m)
	for p.check(TokenAt) {
		p.parseAnnotation()
	}
	if p.atLabel() {
		p.advance()
		p.advance()
	}
	return p.check(TokenLBrace) && !p.failedSince(m)
}

func (p *Parser) parseAnnotatedLambda() *Node {
	node := p.startNode(KindAnnotatedLambda)
	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}
	if p.atLabel() {
		node.AddChild(p.parseLabel())
	}
	node.AddChild(p.parseLambdaLiteral())
	return node
}

func (p *Parser) parseValueArguments() *Node {
	node := p.startNode(KindValueArguments)
	defer p.nest(TokenLParen)()
	p.token(node) // (
	p.parseList(node, TokenRParen, FieldArgument, p.parseValueArgument)
	p.placeholder(node, FieldArgument)
	p.expect(node, TokenRParen)
	return node
}

func (p *Parser) parseValueArgument() *Node {
	node := p.startNode(KindValueArgument)
	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}
	if p.check(TokenIdent) && p.peekN(1).Kind == TokenAssign {
		node.AddChild(p.leaf(KindSimpleIdentifier))
		p.token(node)
	}
	if p.check(TokenStar) {
		spread := p.startNode(KindSpreadExpression)
		p.token(spread)
		spread.AddChild(p.parseExpression())
		node.AddChild(spread)
		return node
	}
	node.AddChild(p.parseExpression())
	return node
}

func (p *Parser) parseIndexingSuffix() *Node {
	node := p.startNode(KindIndexingSuffix)
	defer p.nest(TokenLBracket)()
	p.token(node) // [
	p.parseList(node, TokenRBracket, "", p.parseExpression)
	p.expect(node, TokenRBracket)
	return node
}

func (p *Parser) parseNavigationSuffix() *Node {
	node := p.startNode(KindNavigationSuffix)
	p.token(node) // . or ?.
	switch {
	case p.check(TokenIdent):
		node.AddChild(p.leaf(KindSimpleIdentifier))
	case p.check(TokenClass):
		p.token(node)
	case p.check(TokenLParen):
		node.AddChild(p.parseParenthesized())
	default:
		node.AddChild(p.missing(TokenIdent))
	}
	return node
}

// parseReferenceTarget parses the "::name" or "::class" part of a
// callable reference.
func (p *Parser) parseReferenceTarget(node *Node) {
	p.token(node) // ::
	switch {
	case p.check(TokenIdent):
		node.AddChild(p.leaf(KindSimpleIdentifier))
	case p.check(TokenClass):
		p.token(node)
	default:
		node.AddChild(p.missing(TokenIdent, TokenClass))
	}
}

func (p *Parser) parsePrimary() *Node {
	switch tok := p.peek(); tok.Kind {
	case TokenLParen:
		return p.parseParenthesized()
	case TokenIntLiteral:
		return p.parseNumber(KindIntegerLiteral)
	case TokenHexLiteral:
		return p.parseNumber(KindHexLiteral)
	case TokenBinLiteral:
		return p.parseNumber(KindBinLiteral)
	case TokenRealLiteral:
		return p.leaf(KindRealLiteral)
	case TokenTrue, TokenFalse:
		return p.leaf(KindBooleanLiteral)
	case TokenNull:
		return p.leaf(KindNullLiteral)
	case TokenCharLiteral:
		return p.leaf(KindCharacterLiteral)
	case TokenError:
		if p.lexer.Message(tok.Span.Start.Offset) == msgUnterminatedChar {
			return p.parseUnterminatedChar()
		}
		return p.stray()
	case TokenQuote:
		return p.parseLineString()
	case TokenTripleQuote:
		return p.parseMultiLineString()
	case TokenIdent:
		return p.leaf(KindSimpleIdentifier)
	case TokenThis:
		return p.parseThis()
	case TokenSuper:
		return p.parseSuper()
	case TokenIf:
		return p.parseIf()
	case TokenWhen:
		return p.parseWhen()
	case TokenTry:
		return p.parseTry()
	case TokenReturn, TokenThrow, TokenBreak, TokenContinue:
		return p.parseJump()
	case TokenLBrace:
		return p.parseLambdaLiteral()
	case TokenFun:
		return p.parseAnonymousFunction()
	case TokenObject:
		return p.parseObjectLiteral()
	case TokenColonColon:
		node := p.startNode(KindCallableReference)
		p.parseReferenceTarget(node)
		return node
	case TokenLBracket:
		return p.parseCollectionLiteral()
	}
	return p.errorNode("expected expression", p.atStatementEnd)
}

// parseNumber wraps an integer literal in unsigned_literal or
// long_literal when a suffix follows it.
func (p *Parser) parseNumber(kind NodeKind) *Node {
	num := p.leaf(kind)
	var wrap NodeKind
	switch p.peek().Kind {
	case TokenUnsignedSuffix:
		wrap = KindUnsignedLiteral
	case TokenLongSuffix:
		wrap = KindLongLiteral
	default:
		return num
	}
	node := p.startNode(wrap)
	node.AddChild(num)
	p.token(node)
	return node
}

// parseUnterminatedChar keeps an unclosed character literal as a
// character_literal with an unterminated marker. The lexer stopped it at
// the end of the line, so it is a lexical error rather than a literal
// running to the end of input.
func (p *Parser) parseUnterminatedChar() *Node {
	node := p.startNode(KindCharacterLiteral)
	p.token(node)
	marker := p.startNode(KindUnterminated)
	node.AddChild(marker)
	node.Error = p.addError(LexError, msgUnterminatedChar, node.Span, nil)
	return node
}

func (p *Parser) parseParenthesized() *Node {
	node := p.startNode(KindParenthesizedExpression)
	defer p.nest(TokenLParen)()
	p.token(node) // (
	node.AddChild(p.parseExpression())
	p.expect(node, TokenRParen)
	return node
}

func (p *Parser) parseCollectionLiteral() *Node {
	node := p.startNode(KindCollectionLiteral)
	defer p.nest(TokenLBracket)()
	p.token(node) // [
	p.parseList(node, TokenRBracket, "", p.parseExpression)
	p.expect(node, TokenRBracket)
	return node
}

// parseAtLabel consumes "@name" directly attached to the previous token.
func (p *Parser) parseAtLabel(node *Node) bool {
	if !p.check(TokenAt) || !p.adjacent(0) || p.peekN(1).Kind != TokenIdent || !p.adjacent(1) {
		return false
	}
	p.token(node)
	node.AddChild(p.leaf(KindTypeIdentifier))
	return true
}

func (p *Parser) parseThis() *Node {
	node := p.startNode(KindThisExpression)
	p.token(node)
	p.parseAtLabel(node)
	return node
}

func (p *Parser) parseSuper() *Node {
	node := p.startNode(KindSuperExpression)
	p.token(node)
	qualified := false
	if p.check(TokenLT) && p.adjacent(0) {
		node.AddChild(p.parseTypeArguments())
		qualified = true
	}
	if p.parseAtLabel(node) && qualified {
		return p.wrapError(node, "qualified super with label is not supported")
	}
	return node
}

func (p *Parser) parseIf() *Node {
	node := p.startNode(KindIfExpression)
	p.token(node) // if
	p.parseCondition(node)

	if !p.check(TokenElse) && !p.check(TokenSemicolon) {
		node.AddField(FieldConsequence, p.parseControlStructureBody())
	}

	p.resolve(conflictIfElse, map[string]attempt{
		"else_attached": func() (*Node, bool) {
			carrier := p.startNode(KindSemis)
			p.semis(carrier)
			if !p.check(TokenElse) {
				return nil, false
			}
			node.AddChild(carrier)
			p.token(node)
			if p.check(TokenSemicolon) {
				return node, true
			}
			node.AddField(FieldAlternative, p.parseControlStructureBody())
			return node, true
		},
		"if_alone": func() (*Node, bool) {
			return nil, true
		},
	})
	return node
}

func (p *Parser) parseWhen() *Node {
	node := p.startNode(KindWhenExpression)
	p.token(node) // when
	if p.check(TokenLParen) {
		node.AddChild(p.parseWhenSubject())
	}

	defer p.nest(TokenLBrace)()
	if !p.expect(node, TokenLBrace) {
		p.placeholder(node, FieldEntry)
		return node
	}
	// Entries need no separator: "else" on a new line continues the
	// previous line for the terminator recognizer.
	for !p.match(TokenRBrace, TokenEOF, TokenUnterminated) {
		progress := p.mustProgress(node)
		if p.semis(node) {
			continue
		}
		if isCloser(p.peek().Kind) {
			node.AddChild(p.stray())
			continue
		}
		node.AddField(FieldEntry, p.parseWhenEntry())
		progress()
	}
	p.placeholder(node, FieldEntry)
	p.expect(node, TokenRBrace)
	return node
}

func (p *Parser) parseWhenSubject() *Node {
	node := p.startNode(KindWhenSubject)
	defer p.nest(TokenLParen)()
	p.token(node) // (
	if p.check(TokenVal) || p.check(TokenAt) {
		for p.check(TokenAt) {
			node.AddChild(p.parseAnnotation())
		}
		p.expect(node, TokenVal)
		node.AddChild(p.parseVariableDeclaration())
		p.expect(node, TokenAssign)
	}
	node.AddChild(p.parseExpression())
	p.expect(node, TokenRParen)
	return node
}

func (p *Parser) parseWhenEntry() *Node {
	node := p.startNode(KindWhenEntry)
	if p.check(TokenElse) {
		p.token(node)
	} else {
		for {
			node.AddChild(p.parseWhenCondition())
			if !p.accept(node, TokenComma) || p.check(TokenArrow) {
				break
			}
		}
	}
	if !p.expect(node, TokenArrow) {
		return node
	}
	node.AddField(FieldBody, p.parseControlStructureBody())
	return node
}

func (p *Parser) parseWhenCondition() *Node {
	node := p.startNode(KindWhenCondition)
	switch {
	case p.match(TokenIn, TokenNotIn):
		test := p.startNode(KindRangeTest)
		p.token(test)
		test.AddChild(p.parseExpression())
		node.AddChild(test)
	case p.match(TokenIs, TokenNotIs):
		test := p.startNode(KindTypeTest)
		p.token(test)
		test.AddChild(p.parseType())
		node.AddChild(test)
	default:
		node.AddChild(p.parseExpression())
	}
	return node
}

func (p *Parser) parseTry() *Node {
	node := p.startNode(KindTryExpression)
	p.token(node) // try
	node.AddField(FieldBody, p.parseBlock())

	for p.checkWord("catch") && p.peekN(1).Kind == TokenLParen {
		node.AddField(FieldCatch, p.parseCatchBlock())
	}
	p.placeholder(node, FieldCatch)
	if p.checkWord("finally") {
		fin := p.startNode(KindFinallyBlock)
		p.token(fin)
		fin.AddChild(p.parseBlock())
		node.AddChild(fin)
	}
	return node
}

func (p *Parser) parseCatchBlock() *Node {
	node := p.startNode(KindCatchBlock)
	p.token(node) // catch

	restore := p.nest(TokenLParen)
	p.expect(node, TokenLParen)
	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}
	node.AddField(FieldIdentifier, p.parseSimpleIdentifier())
	p.expect(node, TokenColon)
	node.AddField(FieldType, p.parseType())
	p.accept(node, TokenComma)
	p.expect(node, TokenRParen)
	restore()

	node.AddField(FieldBody, p.parseBlock())
	return node
}

func (p *Parser) parseJump() *Node {
	node := p.startNode(KindJumpExpression)
	kind := p.peek().Kind
	p.token(node)
	if kind == TokenThrow {
		node.AddChild(p.parseExpression())
		return node
	}
	p.parseAtLabel(node)
	if kind == TokenReturn && !p.terminatorAhead() && canStartExpression(p.peek().Kind) {
		node.AddChild(p.parseExpression())
	}
	return node
}

func (p *Parser) parseLambdaLiteral() *Node {
	node := p.startNode(KindLambdaLiteral)
	defer p.nest(TokenLBrace)()
	p.token(node) // {

	if p.check(TokenArrow) {
		p.token(node)
	} else if params, ok := p.tryLambdaParameters(); ok {
		node.AddChild(params)
		p.token(node) // ->
	}

	p.parseStatements(node, TokenRBrace)
	p.placeholder(node, FieldStatements)
	p.expect(node, TokenRBrace)
	return node
}

// tryLambdaParameters parses the parameter list of a lambda. It backs out
// unless the list is followed by "->".
func (p *Parser) tryLambdaParameters() (*Node, bool) {
	if !p.match(TokenIdent, TokenLParen) {
		return nil, false
	}
	m := p.mark()
	node := p.startNode(KindLambdaParameters)
	for {
		if p.check(TokenLParen) {
			node.AddChild(p.parseMultiVariableDeclaration())
		} else {
			node.AddChild(p.parseVariableDeclaration())
		}
		if p.failedSince(m) || !p.accept(node, TokenComma) || p.check(TokenArrow) {
			break
		}
	}
	if p.failedSince(m) || !p.check(TokenArrow) {
		p.reset(m)
		return nil, false
	}
	return node, true
}

func (p *Parser) parseAnonymousFunction() *Node {
	node := p.startNode(KindAnonymousFunction)
	p.token(node) // fun

	if !p.check(TokenLParen) {
		node.AddChild(p.parseType())
		p.expect(node, TokenDot)
	}
	if p.check(TokenLParen) {
		node.AddField(FieldParameters, p.parseFunctionValueParameters())
	} else {
		node.AddChild(p.missing(TokenLParen))
	}
	if p.accept(node, TokenColon) {
		node.AddField(FieldReturnType, p.parseType())
	}
	if p.checkWord("where") {
		node.AddChild(p.parseTypeConstraints())
	}
	if p.check(TokenLBrace) || p.check(TokenAssign) {
		node.AddField(FieldBody, p.parseFunctionBody())
	}
	return node
}

func (p *Parser) parseObjectLiteral() *Node {
	node := p.startNode(KindObjectLiteral)
	p.token(node) // object
	if p.accept(node, TokenColon) {
		saved := p.noTrailingLambda
		p.noTrailingLambda = true
		p.parseDelegationSpecifiers(node)
		p.noTrailingLambda = saved
	}
	if p.check(TokenLBrace) {
		node.AddField(FieldBody, p.parseClassBody())
	}
	return node
}
