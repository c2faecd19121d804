package parser

// parseStatement returns a hidden _statement node; its children are
// spliced into the enclosing block.
func (p *Parser) parseStatement() *Node {
	node := p.startNode(KindStatement)

	for p.atLabel() {
		node.AddChild(p.parseLabel())
	}

	switch {
	case p.check(TokenAt) && !p.isFileAnnotation():
		n, _ := p.resolve(conflictAnnotation, map[string]attempt{
			"annotation": func() (*Node, bool) {
				if !p.isDeclarationStart(false) {
					return nil, false
				}
				return p.parseDeclaration(false), true
			},
			"prefix_expression": func() (*Node, bool) {
				return p.parseAssignment(), true
			},
		})
		node.AddChild(n)
	case p.atModifier():
		n, _ := p.resolve(conflictSoftKeyword, map[string]attempt{
			"modifier_or_accessor": func() (*Node, bool) {
				if !p.isDeclarationStart(false) {
					return nil, false
				}
				return p.parseDeclaration(false), true
			},
			"simple_identifier": func() (*Node, bool) {
				return p.parseAssignment(), true
			},
		})
		node.AddChild(n)
	case p.isDeclarationStart(false):
		node.AddChild(p.parseDeclaration(false))
	case p.check(TokenFor):
		node.AddChild(p.parseForStatement())
	case p.check(TokenWhile):
		node.AddChild(p.parseWhileStatement())
	case p.check(TokenDo):
		node.AddChild(p.parseDoWhileStatement())
	default:
		node.AddChild(p.parseAssignment())
	}
	return node
}

// atLabel reports whether the next tokens are "name@" directly followed
// by something other than a line break.
func (p *Parser) atLabel() bool {
	return p.check(TokenIdent) && p.peekN(1).Kind == TokenAt && p.adjacent(1)
}

func (p *Parser) parseLabel() *Node {
	node := p.startNode(KindLabel)
	p.token(node)
	p.token(node)
	return node
}

// parseAssignment parses an expression and, when an assignment operator
// follows on the same line, the assignment it starts. Assignments nest to
// the right.
func (p *Parser) parseAssignment() *Node {
	left := p.parseExpression()
	if !assignmentOperators[p.peek().Kind] || p.terminatorAhead() {
		return left
	}
	node := p.startNode(KindAssignment)
	node.AddField(FieldLeft, left)
	node.AddField(FieldOperator, p.leaf(KindToken))
	node.AddField(FieldRight, p.parseAssignment())
	return node
}

func (p *Parser) parseBlock() *Node {
	node := p.startNode(KindBlock)
	defer p.nest(TokenLBrace)()
	if !p.expect(node, TokenLBrace) {
		p.placeholder(node, FieldStatements)
		return node
	}
	p.parseStatements(node, TokenRBrace)
	p.placeholder(node, FieldStatements)
	p.expect(node, TokenRBrace)
	return node
}

func (p *Parser) parseControlStructureBody() *Node {
	node := p.startNode(KindControlStructureBody)
	if p.check(TokenLBrace) {
		node.AddChild(p.parseBlock())
	} else {
		node.AddChild(p.parseStatement())
	}
	return node
}

// parseLoopBody parses the body of a for or while loop. A loop may have
// an empty body written as ";".
func (p *Parser) parseLoopBody(node *Node) {
	if p.check(TokenSemicolon) {
		return
	}
	node.AddField(FieldBody, p.parseControlStructureBody())
}

func (p *Parser) parseForStatement() *Node {
	node := p.startNode(KindForStatement)
	p.token(node) // for

	restore := p.nest(TokenLParen)
	p.expect(node, TokenLParen)
	for p.check(TokenAt) {
		node.AddChild(p.parseAnnotation())
	}
	if p.check(TokenLParen) {
		node.AddField(FieldBlockIterator, p.parseMultiVariableDeclaration())
	} else {
		node.AddField(FieldBlockIterator, p.parseVariableDeclaration())
	}
	p.expect(node, TokenIn)
	node.AddField(FieldIterable, p.parseExpression())
	p.expect(node, TokenRParen)
	restore()

	p.parseLoopBody(node)
	return node
}

func (p *Parser) parseWhileStatement() *Node {
	node := p.startNode(KindWhileStatement)
	p.token(node) // while
	p.parseCondition(node)
	p.parseLoopBody(node)
	return node
}

func (p *Parser) parseDoWhileStatement() *Node {
	node := p.startNode(KindDoWhileStatement)
	p.token(node) // do
	if !p.check(TokenWhile) {
		node.AddField(FieldBody, p.parseControlStructureBody())
	}
	p.expect(node, TokenWhile)
	p.parseCondition(node)
	return node
}

// parseCondition parses "(expression)" into the condition field.
func (p *Parser) parseCondition(node *Node) {
	defer p.nest(TokenLParen)()
	p.expect(node, TokenLParen)
	node.AddField(FieldCondition, p.parseExpression())
	p.expect(node, TokenRParen)
}
