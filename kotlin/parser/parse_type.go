package parser

func (p *Parser) parseType() *Node {
	mods := p.parseTypeModifiers()
	switch {
	case p.check(TokenLParen):
		m := p.mark()
		if ft, ok := p.tryFunctionType(mods); ok {
			return ft
		}
		p.reset(m)
		return p.parseNullable(p.parseParenthesizedType(mods))
	case p.check(TokenIdent):
		ut := p.parseUserType(0)
		if p.check(TokenDot) && p.peekN(1).Kind == TokenLParen {
			m := p.mark()
			ft := p.startNode(KindFunctionType)
			ft.AddChild(mods)
			ft.AddChild(ut)
			p.token(ft)
			if p.parseFunctionTypeRest(ft) {
				return ft
			}
			p.reset(m)
		}
		prepend(ut, mods)
		return p.parseNullable(ut)
	}
	if mods != nil {
		return p.wrapError(mods, "expected type after type modifiers")
	}
	return p.missingMessage("expected type", TokenIdent, TokenLParen)
}

// prepend puts child in front of n's children.
func prepend(n, child *Node) {
	if child == nil {
		return
	}
	n.Children = append([]*Node{child}, n.Children...)
	n.Span.Start = child.Span.Start
}

func (p *Parser) parseTypeModifiers() *Node {
	var node *Node
	for {
		var mod *Node
		switch {
		case p.check(TokenAt):
			mod = p.parseAnnotation()
		case p.checkWord("suspend") && (p.peekN(1).Kind == TokenLParen || p.peekN(1).Kind == TokenIdent):
			mod = p.startNode(KindFunctionModifier)
			p.token(mod)
		default:
			return node
		}
		if node == nil {
			node = p.startNode(KindTypeModifiers)
		}
		node.AddChild(mod)
	}
}

// parseNullable wraps t for each "?" on the same line.
func (p *Parser) parseNullable(t *Node) *Node {
	if !p.check(TokenQuestion) || p.newlineBefore() {
		return t
	}
	node := p.startNode(KindNullableType)
	node.AddChild(t)
	for p.check(TokenQuestion) && !p.newlineBefore() {
		p.token(node)
	}
	return node
}

// parseUserType parses a dotted type name. With max > 0 at most max
// segments are taken.
func (p *Parser) parseUserType(max int) *Node {
	node := p.startNode(KindUserType)
	for i := 1; ; i++ {
		seg := p.startNode(KindSimpleUserType)
		seg.AddChild(p.parseSimpleIdentifier())
		if p.check(TokenLT) {
			seg.AddChild(p.parseTypeArguments())
		}
		node.AddChild(seg)
		if max > 0 && i >= max {
			return node
		}
		if !p.check(TokenDot) || p.peekN(1).Kind != TokenIdent {
			return node
		}
		p.token(node)
	}
}

func (p *Parser) parseTypeArguments() *Node {
	node := p.startNode(KindTypeArguments)
	p.token(node) // <
	p.parseList(node, TokenGT, "", p.parseTypeProjection)
	p.expect(node, TokenGT)
	return node
}

func (p *Parser) parseTypeProjection() *Node {
	node := p.startNode(KindTypeProjection)
	if p.check(TokenStar) {
		p.token(node)
		return node
	}
	if (p.check(TokenIn) || p.checkWord("out")) && p.peekN(1).Kind != TokenComma && p.peekN(1).Kind != TokenGT {
		mods := p.startNode(KindModifiers)
		variance := p.startNode(KindVarianceModifier)
		p.token(variance)
		mods.AddChild(variance)
		node.AddChild(mods)
	}
	node.AddChild(p.parseType())
	return node
}

// typeArgumentsAhead scans for a "<...>" group made only of tokens that
// can appear in type arguments, immediately followed by "(".
func (p *Parser) typeArgumentsAhead() bool {
	depth := 0
	for i := 0; p.pos+i < len(p.tokens); i++ {
		switch p.peekN(i).Kind {
		case TokenLT:
			depth++
		case TokenGT:
			depth--
			if depth == 0 {
				return p.peekN(i+1).Kind == TokenLParen
			}
		case TokenIdent, TokenDot, TokenComma, TokenQuestion, TokenStar, TokenIn,
			TokenAt, TokenColon, TokenArrow, TokenLParen, TokenRParen:
		default:
			return false
		}
	}
	return false
}

// tryFunctionType parses "(params) -> type". It reports false when no
// arrow follows the parameter list.
func (p *Parser) tryFunctionType(mods *Node) (*Node, bool) {
	node := p.startNode(KindFunctionType)
	node.AddChild(mods)
	return node, p.parseFunctionTypeRest(node)
}

func (p *Parser) parseFunctionTypeRest(node *Node) bool {
	m := p.mark()
	params := p.parseFunctionTypeParameters()
	if p.failedSince(m) || !p.check(TokenArrow) {
		return false
	}
	node.AddChild(params)
	p.token(node)
	node.AddField(FieldReturnType, p.parseType())
	return true
}

func (p *Parser) parseFunctionTypeParameters() *Node {
	node := p.startNode(KindFunctionTypeParameters)
	defer p.nest(TokenLParen)()
	p.token(node)
	p.parseList(node, TokenRParen, "", func() *Node {
		if p.check(TokenIdent) && p.peekN(1).Kind == TokenColon {
			return p.parseParameter(true)
		}
		return p.parseType()
	})
	p.expect(node, TokenRParen)
	return node
}

func (p *Parser) parseParenthesizedType(mods *Node) *Node {
	node := p.startNode(KindParenthesizedType)
	node.AddChild(mods)
	defer p.nest(TokenLParen)()
	p.token(node)
	node.AddChild(p.parseType())
	p.expect(node, TokenRParen)
	return node
}
