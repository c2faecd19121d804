package parser

func (p *Parser) parseLineString() *Node {
	return p.parseString(KindLineStringLiteral, TokenQuote)
}

func (p *Parser) parseMultiLineString() *Node {
	return p.parseString(KindMultiLineStringLiteral, TokenTripleQuote)
}

// parseString parses the parts of a string literal up to its closing
// delimiter. An unterminated string keeps everything it covered and ends
// with an unterminated marker.
func (p *Parser) parseString(kind NodeKind, closer TokenKind) *Node {
	node := p.startNode(kind)
	p.token(node) // opening quote
	for {
		switch p.peek().Kind {
		case closer:
			p.token(node)
			return node
		case TokenStringText:
			p.token(node)
		case TokenEscape:
			node.AddChild(p.leaf(KindCharacterEscapeSeq))
		case TokenDollar:
			interp := p.startNode(KindInterpolation)
			p.token(interp)
			interp.AddChild(p.parseSimpleIdentifier())
			node.AddChild(interp)
		case TokenInterpStart:
			node.AddChild(p.parseInterpolatedExpression())
		case TokenUnterminated:
			marker := p.leaf(KindUnterminated)
			node.AddChild(marker)
			node.Error = p.addError(UnterminatedLiteral, "unterminated string literal", node.Span, []TokenKind{closer})
			return node
		case TokenError:
			node.AddChild(p.stray())
		case TokenEOF:
			node.AddChild(p.missing(closer))
			return node
		default:
			// Only reachable after a malformed interpolation.
			node.AddChild(p.stray())
		}
	}
}

func (p *Parser) parseInterpolatedExpression() *Node {
	node := p.startNode(KindInterpolatedExpression)
	defer p.nest(TokenInterpStart)()
	p.token(node) // ${
	if p.check(TokenInterpEnd) {
		node.AddChild(p.missingMessage("expected expression"))
	} else {
		node.AddChild(p.parseExpression())
	}
	recovered := false
	for !p.match(TokenInterpEnd, TokenUnterminated, TokenEOF) {
		node.AddChild(p.errorNode(expectedMessage([]TokenKind{TokenInterpEnd}), func() bool {
			return p.match(TokenInterpEnd, TokenUnterminated)
		}, TokenInterpEnd))
		if isCloser(p.peek().Kind) && !p.check(TokenInterpEnd) {
			node.AddChild(p.stray())
		}
		recovered = true
	}
	// The skipped tokens already report the missing brace.
	if recovered && !p.check(TokenInterpEnd) {
		return node
	}
	p.expect(node, TokenInterpEnd)
	return node
}
