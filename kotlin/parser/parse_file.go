package parser

func (p *Parser) parseSourceFile() *Node {
	node := p.startNode(KindSourceFile)

	if p.check(TokenShebang) {
		node.AddChild(p.leaf(KindShebangLine))
	}

	for p.isFileAnnotation() {
		node.AddChild(p.parseFileAnnotation())
		p.semis(node)
	}

	if p.check(TokenPackage) {
		node.AddChild(p.parsePackageHeader())
		p.semis(node)
	}

	if p.check(TokenImport) {
		node.AddField(FieldImports, p.parseImportList())
	}
	p.placeholder(node, FieldImports)

	p.parseStatements(node, TokenEOF)
	p.placeholder(node, FieldStatements)

	// The EOF leaf carries trailing whitespace and comments.
	node.AddChild(p.leaf(KindToken))
	return node
}

// parseExpressionUnit parses a single expression and keeps whatever
// follows it as an error.
func (p *Parser) parseExpressionUnit() *Node {
	node := p.parseExpression()
	if !p.check(TokenEOF) {
		rest := p.startNode(KindError)
		for !p.check(TokenEOF) {
			p.token(rest)
		}
		rest.Error = p.addError(SyntaxError, "unexpected input after expression", rest.Span, nil)
		node.AddChild(rest)
	}
	node.AddChild(p.leaf(KindToken))
	return node
}

// parseStatements parses statements until closer, attaching each under
// the statements field.
func (p *Parser) parseStatements(node *Node, closer TokenKind) {
	p.parseSequence(node, closer, FieldStatements, p.parseStatement)
}

// parseSequence parses separator-delimited elements until closer.
func (p *Parser) parseSequence(node *Node, closer TokenKind, field string, elem func() *Node) {
	for !p.match(closer, TokenEOF, TokenUnterminated) {
		progress := p.mustProgress(node)
		if p.semis(node) {
			continue
		}
		if isCloser(p.peek().Kind) {
			node.AddChild(p.stray())
			continue
		}
		node.AddField(field, elem())
		if !p.semis(node) && !p.match(closer, TokenEOF, TokenUnterminated) {
			node.AddChild(p.errorNode("expected ';' or newline", p.atStatementEnd))
			p.semis(node)
		}
		progress()
	}
}

func (p *Parser) isFileAnnotation() bool {
	return p.check(TokenAt) && p.peekN(1).Kind == TokenIdent && p.peekN(1).Literal == "file" &&
		p.adjacent(1) && p.peekN(2).Kind == TokenColon
}

func (p *Parser) parseFileAnnotation() *Node {
	node := p.startNode(KindFileAnnotation)
	p.token(node) // @
	p.token(node) // file
	p.token(node) // :
	p.parseAnnotationTarget(node)
	return node
}

func (p *Parser) parsePackageHeader() *Node {
	node := p.startNode(KindPackageHeader)
	p.token(node)
	node.AddChild(p.parseIdentifier())
	return node
}

func (p *Parser) parseImportList() *Node {
	node := p.startNode(KindImportList)
	for p.check(TokenImport) {
		node.AddChild(p.parseImportHeader())
		p.semis(node)
	}
	return node
}

func (p *Parser) parseImportHeader() *Node {
	node := p.startNode(KindImportHeader)
	p.token(node)
	node.AddChild(p.parseIdentifier())

	switch {
	case p.check(TokenDot) && p.peekN(1).Kind == TokenStar:
		wildcard := p.startNode(KindWildcardImport)
		p.token(wildcard)
		p.token(wildcard)
		node.AddChild(wildcard)
	case p.check(TokenAs):
		alias := p.startNode(KindImportAlias)
		p.token(alias)
		if p.check(TokenIdent) {
			alias.AddChild(p.leaf(KindTypeIdentifier))
		} else {
			alias.AddChild(p.missing(TokenIdent))
		}
		node.AddChild(alias)
	}
	return node
}

// parseIdentifier parses a dotted name. It stops before ".*".
func (p *Parser) parseIdentifier() *Node {
	node := p.startNode(KindIdentifier)
	node.AddChild(p.parseSimpleIdentifier())
	for p.check(TokenDot) && p.peekN(1).Kind == TokenIdent {
		p.token(node)
		node.AddChild(p.leaf(KindSimpleIdentifier))
	}
	return node
}

func (p *Parser) parseSimpleIdentifier() *Node {
	if p.check(TokenIdent) {
		return p.leaf(KindSimpleIdentifier)
	}
	return p.missing(TokenIdent)
}
