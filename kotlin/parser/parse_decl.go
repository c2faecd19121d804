package parser

var useSiteTargets = map[string]bool{
	"field":    true,
	"property": true,
	"get":      true,
	"set":      true,
	"receiver": true,
	"param":    true,
	"setparam": true,
	"delegate": true,
	"file":     true,
}

// atModifier reports whether the next identifier is in modifier position:
// a modifier word followed by another modifier, an annotation, a name or
// a declaration keyword.
func (p *Parser) atModifier() bool {
	tok := p.peek()
	if tok.Kind != TokenIdent || !isModifierWord(tok.Literal) || tok.Literal == "companion" {
		return false
	}
	switch p.peekN(1).Kind {
	case TokenIdent, TokenAt, TokenClass, TokenInterface, TokenFun,
		TokenVal, TokenVar, TokenObject, TokenTypealias:
		return true
	}
	return false
}

// isDeclarationStart looks past annotations and modifiers for a
// declaration keyword. Members additionally start with "init" or
// "constructor".
func (p *Parser) isDeclarationStart(member bool) bool {
	m := p.mark()
	defer p.reset(m)
	for {
		switch {
		case p.check(TokenAt):
			p.parseAnnotation()
			continue
		case p.atModifier():
			p.advance()
			continue
		}
		break
	}

	next := p.peekN(1).Kind
	switch p.peek().Kind {
	case TokenClass, TokenInterface, TokenVal, TokenVar, TokenTypealias:
		return true
	case TokenFun:
		return next != TokenLParen
	case TokenObject:
		return next == TokenIdent
	case TokenIdent:
		switch p.peek().Literal {
		case "companion":
			return next == TokenObject
		case "init":
			return member && next == TokenLBrace
		case "constructor":
			return member && next == TokenLParen
		}
	}
	return false
}

func (p *Parser) parseDeclaration(member bool) *Node {
	mods := p.parseModifiers()
	switch {
	case p.match(TokenClass, TokenInterface),
		p.check(TokenFun) && p.peekN(1).Kind == TokenInterface:
		return p.parseClassDeclaration(mods)
	case p.check(TokenFun):
		return p.parseFunctionDeclaration(mods)
	case p.match(TokenVal, TokenVar):
		return p.parsePropertyDeclaration(mods)
	case p.check(TokenObject):
		return p.parseObjectDeclaration(mods, KindObjectDeclaration)
	case p.checkWord("companion"):
		return p.parseObjectDeclaration(mods, KindCompanionObject)
	case p.check(TokenTypealias):
		return p.parseTypeAlias(mods)
	case member && p.checkWord("init"):
		return p.parseAnonymousInitializer(mods)
	case member && p.checkWord("constructor"):
		return p.parseSecondaryConstructor(mods)
	}
	if mods != nil {
		return p.wrapError(mods, "expected declaration after modifiers")
	}
	return p.errorNode("expected declaration", p.atStatementEnd)
}

// wrapError puts a parsed node under an ERROR node. It is used for
// constructs that parse but are not supported.
func (p *Parser) wrapError(n *Node, msg string) *Node {
	e := &Node{Kind: KindError, Span: n.Span}
	e.AddChild(n)
	e.Error = &Error{Kind: SyntaxError, Message: msg, Span: e.Span}
	p.errors = append(p.errors, e.Error)
	return e
}

func (p *Parser) parseModifiers() *Node {
	if !(p.check(TokenAt) && !p.isFileAnnotation()) && !p.atModifier() {
		return nil
	}
	node := p.startNode(KindModifiers)
	for {
		switch {
		case p.check(TokenAt) && !p.isFileAnnotation():
			node.AddChild(p.parseAnnotation())
		case p.atModifier():
			mod := p.startNode(modifierClasses[p.peek().Literal])
			p.token(mod)
			node.AddChild(mod)
		default:
			return node
		}
	}
}

func (p *Parser) parseAnnotation() *Node {
	node := p.startNode(KindAnnotation)
	p.token(node) // @
	if p.check(TokenIdent) && useSiteTargets[p.peek().Literal] && p.peekN(1).Kind == TokenColon {
		target := p.startNode(KindUseSiteTarget)
		p.token(target)
		p.token(target)
		node.AddChild(target)
	}
	p.parseAnnotationTarget(node)
	return node
}

// parseAnnotationTarget parses "[A B(c)]" or a single annotation type
// with optional arguments.
func (p *Parser) parseAnnotationTarget(node *Node) {
	if !p.check(TokenLBracket) {
		node.AddChild(p.parseUnescapedAnnotation())
		return
	}
	defer p.nest(TokenLBracket)()
	p.token(node)
	for !p.check(TokenRBracket) && !p.check(TokenEOF) && !isCloser(p.peek().Kind) {
		progress := p.mustProgress(node)
		node.AddChild(p.parseUnescapedAnnotation())
		progress()
	}
	p.expect(node, TokenRBracket)
}

func (p *Parser) parseUnescapedAnnotation() *Node {
	if !p.check(TokenIdent) {
		return p.missingMessage("expected annotation name", TokenIdent)
	}
	typ := p.parseUserType(0)
	if p.check(TokenLParen) && p.adjacent(0) {
		inv := p.startNode(KindConstructorInvocation)
		inv.AddChild(typ)
		inv.AddChild(p.parseValueArguments())
		return inv
	}
	return typ
}

func hasModifier(mods *Node, word string) bool {
	if mods == nil {
		return false
	}
	for _, m := range mods.Children {
		if m.Kind == KindAnnotation {
			continue
		}
		for _, c := range m.Children {
			if c.Kind == KindToken && c.TokenLiteral() == word {
				return true
			}
		}
	}
	return false
}

func (p *Parser) parseTypeIdentifier() *Node {
	if p.check(TokenIdent) {
		return p.leaf(KindTypeIdentifier)
	}
	return p.missing(TokenIdent)
}

func (p *Parser) parseClassDeclaration(mods *Node) *Node {
	node := p.startNode(KindClassDeclaration)
	node.AddChild(mods)
	enum := hasModifier(mods, "enum")

	if p.check(TokenFun) {
		p.token(node)
	}
	p.token(node) // class or interface
	node.AddField(FieldIdentifier, p.parseTypeIdentifier())

	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}
	if p.atPrimaryConstructor() {
		node.AddChild(p.parsePrimaryConstructor())
	}
	if p.check(TokenColon) {
		p.token(node)
		p.parseDelegationSpecifiers(node)
	}
	if p.checkWord("where") {
		node.AddChild(p.parseTypeConstraints())
	}
	if p.check(TokenLBrace) {
		if enum {
			node.AddField(FieldBody, p.parseEnumClassBody())
		} else {
			node.AddField(FieldBody, p.parseClassBody())
		}
	}
	return node
}

func (p *Parser) atPrimaryConstructor() bool {
	if p.check(TokenLParen) {
		return !p.newlineBefore()
	}
	if !p.check(TokenAt) && !p.atModifier() && !p.checkWord("constructor") {
		return false
	}
	m := p.mark()
	defer p.reset(m)
	p.parseModifiers()
	return p.checkWord("constructor") && p.peekN(1).Kind == TokenLParen
}

func (p *Parser) parsePrimaryConstructor() *Node {
	node := p.startNode(KindPrimaryConstructor)
	node.AddChild(p.parseModifiers())
	if p.checkWord("constructor") {
		p.token(node)
	}
	defer p.nest(TokenLParen)()
	p.expect(node, TokenLParen)
	p.parseList(node, TokenRParen, "", p.parseClassParameter)
	p.expect(node, TokenRParen)
	return node
}

func (p *Parser) parseClassParameter() *Node {
	node := p.startNode(KindClassParameter)
	node.AddChild(p.parseModifiers())
	if p.match(TokenVal, TokenVar) {
		p.token(node)
	}
	node.AddField(FieldIdentifier, p.parseSimpleIdentifier())
	p.expect(node, TokenColon)
	node.AddField(FieldType, p.parseType())
	if p.accept(node, TokenAssign) {
		node.AddField(FieldValue, p.parseExpression())
	}
	return node
}

// parseList parses comma-separated elements up to, not including, closer.
// A declaration starting on a new line after an element ends the list
// early; the caller then reports the missing closer.
func (p *Parser) parseList(node *Node, closer TokenKind, field string, elem func() *Node) {
	for !p.match(closer, TokenEOF, TokenUnterminated) && !isCloser(p.peek().Kind) {
		progress := p.mustProgress(node)
		node.AddField(field, elem())
		if !p.accept(node, TokenComma) && !p.check(closer) {
			if p.atDeclarationLine() {
				return
			}
			node.AddChild(p.errorNode(expectedMessage([]TokenKind{TokenComma, closer}), p.atListEnd(closer), TokenComma, closer))
			p.accept(node, TokenComma)
			if p.atDeclarationLine() {
				return
			}
		}
		progress()
	}
}

func (p *Parser) parseDelegationSpecifiers(node *Node) {
	for {
		node.AddChild(p.parseDelegationSpecifier())
		if !p.accept(node, TokenComma) {
			return
		}
	}
}

func (p *Parser) parseDelegationSpecifier() *Node {
	node := p.startNode(KindDelegationSpecifier)
	if p.check(TokenAt) {
		for p.check(TokenAt) {
			node.AddChild(p.parseAnnotation())
		}
		p.parseDelegationTarget(node)
		return p.wrapError(node, "annotated delegation specifiers are not supported")
	}
	p.parseDelegationTarget(node)
	return node
}

func (p *Parser) parseDelegationTarget(node *Node) {
	if p.check(TokenLParen) || p.checkWord("suspend") {
		node.AddChild(p.parseType())
		return
	}
	typ, _ := p.resolve(conflictDelegationType, map[string]attempt{
		"greedy_user_type": func() (*Node, bool) {
			m := p.mark()
			t := p.parseUserType(0)
			return t, !p.failedSince(m)
		},
		"separate_items": func() (*Node, bool) {
			return p.parseUserType(1), true
		},
	})

	switch {
	case p.check(TokenLParen) && !p.newlineBefore():
		inv := p.startNode(KindConstructorInvocation)
		inv.AddChild(typ)
		inv.AddChild(p.parseValueArguments())
		node.AddChild(inv)
	case p.checkWord("by"):
		del := p.startNode(KindExplicitDelegation)
		del.AddChild(typ)
		p.token(del)
		del.AddChild(p.parseDelegate())
		node.AddChild(del)
	default:
		node.AddChild(typ)
	}
}

// parseDelegate parses the expression after "by" in a delegation list. A
// following "{" is the class body unless the delegate is "fun (...)".
func (p *Parser) parseDelegate() *Node {
	n, _ := p.resolve(conflictDelegationBody, map[string]attempt{
		"anonymous_function": func() (*Node, bool) {
			if !p.check(TokenFun) || p.peekN(1).Kind != TokenLParen {
				return nil, false
			}
			return p.parseAnonymousFunction(), true
		},
		"class_body": func() (*Node, bool) {
			saved := p.noTrailingLambda
			p.noTrailingLambda = true
			defer func() { p.noTrailingLambda = saved }()
			return p.parseExpression(), true
		},
	})
	return n
}

func (p *Parser) parseClassBody() *Node {
	node := p.startNode(KindClassBody)
	defer p.nest(TokenLBrace)()
	p.token(node)
	p.parseSequence(node, TokenRBrace, FieldMember, p.parseClassMember)
	p.placeholder(node, FieldMember)
	p.expect(node, TokenRBrace)
	return node
}

func (p *Parser) parseClassMember() *Node {
	node := p.startNode(KindClassMember)
	if p.isDeclarationStart(true) {
		node.AddChild(p.parseDeclaration(true))
	} else {
		node.AddChild(p.errorNode("expected member declaration", p.atStatementEnd))
	}
	return node
}

func (p *Parser) parseEnumClassBody() *Node {
	node := p.startNode(KindEnumClassBody)
	defer p.nest(TokenLBrace)()
	p.token(node)

	for p.atEnumEntry() {
		node.AddField(FieldEntry, p.parseEnumEntry())
		if !p.accept(node, TokenComma) {
			break
		}
	}
	p.placeholder(node, FieldEntry)

	p.parseSequence(node, TokenRBrace, FieldMember, p.parseClassMember)
	p.placeholder(node, FieldMember)
	p.expect(node, TokenRBrace)
	return node
}

func (p *Parser) atEnumEntry() bool {
	m := p.mark()
	defer p.reset(m)
	p.parseModifiers()
	return p.check(TokenIdent) && !p.isDeclarationStart(true)
}

func (p *Parser) parseEnumEntry() *Node {
	node := p.startNode(KindEnumEntry)
	node.AddChild(p.parseModifiers())
	node.AddField(FieldIdentifier, p.parseSimpleIdentifier())
	if p.check(TokenLParen) {
		node.AddChild(p.parseValueArguments())
	}
	if p.check(TokenLBrace) {
		node.AddField(FieldBody, p.parseClassBody())
	}
	return node
}

func (p *Parser) parseObjectDeclaration(mods *Node, kind NodeKind) *Node {
	node := p.startNode(kind)
	node.AddChild(mods)
	if kind == KindCompanionObject {
		p.token(node)
	}
	p.expect(node, TokenObject)
	if p.check(TokenIdent) {
		node.AddField(FieldIdentifier, p.leaf(KindTypeIdentifier))
	} else if kind == KindObjectDeclaration {
		node.AddChild(p.missing(TokenIdent))
	}
	if p.check(TokenColon) {
		p.token(node)
		p.parseDelegationSpecifiers(node)
	}
	if p.check(TokenLBrace) {
		node.AddField(FieldBody, p.parseClassBody())
	}
	return node
}

func (p *Parser) parseFunctionDeclaration(mods *Node) *Node {
	node := p.startNode(KindFunctionDeclaration)
	node.AddChild(mods)
	p.token(node) // fun

	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}
	p.parseReceiver(node)
	node.AddField(FieldIdentifier, p.parseSimpleIdentifier())

	if p.check(TokenLParen) {
		node.AddField(FieldParameters, p.parseFunctionValueParameters())
	} else {
		node.AddChild(p.missing(TokenLParen))
	}
	if p.check(TokenColon) {
		p.token(node)
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

// parseReceiver parses the "Type." prefix of an extension. A dotted
// user type directly before the name is split so that its last segment
// becomes the name.
func (p *Parser) parseReceiver(node *Node) {
	if !p.check(TokenIdent) && !p.check(TokenLParen) {
		return
	}
	m := p.mark()
	recv := p.parseType()
	if !p.failedSince(m) && p.check(TokenDot) {
		node.AddChild(recv)
		p.token(node)
		return
	}
	segments := len(recv.ChildrenOfKind(KindTypeIdentifier))
	p.reset(m)
	if recv.Kind == KindUserType && segments > 1 {
		node.AddChild(p.parseUserType(segments - 1))
		p.token(node)
	}
}

func (p *Parser) parseFunctionValueParameters() *Node {
	node := p.startNode(KindFunctionValueParameters)
	defer p.nest(TokenLParen)()
	p.token(node)
	p.parseList(node, TokenRParen, FieldParameter, func() *Node { return p.parseParameter(true) })
	p.placeholder(node, FieldParameter)
	p.expect(node, TokenRParen)
	return node
}

func (p *Parser) parseParameter(typeRequired bool) *Node {
	node := p.startNode(KindParameter)
	node.AddChild(p.parseModifiers())
	node.AddField(FieldIdentifier, p.parseSimpleIdentifier())
	if p.accept(node, TokenColon) {
		node.AddField(FieldType, p.parseType())
	} else if typeRequired {
		node.AddChild(p.missing(TokenColon))
	}
	if p.accept(node, TokenAssign) {
		node.AddField(FieldValue, p.parseExpression())
	}
	return node
}

func (p *Parser) parseFunctionBody() *Node {
	node := p.startNode(KindFunctionBody)
	if p.check(TokenLBrace) {
		node.AddChild(p.parseBlock())
		return node
	}
	p.token(node) // =
	node.AddChild(p.parseExpression())
	return node
}

func (p *Parser) parsePropertyDeclaration(mods *Node) *Node {
	node := p.startNode(KindPropertyDeclaration)
	node.AddChild(mods)
	p.token(node) // val or var

	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}
	if p.check(TokenLParen) {
		node.AddChild(p.parseMultiVariableDeclaration())
	} else {
		p.parseReceiver(node)
		node.AddChild(p.parseVariableDeclaration())
	}
	if p.checkWord("where") {
		node.AddChild(p.parseTypeConstraints())
	}

	switch {
	case p.check(TokenAssign):
		p.token(node)
		node.AddField(FieldValue, p.parseExpression())
	case p.checkWord("by"):
		del := p.startNode(KindPropertyDelegate)
		p.token(del)
		del.AddChild(p.parseExpression())
		node.AddChild(del)
	}

	p.parseAccessors(node)
	return node
}

func (p *Parser) parseVariableDeclaration() *Node {
	node := p.startNode(KindVariableDeclaration)
	node.AddChild(p.parseModifiers())
	node.AddField(FieldIdentifier, p.parseSimpleIdentifier())
	if p.accept(node, TokenColon) {
		node.AddField(FieldTypeOptional, p.parseType())
	}
	p.placeholder(node, FieldTypeOptional)
	return node
}

func (p *Parser) parseMultiVariableDeclaration() *Node {
	node := p.startNode(KindMultiVariableDeclaration)
	defer p.nest(TokenLParen)()
	p.token(node)
	p.parseList(node, TokenRParen, "", p.parseVariableDeclaration)
	p.expect(node, TokenRParen)
	return node
}

// parseAccessors attaches a getter or setter following a property. A
// second accessor is kept under an ERROR node.
func (p *Parser) parseAccessors(node *Node) {
	for count := 0; ; count++ {
		acc, _ := p.resolve(conflictSoftKeyword, map[string]attempt{
			"modifier_or_accessor": func() (*Node, bool) {
				carrier := p.startNode(KindSemis)
				p.semis(carrier)
				if !p.atAccessor() {
					return nil, false
				}
				a := p.parseAccessor()
				if count > 0 {
					a = p.wrapError(a, "combined getter and setter declarations are not supported")
				}
				carrier.AddChild(a)
				return carrier, true
			},
			"simple_identifier": func() (*Node, bool) {
				return nil, true
			},
		})
		if acc == nil {
			return
		}
		node.AddChild(acc)
	}
}

func (p *Parser) atAccessor() bool {
	m := p.mark()
	defer p.reset(m)
	p.parseModifiers()
	if !p.checkWord("get") && !p.checkWord("set") {
		return false
	}
	p.advance()
	return p.match(TokenLParen, TokenSemicolon, TokenRBrace, TokenEOF) || p.terminatorAhead()
}

func (p *Parser) parseAccessor() *Node {
	mods := p.parseModifiers()
	kind := KindGetter
	if p.checkWord("set") {
		kind = KindSetter
	}
	node := p.startNode(kind)
	node.AddChild(mods)
	p.token(node)
	if !p.check(TokenLParen) {
		return node
	}
	p.parseAccessorParameters(node, kind)
	if p.accept(node, TokenColon) {
		node.AddField(FieldReturnType, p.parseType())
	}
	if p.check(TokenLBrace) || p.check(TokenAssign) {
		node.AddField(FieldBody, p.parseFunctionBody())
	}
	return node
}

func (p *Parser) parseAccessorParameters(node *Node, kind NodeKind) {
	defer p.nest(TokenLParen)()
	p.token(node)
	if kind == KindSetter && !p.check(TokenRParen) {
		node.AddChild(p.parseParameter(false))
		p.accept(node, TokenComma)
	}
	p.expect(node, TokenRParen)
}

func (p *Parser) parseTypeAlias(mods *Node) *Node {
	node := p.startNode(KindTypeAlias)
	node.AddChild(mods)
	p.token(node)
	node.AddField(FieldIdentifier, p.parseTypeIdentifier())
	if p.check(TokenLT) {
		node.AddChild(p.parseTypeParameters())
	}
	p.expect(node, TokenAssign)
	node.AddField(FieldType, p.parseType())
	return node
}

func (p *Parser) parseAnonymousInitializer(mods *Node) *Node {
	node := p.startNode(KindAnonymousInitializer)
	node.AddChild(mods)
	p.token(node) // init
	node.AddField(FieldBody, p.parseBlock())
	return node
}

func (p *Parser) parseSecondaryConstructor(mods *Node) *Node {
	node := p.startNode(KindSecondaryConstructor)
	node.AddChild(mods)
	p.token(node) // constructor
	node.AddField(FieldParameters, p.parseFunctionValueParameters())

	if p.accept(node, TokenColon) {
		call := p.startNode(KindConstructorDelegationCall)
		if p.match(TokenThis, TokenSuper) {
			p.token(call)
		} else {
			call.AddChild(p.missing(TokenThis, TokenSuper))
		}
		if p.check(TokenLParen) {
			call.AddChild(p.parseValueArguments())
		} else {
			call.AddChild(p.missing(TokenLParen))
		}
		node.AddChild(call)
	}
	if p.check(TokenLBrace) {
		node.AddField(FieldBody, p.parseBlock())
	}
	return node
}

func (p *Parser) parseTypeParameters() *Node {
	node := p.startNode(KindTypeParameters)
	p.token(node) // <
	p.parseList(node, TokenGT, "", p.parseTypeParameter)
	p.expect(node, TokenGT)
	return node
}

func (p *Parser) parseTypeParameter() *Node {
	node := p.startNode(KindTypeParameter)
	node.AddChild(p.parseTypeParameterModifiers())
	node.AddField(FieldIdentifier, p.parseTypeIdentifier())
	if p.accept(node, TokenColon) {
		node.AddField(FieldType, p.parseType())
	}
	return node
}

func (p *Parser) parseTypeParameterModifiers() *Node {
	var node *Node
	for {
		var mod *Node
		next := p.peekN(1).Kind
		switch {
		case p.check(TokenAt):
			mod = p.parseAnnotation()
		case p.check(TokenIn) && next == TokenIdent, p.checkWord("out") && next == TokenIdent:
			mod = p.startNode(KindVarianceModifier)
			p.token(mod)
		case p.checkWord("reified") && next == TokenIdent:
			mod = p.startNode(KindReificationModifier)
			p.token(mod)
		default:
			return node
		}
		if node == nil {
			node = p.startNode(KindModifiers)
		}
		node.AddChild(mod)
	}
}

func (p *Parser) parseTypeConstraints() *Node {
	node := p.startNode(KindTypeConstraints)
	p.token(node) // where
	for {
		c := p.startNode(KindTypeConstraint)
		for p.check(TokenAt) {
			c.AddChild(p.parseAnnotation())
		}
		c.AddField(FieldIdentifier, p.parseTypeIdentifier())
		p.expect(c, TokenColon)
		c.AddField(FieldType, p.parseType())
		node.AddChild(c)
		if !p.accept(node, TokenComma) {
			return node
		}
	}
}
