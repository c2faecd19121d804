package codebase

import (
	"github.com/dhamidi/ktcst/kotlin/parser"
)

type SymbolKind int

const (
	SymbolClass SymbolKind = iota
	SymbolInterface
	SymbolEnum
	SymbolEnumEntry
	SymbolObject
	SymbolFunction
	SymbolConstructor
	SymbolProperty
	SymbolTypeAlias
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolInterface:
		return "interface"
	case SymbolEnum:
		return "enum"
	case SymbolEnumEntry:
		return "enum entry"
	case SymbolObject:
		return "object"
	case SymbolFunction:
		return "function"
	case SymbolConstructor:
		return "constructor"
	case SymbolProperty:
		return "property"
	case SymbolTypeAlias:
		return "typealias"
	}
	return "class"
}

// Symbol is a named declaration. Span covers the whole declaration and
// NameSpan its identifier.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Path     string
	Span     parser.Span
	NameSpan parser.Span
	Children []Symbol
}

// DocumentSymbols lists the declarations of a file: top-level ones and,
// nested under them, the members of classes and objects. Local
// declarations inside function bodies are not included.
func DocumentSymbols(root *parser.Node) []Symbol {
	if root == nil {
		return nil
	}
	return declarations(root.ChildrenByField(parser.FieldStatements))
}

func declarations(nodes []*parser.Node) []Symbol {
	var symbols []Symbol
	for _, n := range nodes {
		symbols = append(symbols, declaration(n)...)
	}
	return symbols
}

func declaration(n *parser.Node) []Symbol {
	switch n.Kind {
	case parser.KindClassDeclaration:
		kind := SymbolClass
		switch {
		case hasToken(n, parser.TokenInterface):
			kind = SymbolInterface
		case hasModifier(n, "enum"):
			kind = SymbolEnum
		}
		return named(n, n.ChildByField(parser.FieldIdentifier), kind, members(n))
	case parser.KindObjectDeclaration:
		return named(n, n.ChildByField(parser.FieldIdentifier), SymbolObject, members(n))
	case parser.KindCompanionObject:
		sym := Symbol{Name: "Companion", Kind: SymbolObject, Span: n.Span, NameSpan: n.Span, Children: members(n)}
		if id := n.ChildByField(parser.FieldIdentifier); id != nil && !id.IsError() {
			sym.Name = id.TokenLiteral()
			sym.NameSpan = id.Span
		}
		return []Symbol{sym}
	case parser.KindFunctionDeclaration:
		return named(n, n.ChildByField(parser.FieldIdentifier), SymbolFunction, nil)
	case parser.KindSecondaryConstructor:
		return []Symbol{{Name: "constructor", Kind: SymbolConstructor, Span: n.Span, NameSpan: n.Span}}
	case parser.KindTypeAlias:
		return named(n, n.ChildByField(parser.FieldIdentifier), SymbolTypeAlias, nil)
	case parser.KindEnumEntry:
		return named(n, n.ChildByField(parser.FieldIdentifier), SymbolEnumEntry, nil)
	case parser.KindPropertyDeclaration:
		var symbols []Symbol
		if v := n.FirstChildOfKind(parser.KindVariableDeclaration); v != nil {
			symbols = append(symbols, named(n, v.ChildByField(parser.FieldIdentifier), SymbolProperty, nil)...)
		}
		if multi := n.FirstChildOfKind(parser.KindMultiVariableDeclaration); multi != nil {
			for _, v := range multi.ChildrenOfKind(parser.KindVariableDeclaration) {
				symbols = append(symbols, named(v, v.ChildByField(parser.FieldIdentifier), SymbolProperty, nil)...)
			}
		}
		return symbols
	}
	return nil
}

// named builds a symbol unless the name is missing from the source.
func named(decl, name *parser.Node, kind SymbolKind, children []Symbol) []Symbol {
	if name == nil || name.IsError() || name.Token == nil {
		return nil
	}
	return []Symbol{{
		Name:     name.TokenLiteral(),
		Kind:     kind,
		Span:     decl.Span,
		NameSpan: name.Span,
		Children: children,
	}}
}

func members(n *parser.Node) []Symbol {
	body := n.ChildByField(parser.FieldBody)
	if body == nil {
		return nil
	}
	var nodes []*parser.Node
	for _, c := range body.Children {
		if c.Field == parser.FieldMember || c.Field == parser.FieldEntry {
			nodes = append(nodes, c)
		}
	}
	return declarations(nodes)
}

func hasToken(n *parser.Node, kind parser.TokenKind) bool {
	for _, c := range n.Children {
		if c.Kind == parser.KindToken && c.Token != nil && c.Token.Kind == kind {
			return true
		}
	}
	return false
}

func hasModifier(n *parser.Node, word string) bool {
	mods := n.FirstChildOfKind(parser.KindModifiers)
	if mods == nil {
		return false
	}
	for _, m := range mods.Children {
		if m.Kind == parser.KindAnnotation {
			continue
		}
		for _, c := range m.Children {
			if c.Kind == parser.KindToken && c.TokenLiteral() == word {
				return true
			}
		}
	}
	return false
}

// walkSymbols visits symbols depth first.
func walkSymbols(symbols []Symbol, fn func(Symbol)) {
	for _, s := range symbols {
		fn(s)
		walkSymbols(s.Children, fn)
	}
}
