package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{KindError, "ERROR"},
		{KindToken, "token"},
		{KindBlank, "blank"},
		{KindSourceFile, "source_file"},
		{KindClassDeclaration, "class_declaration"},
		{KindCallExpression, "call_expression"},
		{KindLineStringLiteral, "line_string_literal"},
		{KindInterpolatedIdentifier, "interpolated_identifier"},
		{KindSimpleUserType, "_simple_user_type"},
		{NodeKind(9999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("NodeKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestNodeKindNames(t *testing.T) {
	for _, kind := range Kinds() {
		got, ok := LookupNodeKind(kind.String())
		if !ok || got != kind {
			t.Errorf("LookupNodeKind(%q) = %v, %v", kind, got, ok)
		}
	}
	assert.True(t, KindStatement.IsHidden())
	assert.False(t, KindStatement.IsNamed())
	assert.False(t, KindToken.IsNamed())
	assert.True(t, KindError.IsNamed())
}

func TestNodeAddChild(t *testing.T) {
	parent := &Node{Kind: KindBlock}
	child1 := &Node{Kind: KindCallExpression}
	child2 := &Node{Kind: KindAssignment}

	parent.AddChild(child1)
	parent.AddChild(child2)
	parent.AddChild(nil)

	require.Len(t, parent.Children, 2)
	assert.Same(t, child1, parent.Children[0])
	assert.Same(t, child2, parent.Children[1])
}

func TestNodeAddChildSplicesHidden(t *testing.T) {
	a := &Node{Kind: KindIntegerLiteral}
	b := &Node{Kind: KindIntegerLiteral, Field: FieldValue}
	hidden := &Node{Kind: KindStatement, Children: []*Node{a, b}}

	parent := &Node{Kind: KindBlock}
	parent.AddField(FieldStatements, hidden)

	require.Len(t, parent.Children, 2)
	assert.Equal(t, FieldStatements, parent.Children[0].Field, "unfielded child inherits the field")
	assert.Equal(t, FieldValue, parent.Children[1].Field, "own field is kept")
}

func TestNodeAddChildAliases(t *testing.T) {
	seg := &Node{Kind: KindSimpleUserType}
	seg.AddChild(&Node{Kind: KindSimpleIdentifier, Token: &Token{Literal: "String"}})

	typ := &Node{Kind: KindUserType}
	typ.AddChild(seg)

	require.Len(t, typ.Children, 1)
	assert.Equal(t, KindTypeIdentifier, typ.Children[0].Kind)

	other := &Node{Kind: KindNavigationSuffix}
	other.AddChild(&Node{Kind: KindSimpleIdentifier})
	assert.Equal(t, KindSimpleIdentifier, other.Children[0].Kind, "no alias outside its context")
}

func TestNodeAddChildSpans(t *testing.T) {
	pos := func(offset int) Position { return Position{Offset: offset, Line: 1, Column: offset + 1} }
	parent := &Node{Kind: KindAdditiveExpression, Span: Span{Start: pos(9), End: pos(9)}}
	parent.AddChild(&Node{Kind: KindIntegerLiteral, Span: Span{Start: pos(0), End: pos(1)}})
	parent.AddChild(&Node{Kind: KindToken, Span: Span{Start: pos(2), End: pos(3)}})
	parent.AddChild(&Node{Kind: KindIntegerLiteral, Span: Span{Start: pos(4), End: pos(5)}})

	assert.Equal(t, 0, parent.Span.Start.Offset)
	assert.Equal(t, 5, parent.Span.End.Offset)
	assert.Equal(t, 5, parent.Span.Len())
	assert.True(t, parent.Span.Contains(4))
	assert.False(t, parent.Span.Contains(5))
}

func TestNodeIsError(t *testing.T) {
	errorNode := &Node{Kind: KindError}
	normalNode := &Node{Kind: KindClassDeclaration}

	if !errorNode.IsError() {
		t.Error("Expected IsError() to be true for error node")
	}
	if normalNode.IsError() {
		t.Error("Expected IsError() to be false for non-error node")
	}

	parent := &Node{Kind: KindBlock}
	parent.AddChild(&Node{Kind: KindCharacterLiteral, Children: []*Node{{Kind: KindUnterminated}}})
	if !parent.HasErrors() {
		t.Error("Expected HasErrors() to report an unterminated literal")
	}
}

func TestNodeChildrenByField(t *testing.T) {
	left := &Node{Kind: KindSimpleIdentifier, Field: FieldLeft}
	op := &Node{Kind: KindToken, Field: FieldOperator}
	right := &Node{Kind: KindSimpleIdentifier, Field: FieldRight}
	parent := &Node{Kind: KindAdditiveExpression, Children: []*Node{left, op, right}}

	t.Run("by field", func(t *testing.T) {
		assert.Same(t, right, parent.ChildByField(FieldRight))
		assert.Nil(t, parent.ChildByField(FieldBody))
		assert.Len(t, parent.ChildrenByField(FieldLeft), 1)
	})

	t.Run("by kind", func(t *testing.T) {
		assert.Same(t, left, parent.FirstChildOfKind(KindSimpleIdentifier))
		assert.Len(t, parent.ChildrenOfKind(KindSimpleIdentifier), 2)
		assert.Nil(t, parent.FirstChildOfKind(KindIfExpression))
	})

	t.Run("named", func(t *testing.T) {
		assert.Equal(t, []*Node{left, right}, parent.NamedChildren())
	})
}

func TestNodeText(t *testing.T) {
	leaf := func(kind NodeKind, leading, literal string) *Node {
		return &Node{Kind: kind, Token: &Token{Leading: leading, Literal: literal}}
	}
	expr := &Node{Kind: KindAdditiveExpression}
	expr.AddChild(leaf(KindIntegerLiteral, "", "1"))
	expr.AddChild(leaf(KindToken, " ", "+"))
	expr.AddChild(leaf(KindIntegerLiteral, "  ", "2"))

	assert.Equal(t, "1 +  2", expr.Text())
	assert.Len(t, expr.Leaves(), 3)

	var kinds []NodeKind
	expr.Walk(func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != KindAdditiveExpression
	})
	assert.Equal(t, []NodeKind{KindAdditiveExpression}, kinds, "returning false skips children")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{FieldImports, FieldStatements}, Placeholders(KindSourceFile))
	assert.Empty(t, Placeholders(KindIntegerLiteral))

	incomplete := &Node{Kind: KindBlock}
	assert.Len(t, MissingPlaceholders(incomplete), 1)

	incomplete.AddChild(&Node{Kind: KindBlank, Field: FieldStatements})
	assert.Empty(t, MissingPlaceholders(incomplete))
}

func TestAliases(t *testing.T) {
	aliases := Aliases()
	require.Len(t, aliases, 2)
	assert.Contains(t, aliases, [3]NodeKind{KindSimpleUserType, KindSimpleIdentifier, KindTypeIdentifier})
	assert.Contains(t, aliases, [3]NodeKind{KindInterpolation, KindSimpleIdentifier, KindInterpolatedIdentifier})
}
