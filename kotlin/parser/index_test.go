package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	src := "val x = 1\n"
	tree, err := Parse([]byte(src))
	require.NoError(t, err)
	idx := NewIndex(tree)

	assert.Equal(t, 4, idx.Len(), "val, x, = and 1; zero-width leaves are skipped")

	tests := []struct {
		offset int
		want   string
	}{
		{0, "val"},
		{2, "val"},
		{3, ""},
		{4, "x"},
		{6, "="},
		{8, "1"},
		{9, ""},
		{100, ""},
	}
	for _, tt := range tests {
		leaf := idx.LeafAt(tt.offset)
		if tt.want == "" {
			assert.Nil(t, leaf, "offset %d", tt.offset)
			continue
		}
		if assert.NotNil(t, leaf, "offset %d", tt.offset) {
			assert.Equal(t, tt.want, leaf.TokenLiteral(), "offset %d", tt.offset)
		}
	}
}

func TestIndexNodeAt(t *testing.T) {
	tree, err := Parse([]byte("val x = 1\n"))
	require.NoError(t, err)
	idx := NewIndex(tree)

	assert.Equal(t, KindSimpleIdentifier, idx.NodeAt(4).Kind)
	assert.Equal(t, KindPropertyDeclaration, idx.NodeAt(0).Kind, "keywords resolve to their declaration")
	assert.Nil(t, idx.NodeAt(3))

	var kinds []NodeKind
	for _, n := range idx.Path(8) {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []NodeKind{KindSourceFile, KindPropertyDeclaration, KindIntegerLiteral}, kinds)

	leaf := idx.LeafAt(4)
	assert.Equal(t, KindVariableDeclaration, idx.Parent(leaf).Kind)
	assert.Nil(t, idx.Parent(tree))
}

func TestIndexEmpty(t *testing.T) {
	idx := NewIndex(nil)
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.LeafAt(0))
	assert.Nil(t, idx.NodeAt(0))
	assert.Empty(t, idx.Path(0))
}
