package parser

import "github.com/tidwall/btree"

// Index answers position queries over a finished tree. Leaves are keyed
// by their end offset; zero-width leaves are not indexed.
//
// A zero Index is empty. Build one with NewIndex.
type Index struct {
	leaves  btree.Map[int, *Node]
	parents map[*Node]*Node
}

func NewIndex(root *Node) *Index {
	idx := &Index{parents: make(map[*Node]*Node)}
	if root == nil {
		return idx
	}
	root.Walk(func(n *Node) bool {
		for _, c := range n.Children {
			idx.parents[c] = n
		}
		if n.Token != nil && n.Span.Len() > 0 {
			idx.leaves.Set(n.Span.End.Offset, n)
		}
		return true
	})
	return idx
}

// LeafAt returns the leaf whose token covers offset, or nil when offset
// falls into whitespace, a comment gap, or outside the input.
func (idx *Index) LeafAt(offset int) *Node {
	iter := idx.leaves.Iter()
	if !iter.Seek(offset + 1) {
		return nil
	}
	leaf := iter.Value()
	if !leaf.Span.Contains(offset) {
		return nil
	}
	return leaf
}

// Parent returns the node n is attached to, or nil for the root.
func (idx *Index) Parent(n *Node) *Node {
	return idx.parents[n]
}

// NodeAt returns the innermost named node containing offset.
func (idx *Index) NodeAt(offset int) *Node {
	for n := idx.LeafAt(offset); n != nil; n = idx.parents[n] {
		if n.IsNamed() {
			return n
		}
	}
	return nil
}

// Path returns the nodes from the root down to the leaf at offset.
func (idx *Index) Path(offset int) []*Node {
	var path []*Node
	for n := idx.LeafAt(offset); n != nil; n = idx.parents[n] {
		path = append(path, n)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Len returns the number of indexed leaves.
func (idx *Index) Len() int {
	return idx.leaves.Len()
}
