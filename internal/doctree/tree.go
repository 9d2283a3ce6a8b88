package doctree

import (
	"fmt"

	"github.com/google/uuid"
)

// Position locates a node within the document-order linear view. Parent is
// nil for root-level nodes; Index is the node's position in its sibling list.
type Position struct {
	Node   *Node
	Parent *Node
	Index  int
}

// Linear flattens the tree into depth-first document order. Every node,
// section or topic, appears exactly once.
func (t *Tree) Linear() []Position {
	var out []Position
	var visit func(parent *Node, children []*Node)
	visit = func(parent *Node, children []*Node) {
		for i, c := range children {
			out = append(out, Position{Node: c, Parent: parent, Index: i})
			visit(c, c.Children)
		}
	}
	visit(nil, t.Roots)
	return out
}

// Walk visits nodes in document order until fn returns false.
func (t *Tree) Walk(fn func(n, parent *Node) bool) {
	var visit func(parent *Node, children []*Node) bool
	visit = func(parent *Node, children []*Node) bool {
		for _, c := range children {
			if !fn(c, parent) {
				return false
			}
			if !visit(c, c.Children) {
				return false
			}
		}
		return true
	}
	visit(nil, t.Roots)
}

// Parent returns the node's parent, or nil when the node sits at root level
// or is not in the tree.
func (t *Tree) Parent(n *Node) *Node {
	var found *Node
	t.Walk(func(c, parent *Node) bool {
		if c == n {
			found = parent
			return false
		}
		return true
	})
	return found
}

// Contains reports whether the node is anywhere in the tree.
func (t *Tree) Contains(n *Node) bool {
	ok := false
	t.Walk(func(c, _ *Node) bool {
		if c == n {
			ok = true
			return false
		}
		return true
	})
	return ok
}

// Siblings returns the child slice the node lives in: its parent's children,
// or the root list.
func (t *Tree) Siblings(n *Node) []*Node {
	if p := t.Parent(n); p != nil {
		return p.Children
	}
	return t.Roots
}

// IndexOf returns n's position within the sibling slice, or -1.
func IndexOf(siblings []*Node, n *Node) int {
	for i, c := range siblings {
		if c == n {
			return i
		}
	}
	return -1
}

// FindRef returns the first topic node carrying the given reference key.
func (t *Tree) FindRef(ref string) *Node {
	var found *Node
	t.Walk(func(n, _ *Node) bool {
		if n.IsTopic() && n.Ref == ref {
			found = n
			return false
		}
		return true
	})
	return found
}

// IsAncestor reports whether ancestor lies on the path from a root to n,
// excluding n itself.
func (t *Tree) IsAncestor(ancestor, n *Node) bool {
	if ancestor == nil || ancestor == n {
		return false
	}
	var walk func(cur *Node) bool
	walk = func(cur *Node) bool {
		for _, c := range cur.Children {
			if c == n || walk(c) {
				return true
			}
		}
		return false
	}
	return walk(ancestor)
}

// AncestorChain returns the nodes from root level down to n's direct parent.
func (t *Tree) AncestorChain(n *Node) []*Node {
	var chain []*Node
	var walk func(parent *Node, children []*Node, trail []*Node) bool
	walk = func(parent *Node, children []*Node, trail []*Node) bool {
		for _, c := range children {
			if c == n {
				chain = append(chain, trail...)
				return true
			}
			if walk(c, c.Children, append(trail, c)) {
				return true
			}
		}
		return false
	}
	walk(nil, t.Roots, nil)
	return chain
}

// StructuralDepth counts ancestors plus one: a root-level node has depth 1.
// Used when a node's stored level cannot be trusted.
func (t *Tree) StructuralDepth(n *Node) int {
	return len(t.AncestorChain(n)) + 1
}

// Remove detaches n from its parent's child list (or the root list) and
// reports whether it was found.
func (t *Tree) Remove(n *Node) bool {
	if i := IndexOf(t.Roots, n); i >= 0 {
		t.Roots = append(t.Roots[:i], t.Roots[i+1:]...)
		return true
	}
	removed := false
	t.Walk(func(c, _ *Node) bool {
		if i := IndexOf(c.Children, n); i >= 0 {
			c.Children = append(c.Children[:i], c.Children[i+1:]...)
			removed = true
			return false
		}
		return true
	})
	return removed
}

// InsertChild places n under parent at index i, clamping i to the valid
// range. A nil parent inserts at root level.
func (t *Tree) InsertChild(parent *Node, i int, n *Node) {
	if parent == nil {
		t.Roots = insertAt(t.Roots, i, n)
		return
	}
	parent.Children = insertAt(parent.Children, i, n)
}

func insertAt(s []*Node, i int, n *Node) []*Node {
	if i < 0 {
		i = 0
	}
	if i > len(s) {
		i = len(s)
	}
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = n
	return s
}

// ReferencedRefs collects every reference key mentioned by a topic node
// anywhere in the tree.
func (t *Tree) ReferencedRefs() map[string]bool {
	refs := make(map[string]bool)
	t.Walk(func(n, _ *Node) bool {
		if n.IsTopic() && n.Ref != "" {
			refs[n.Ref] = true
		}
		return true
	})
	return refs
}

// PurgeUnreferenced drops topics no longer referenced by any node and
// returns the removed keys. The purge is explicit: callers invoke it after a
// structural change, never implicitly.
func (t *Tree) PurgeUnreferenced() []string {
	refs := t.ReferencedRefs()
	var removed []string
	for key := range t.Topics {
		if !refs[key] {
			delete(t.Topics, key)
			removed = append(removed, key)
		}
	}
	return removed
}

// NewRef mints a reference key that does not collide with the topic map.
func (t *Tree) NewRef() string {
	for {
		ref := fmt.Sprintf("topics/%s.xml", uuid.NewString())
		if _, taken := t.Topics[ref]; !taken {
			return ref
		}
	}
}
