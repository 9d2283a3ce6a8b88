package editor

import (
	"fmt"
	"sort"

	"docforge/internal/doctree"
)

// MoveUp moves the node one position up in the document-order view of the
// tree. Adjacent to a sibling topic it swaps; adjacent to a sibling section
// it enters that section as its last child; as first child of a section it
// exits, landing immediately above that section.
func (s *Service) MoveUp(n *doctree.Node) (res Result) {
	defer guard(&res, s.log, "move up")

	lin := s.tree.Linear()
	i := linearIndex(lin, n)
	if i < 0 {
		return failure("node not found in tree")
	}
	if i == 0 {
		return failure("already at the top")
	}

	cand := lin[i-1]
	parent := lin[i].Parent

	switch {
	case cand.Node == parent:
		// First child exiting its section upward: land immediately before
		// the parent at the grandparent level.
		grand := s.tree.Parent(parent)
		s.tree.Remove(n)
		gi := doctree.IndexOf(s.childrenOf(grand), parent)
		s.tree.InsertChild(grand, gi, n)
		s.applyLevel(n, grand)

	case cand.Parent == parent && cand.Node.IsSection():
		// Empty sibling section approached from below: enter as last child.
		s.tree.Remove(n)
		cand.Node.Children = append(cand.Node.Children, n)
		s.applyLevel(n, cand.Node)

	case cand.Parent == parent:
		// Ordinary sibling swap.
		s.tree.Remove(n)
		sibs := s.childrenOf(parent)
		s.tree.InsertChild(parent, doctree.IndexOf(sibs, cand.Node), n)

	default:
		// Crossing into the preceding section: reparent next to the last
		// entry of that section's subtree.
		s.tree.Remove(n)
		ci := doctree.IndexOf(s.childrenOf(cand.Parent), cand.Node)
		s.tree.InsertChild(cand.Parent, ci+1, n)
		s.applyLevel(n, cand.Parent)
	}

	s.log.Debugw("moved node up", "title", n.Title, "ref", n.Ref)
	return success("moved up")
}

// MoveDown moves the node one position down in the document-order view. The
// candidate target is the first node after the node's entire subtree:
// a sibling topic swaps, a sibling section is entered as its first child,
// and a candidate across a section boundary makes the node exit, landing
// after its nearest ancestor that sits in the candidate's sibling list.
func (s *Service) MoveDown(n *doctree.Node) (res Result) {
	defer guard(&res, s.log, "move down")

	lin := s.tree.Linear()
	i := linearIndex(lin, n)
	if i < 0 {
		return failure("node not found in tree")
	}
	j := i + subtreeSize(n)
	if j >= len(lin) {
		return failure("already at the bottom")
	}

	cand := lin[j]
	parent := lin[i].Parent

	switch {
	case cand.Parent == parent && cand.Node.IsSection():
		// Enter the next sibling section as its first child.
		s.tree.Remove(n)
		s.tree.InsertChild(cand.Node, 0, n)
		s.applyLevel(n, cand.Node)

	case cand.Parent == parent:
		s.tree.Remove(n)
		sibs := s.childrenOf(parent)
		s.tree.InsertChild(parent, doctree.IndexOf(sibs, cand.Node)+1, n)

	default:
		// Exit: the nearest ancestor that is a direct child of the
		// candidate's parent marks where the node re-enters.
		anchor := s.exitAnchor(n, cand.Parent)
		if anchor == nil {
			return failure("no viable position below")
		}
		s.tree.Remove(n)
		ai := doctree.IndexOf(s.childrenOf(cand.Parent), anchor)
		s.tree.InsertChild(cand.Parent, ai+1, n)
		s.applyLevel(n, cand.Parent)
	}

	s.log.Debugw("moved node down", "title", n.Title, "ref", n.Ref)
	return success("moved down")
}

// MoveGroupUp moves a contiguous run of siblings up, preserving their
// relative order. Movement stops at the first member that hits a boundary;
// moving none at all is a failure.
func (s *Service) MoveGroupUp(nodes []*doctree.Node) (res Result) {
	defer guard(&res, s.log, "move group up")
	return s.moveGroup(nodes, true)
}

// MoveGroupDown is the downward counterpart of MoveGroupUp.
func (s *Service) MoveGroupDown(nodes []*doctree.Node) (res Result) {
	defer guard(&res, s.log, "move group down")
	return s.moveGroup(nodes, false)
}

func (s *Service) moveGroup(nodes []*doctree.Node, up bool) Result {
	if len(nodes) == 0 {
		return failure("nothing selected")
	}

	parent := s.tree.Parent(nodes[0])
	sibs := s.childrenOf(parent)
	indices := make([]int, 0, len(nodes))
	for _, n := range nodes {
		if s.tree.Parent(n) != parent {
			return failure("selection spans multiple parents")
		}
		i := doctree.IndexOf(sibs, n)
		if i < 0 {
			return failure("node not found in tree")
		}
		indices = append(indices, i)
	}

	order := make([]*doctree.Node, len(nodes))
	copy(order, nodes)
	sort.Slice(order, func(a, b int) bool {
		return doctree.IndexOf(sibs, order[a]) < doctree.IndexOf(sibs, order[b])
	})
	sort.Ints(indices)
	for k := 1; k < len(indices); k++ {
		if indices[k] != indices[k-1]+1 {
			return failure("selection is not contiguous")
		}
	}

	// Ascending keeps relative order on the way up, descending on the way
	// down.
	if !up {
		for l, r := 0, len(order)-1; l < r; l, r = l+1, r-1 {
			order[l], order[r] = order[r], order[l]
		}
	}

	moved := 0
	for _, n := range order {
		var r Result
		if up {
			r = s.MoveUp(n)
		} else {
			r = s.MoveDown(n)
		}
		if !r.Success {
			break
		}
		moved++
	}

	if moved == 0 {
		return failure("group is already at the boundary")
	}
	r := success(fmt.Sprintf("moved %d of %d nodes", moved, len(order)))
	return r.with("moved", moved).with("selected", len(order))
}

func (s *Service) childrenOf(parent *doctree.Node) []*doctree.Node {
	if parent == nil {
		return s.tree.Roots
	}
	return parent.Children
}

// exitAnchor walks n's ancestor chain for the nearest ancestor whose parent
// is destParent. n itself qualifies when it already sits under destParent.
func (s *Service) exitAnchor(n *doctree.Node, destParent *doctree.Node) *doctree.Node {
	chain := append(s.tree.AncestorChain(n), n)
	for k := len(chain) - 1; k >= 0; k-- {
		var p *doctree.Node
		if k > 0 {
			p = chain[k-1]
		}
		if p == destParent {
			return chain[k]
		}
	}
	return nil
}

func linearIndex(lin []doctree.Position, n *doctree.Node) int {
	for i, p := range lin {
		if p.Node == n {
			return i
		}
	}
	return -1
}

func subtreeSize(n *doctree.Node) int {
	size := 1
	for _, c := range n.Children {
		size += subtreeSize(c)
	}
	return size
}
