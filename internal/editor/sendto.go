package editor

import (
	"fmt"

	"docforge/internal/doctree"
)

// SendTo relocates the selected nodes to the end of dest's children (nil
// dest means root level), preserving their document order. Selected nodes
// already contained in another selected node are dropped from the set; a
// destination inside a selected subtree is rejected.
func (s *Service) SendTo(selection []*doctree.Node, dest *doctree.Node) (res Result) {
	defer guard(&res, s.log, "send to")

	if len(selection) == 0 {
		return failure("nothing selected")
	}
	if dest != nil {
		if !dest.IsSection() {
			return failure("destination must be a section")
		}
		if !s.tree.Contains(dest) {
			return failure("destination not found in tree")
		}
	}

	top := s.topLevelSelection(selection)
	if len(top) == 0 {
		return failure("no selected node exists in tree")
	}
	for _, n := range top {
		if n == dest || s.tree.IsAncestor(n, dest) {
			return failure("cannot move a node into its own descendant")
		}
	}

	for _, n := range top {
		s.tree.Remove(n)
		if dest == nil {
			s.tree.Roots = append(s.tree.Roots, n)
		} else {
			dest.Children = append(dest.Children, n)
		}
		s.applyLevel(n, dest)
	}

	s.log.Infow("relocated nodes", "count", len(top))
	return success(fmt.Sprintf("moved %d nodes", len(top))).with("moved", len(top))
}

// topLevelSelection filters the selection down to nodes that are in the tree
// and not descendants of another selected node, in document order.
func (s *Service) topLevelSelection(selection []*doctree.Node) []*doctree.Node {
	picked := make(map[*doctree.Node]bool, len(selection))
	for _, n := range selection {
		if n != nil {
			picked[n] = true
		}
	}

	var out []*doctree.Node
	s.tree.Walk(func(n, _ *doctree.Node) bool {
		if !picked[n] {
			return true
		}
		for _, chosen := range out {
			if s.tree.IsAncestor(chosen, n) {
				return true
			}
		}
		out = append(out, n)
		return true
	})
	return out
}
