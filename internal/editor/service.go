// Package editor is the structure editing service: move, rename, delete,
// insert, convert and depth-limit operations over one live document tree.
// Every operation patches the stored levels of the nodes it touches; nothing
// here recomputes levels globally.
package editor

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"docforge/internal/doctree"
)

// Service wraps a single document tree. It is stateless per call except for
// the depth-limit baseline (see ApplyDepthLimit) and assumes exclusive,
// single-session access to the tree.
type Service struct {
	tree *doctree.Tree
	log  *zap.SugaredLogger

	// Depth-limit reversibility state.
	baseline     []byte
	appliedDepth int
	appliedExcl  bool
	applied      bool
	mergeRuns    int
}

// New builds a service over the given tree. A nil logger is replaced by a
// no-op logger.
func New(tree *doctree.Tree, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{tree: tree, log: log}
}

// Tree exposes the live tree for read-only collaborators.
func (s *Service) Tree() *doctree.Tree { return s.tree }

var genericStyle = regexp.MustCompile(`^Heading \d+$`)

// applyLevel re-levels a reparented node: parent level + 1, a sibling's
// level at root when one exists, else 1. The whole subtree shifts with it.
// Style is reset to the generic heading label only when the previous style
// was empty or itself generic.
func (s *Service) applyLevel(n, parent *doctree.Node) {
	level := 1
	if parent != nil && parent.Level > 0 {
		level = parent.Level + 1
	} else if parent == nil {
		for _, sib := range s.tree.Roots {
			if sib != n && sib.Level > 0 {
				level = sib.Level
				break
			}
		}
	}
	shiftLevels(n, level-n.Level)
	if n.Style == "" || genericStyle.MatchString(n.Style) {
		n.Style = fmt.Sprintf("Heading %d", n.Level)
	}
}

func shiftLevels(n *doctree.Node, delta int) {
	if delta == 0 {
		return
	}
	n.Level += delta
	for _, c := range n.Children {
		shiftLevels(c, delta)
	}
}
