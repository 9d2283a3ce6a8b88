package merge

import (
	"errors"

	"docforge/internal/doctree"
)

// ErrTargetNotFound reports a manual merge whose target node or topic body
// cannot be resolved. The tree is left untouched.
var ErrTargetNotFound = errors.New("merge target not found")

// Manual merges the listed topics into the target in the given order: each
// source's heading marker and body are appended to the target, the source
// node is removed and its topic purged. Section refs and sources that no
// longer resolve are skipped so a partial batch still completes.
func Manual(t *doctree.Tree, sourceRefs []string, targetRef string) (Stats, error) {
	var stats Stats

	target := t.FindRef(targetRef)
	if target == nil {
		return stats, ErrTargetNotFound
	}
	topic := t.Topic(target.Ref)
	if topic == nil {
		return stats, ErrTargetNotFound
	}

	for _, ref := range sourceRefs {
		if ref == targetRef {
			continue
		}
		node := t.FindRef(ref)
		if node == nil || !node.IsTopic() {
			continue
		}
		src := t.Topic(node.Ref)
		appendTitleMarker(topic, effectiveTitle(node, src))
		if src != nil {
			topic.Blocks = append(topic.Blocks, doctree.CloneBlocks(src.Blocks)...)
		}
		hoistChildren(t, node)
		t.Remove(node)
		stats.TopicsMerged++
	}

	stats.TopicsPurged = len(t.PurgeUnreferenced())
	return stats, nil
}

// hoistChildren moves a doomed node's children into its place so the merge
// never drops subtrees, shifting their stored levels up by one.
func hoistChildren(t *doctree.Tree, n *doctree.Node) {
	if len(n.Children) == 0 {
		return
	}
	parent := t.Parent(n)
	siblings := t.Roots
	if parent != nil {
		siblings = parent.Children
	}
	i := doctree.IndexOf(siblings, n)
	if i < 0 {
		return
	}
	for off, c := range n.Children {
		patchLevels(c, -1)
		t.InsertChild(parent, i+1+off, c)
	}
	n.Children = nil
}
