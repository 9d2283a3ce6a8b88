package merge

import (
	"fmt"

	"docforge/internal/doctree"
)

// ensureContentModule returns the section's content module: the first child
// when it is already a topic node, otherwise a freshly created topic inserted
// as the first child. The section's title marker is stamped into the module
// body so the heading is not lost when the wrapper disappears; the marker
// dedup rule keeps repeat calls harmless.
func (m *merger) ensureContentModule(section *doctree.Node) *doctree.Node {
	var module *doctree.Node
	if len(section.Children) > 0 && section.Children[0].IsTopic() {
		module = section.Children[0]
	} else {
		ref := m.tree.NewRef()
		m.tree.Topics[ref] = &doctree.Topic{Title: section.Title}
		module = &doctree.Node{
			Kind:  doctree.KindTopic,
			Ref:   ref,
			Level: section.Level + 1,
			Style: fmt.Sprintf("Heading %d", section.Level+1),
		}
		m.tree.InsertChild(section, 0, module)
	}
	if topic := m.tree.Topic(module.Ref); topic != nil {
		appendTitleMarker(topic, section.Title)
	}
	return module
}

// PromoteSection converts one section into a topic node using the engine's
// content-module promotion: the section's heading and descendants are folded
// into (or under) its content module, which then takes the section's place.
// Topics subsumed by the fold are purged. Returns the replacement node and
// false when the section is not in the tree.
func PromoteSection(t *doctree.Tree, section *doctree.Node) (*doctree.Node, bool) {
	if section == nil || !section.IsSection() {
		return nil, false
	}
	parent := t.Parent(section)
	siblings := t.Roots
	if parent != nil {
		siblings = parent.Children
	}
	i := doctree.IndexOf(siblings, section)
	if i < 0 && parent == nil && !t.Contains(section) {
		return nil, false
	}
	if i < 0 {
		return nil, false
	}

	m := &merger{tree: t}
	module := m.promoteSection(parent, section, i)

	// Fold everything below the module into its body so the conversion
	// yields a single topic. Selecting by the module's level runs the
	// engine's own depth walk over the whole subtree, so grandchildren merge
	// before their parents are removed and nothing is dropped.
	if t.Topic(module.Ref) != nil {
		limit := module.Level
		if limit <= 0 {
			limit = t.StructuralDepth(module)
		}
		m.opts = Options{DepthLimit: limit}
		m.processChildren(module, module)
	}
	t.PurgeUnreferenced()
	return module, true
}
