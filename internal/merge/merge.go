// Package merge implements the tree-rewriting engine that collapses nodes
// excluded by depth limit or heading style into ancestor topics, folds
// redundant wrapper sections, and promotes sections at the depth boundary to
// content-bearing topics.
package merge

import (
	"docforge/internal/doctree"
)

// Options selects which nodes the engine merges away. A node is merged when
// its level exceeds DepthLimit (when DepthLimit > 0) or when its
// (level, style) pair appears in StyleExclusions.
type Options struct {
	DepthLimit      int
	StyleExclusions map[int]map[string]bool
}

// Excluded reports whether the style label is excluded at the given level.
func (o Options) Excluded(level int, style string) bool {
	if o.StyleExclusions == nil {
		return false
	}
	return o.StyleExclusions[level][style]
}

// HasExclusions reports whether any style exclusion is configured.
func (o Options) HasExclusions() bool {
	for _, styles := range o.StyleExclusions {
		if len(styles) > 0 {
			return true
		}
	}
	return false
}

func (o Options) selects(n *doctree.Node) bool {
	if o.DepthLimit > 0 && n.Level > o.DepthLimit {
		return true
	}
	return o.Excluded(n.Level, n.Style)
}

// Stats summarizes one engine run.
type Stats struct {
	SectionsMerged    int
	TopicsMerged      int
	TopicsPurged      int
	SectionsCollapsed int
	SectionsPromoted  int
}

// ByDepthAndStyle rewrites the tree in a single top-to-bottom traversal so
// that no selected node survives as a separate entry, then purges orphaned
// topics, collapses wrapper sections left with a single topic child, and
// promotes sections sitting exactly at the depth boundary.
func ByDepthAndStyle(t *doctree.Tree, opts Options) Stats {
	m := &merger{tree: t, opts: opts}
	m.processChildren(nil, nil)

	m.stats.TopicsPurged += len(t.PurgeUnreferenced())
	m.collapseRedundant(nil)
	if opts.DepthLimit > 0 {
		m.promoteBoundary(nil)
	}
	return m.stats
}

type merger struct {
	tree  *doctree.Tree
	opts  Options
	stats Stats
}

func (m *merger) childrenOf(parent *doctree.Node) []*doctree.Node {
	if parent == nil {
		return m.tree.Roots
	}
	return parent.Children
}

// processChildren walks parent's children in document order carrying the
// nearest enclosing topic node eligible to receive merged content.
func (m *merger) processChildren(parent, ancestor *doctree.Node) {
	// Children are snapshotted because merge handlers remove nodes from the
	// live slice mid-walk.
	children := append([]*doctree.Node(nil), m.childrenOf(parent)...)
	for _, child := range children {
		if !m.opts.selects(child) {
			next := ancestor
			if child.IsTopic() {
				next = child
			}
			m.processChildren(child, next)
			continue
		}

		switch child.Kind {
		case doctree.KindSection:
			m.mergeSection(parent, child, ancestor)
		case doctree.KindTopic:
			m.mergeTopic(parent, child, ancestor)
		}
	}
}

// mergeSection folds a selected section into a target topic: the ancestor
// when one exists, else the nearest preceding topic sibling, else the
// section's own content module.
func (m *merger) mergeSection(parent, section, ancestor *doctree.Node) {
	target := ancestor
	if target == nil {
		target = precedingTopicSibling(m.childrenOf(parent), section)
	}
	if target == nil {
		target = m.ensureContentModule(section)
	}
	topic := m.topicOf(target)
	if topic == nil {
		// No viable target: leave the section in place rather than lose its
		// subtree, but keep rewriting below it.
		m.processChildren(section, ancestor)
		return
	}

	appendTitleMarker(topic, section.Title)
	m.processChildren(section, target)
	m.stats.SectionsMerged++

	if len(section.Children) == 0 {
		m.tree.Remove(section)
	}
	// A section still holding its own content module is folded by the
	// redundant-wrapper collapse pass.
}

// mergeTopic folds a selected topic node into the carried ancestor, or with
// no ancestor into a preceding topic sibling or the parent section's content
// module. A topic that resolves to itself is the section's own content
// module: it is normalized instead of merged away.
func (m *merger) mergeTopic(parent, node, ancestor *doctree.Node) {
	target := ancestor
	if target == nil {
		target = precedingTopicSibling(m.childrenOf(parent), node)
	}
	if target == nil && parent != nil && parent.IsSection() {
		target = m.ensureContentModule(parent)
	}
	if target == nil || m.topicOf(target) == nil {
		m.processChildren(node, ancestor)
		return
	}

	if target == node {
		if parent != nil {
			node.Level = parent.Level
			node.Style = parent.Style
		}
		m.processChildren(node, node)
		return
	}

	targetTopic := m.topicOf(target)
	srcTopic := m.tree.Topic(node.Ref)
	appendTitleMarker(targetTopic, effectiveTitle(node, srcTopic))
	if srcTopic != nil {
		targetTopic.Blocks = append(targetTopic.Blocks, doctree.CloneBlocks(srcTopic.Blocks)...)
	}

	m.processChildren(node, target)
	m.stats.TopicsMerged++
	// Children the options did not select are still alive: hoist them into
	// the node's place so removing it never drops a subtree.
	hoistChildren(m.tree, node)
	m.tree.Remove(node)
}

func (m *merger) topicOf(n *doctree.Node) *doctree.Topic {
	if n == nil || !n.IsTopic() {
		return nil
	}
	return m.tree.Topic(n.Ref)
}

// precedingTopicSibling scans backwards from n for the nearest topic node in
// the same sibling list.
func precedingTopicSibling(siblings []*doctree.Node, n *doctree.Node) *doctree.Node {
	i := doctree.IndexOf(siblings, n)
	for i--; i >= 0; i-- {
		if siblings[i].IsTopic() {
			return siblings[i]
		}
	}
	return nil
}

func effectiveTitle(n *doctree.Node, topic *doctree.Topic) string {
	if n.Title != "" {
		return n.Title
	}
	if topic != nil {
		return topic.Title
	}
	return n.Ref
}

// collapseRedundant replaces, bottom-up, every section whose single child is
// a topic node by that node. The section's navigation title and attributes
// transfer to the node; the topic body keeps its own title.
func (m *merger) collapseRedundant(parent *doctree.Node) {
	children := m.childrenOf(parent)
	for _, child := range children {
		m.collapseRedundant(child)
	}

	// Re-read after recursion: collapses below may have rewritten the slice.
	children = m.childrenOf(parent)
	for i, child := range children {
		if !child.IsSection() || len(child.Children) != 1 || !child.Children[0].IsTopic() {
			continue
		}
		ref := child.Children[0]
		ref.Title = child.Title
		ref.Style = child.Style
		if child.Level > 0 {
			ref.Level = child.Level
		} else {
			ref.Level = m.tree.StructuralDepth(child)
		}
		child.Children = nil
		m.replaceAt(parent, i, ref)
		m.stats.SectionsCollapsed++
	}
}

// promoteBoundary replaces every remaining section whose level equals the
// depth limit by its content module, so no structural wrapper survives
// exactly at the boundary. Leftover children move under the module.
func (m *merger) promoteBoundary(parent *doctree.Node) {
	children := append([]*doctree.Node(nil), m.childrenOf(parent)...)
	for _, child := range children {
		if child.IsSection() && child.Level == m.opts.DepthLimit {
			i := doctree.IndexOf(m.childrenOf(parent), child)
			if i < 0 {
				continue
			}
			module := m.promoteSection(parent, child, i)
			m.promoteBoundary(module)
			continue
		}
		m.promoteBoundary(child)
	}
}

// promoteSection is the shared section-to-topic promotion: ensure a content
// module, hand the section's remaining children to it, and put it in the
// section's place.
func (m *merger) promoteSection(parent, section *doctree.Node, i int) *doctree.Node {
	module := m.ensureContentModule(section)
	module.Title = section.Title
	module.Level = section.Level
	module.Style = section.Style
	for _, c := range section.Children {
		if c == module {
			continue
		}
		patchLevels(c, module.Level+1-c.Level)
		module.Children = append(module.Children, c)
	}
	section.Children = nil
	m.replaceAt(parent, i, module)
	m.stats.SectionsPromoted++
	return module
}

func (m *merger) replaceAt(parent *doctree.Node, i int, n *doctree.Node) {
	if parent == nil {
		m.tree.Roots[i] = n
		return
	}
	parent.Children[i] = n
}

// patchLevels shifts a subtree's stored levels by delta.
func patchLevels(n *doctree.Node, delta int) {
	if delta == 0 {
		return
	}
	n.Level += delta
	for _, c := range n.Children {
		patchLevels(c, delta)
	}
}
