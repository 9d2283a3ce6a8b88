package editor

import (
	"fmt"

	"docforge/internal/doctree"
	"docforge/internal/merge"
)

// Rename sets a topic's title and the node's navigation-title override. The
// input is whitespace-collapsed; an empty title is rejected.
func (s *Service) Rename(ref, title string) (res Result) {
	defer guard(&res, s.log, "rename")

	title = merge.CollapseWhitespace(title)
	if title == "" {
		return failure("title must not be empty")
	}
	node := s.tree.FindRef(ref)
	if node == nil {
		return failure(fmt.Sprintf("no topic node for %q", ref))
	}
	topic := s.tree.Topic(ref)
	if topic == nil {
		return failure(fmt.Sprintf("topic body %q missing", ref))
	}

	topic.Title = title
	node.Title = title
	s.log.Infow("renamed topic", "ref", ref, "title", title)
	return success("renamed").with("ref", ref)
}

// DeleteTopics removes topic nodes by reference key, subtrees included, then
// purges topic bodies no longer referenced anywhere. Keys that do not
// resolve are skipped; resolving none is a failure.
func (s *Service) DeleteTopics(refs []string) (res Result) {
	defer guard(&res, s.log, "delete")

	if len(refs) == 0 {
		return failure("nothing selected")
	}

	removed := 0
	var skipped []string
	for _, ref := range refs {
		node := s.tree.FindRef(ref)
		if node == nil {
			skipped = append(skipped, ref)
			continue
		}
		s.tree.Remove(node)
		removed++
	}
	purged := s.tree.PurgeUnreferenced()

	if removed == 0 {
		return failure("no selected topic exists")
	}
	r := success(fmt.Sprintf("deleted %d topics", removed))
	r = r.with("removed", removed).with("purged", len(purged))
	if len(skipped) > 0 {
		r = r.with("skipped", skipped)
	}
	return r
}

// DeleteSection removes a section and its whole subtree, then purges
// orphaned topic bodies.
func (s *Service) DeleteSection(section *doctree.Node) (res Result) {
	defer guard(&res, s.log, "delete section")

	if section == nil || !section.IsSection() {
		return failure("not a section")
	}
	if !s.tree.Remove(section) {
		return failure("section not found in tree")
	}
	purged := s.tree.PurgeUnreferenced()
	return success("section deleted").with("purged", len(purged))
}

// InsertSection creates a section titled title. With asFirstChild the target
// must be a section and the new node becomes its first child; otherwise the
// new node is inserted immediately after the target in its sibling list.
func (s *Service) InsertSection(target *doctree.Node, asFirstChild bool, title string) (res Result) {
	defer guard(&res, s.log, "insert section")

	title = merge.CollapseWhitespace(title)
	if title == "" {
		return failure("title must not be empty")
	}
	if target == nil {
		return failure("no insertion point")
	}
	if asFirstChild && !target.IsSection() {
		return failure("can only insert inside a section")
	}
	if !s.tree.Contains(target) {
		return failure("insertion point not found in tree")
	}

	section := &doctree.Node{Kind: doctree.KindSection, Title: title}
	if asFirstChild {
		s.tree.InsertChild(target, 0, section)
		s.applyLevel(section, target)
	} else {
		parent := s.tree.Parent(target)
		i := doctree.IndexOf(s.childrenOf(parent), target)
		s.tree.InsertChild(parent, i+1, section)
		s.applyLevel(section, parent)
	}

	s.log.Infow("inserted section", "title", title, "level", section.Level)
	return success("section inserted").with("level", section.Level)
}

// ConvertSectionToTopic turns one section into a content-bearing topic via
// the merge engine's content-module promotion, purging topics it subsumes.
func (s *Service) ConvertSectionToTopic(section *doctree.Node) (res Result) {
	defer guard(&res, s.log, "convert section")

	if section == nil || !section.IsSection() {
		return failure("not a section")
	}
	module, ok := merge.PromoteSection(s.tree, section)
	if !ok {
		return failure("section not found in tree")
	}
	return success("section converted").with("ref", module.Ref)
}
