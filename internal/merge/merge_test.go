package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docforge/internal/doctree"
)

func section(title string, level int, children ...*doctree.Node) *doctree.Node {
	return &doctree.Node{Kind: doctree.KindSection, Title: title, Level: level, Children: children}
}

func topicNode(tree *doctree.Tree, ref, title string, level int, children ...*doctree.Node) *doctree.Node {
	tree.Topics[ref] = &doctree.Topic{
		Title:  title,
		Blocks: []doctree.Block{doctree.NewParagraphBlock(title + " body")},
	}
	return &doctree.Node{Kind: doctree.KindTopic, Ref: ref, Level: level, Children: children}
}

func markerTexts(topic *doctree.Topic) []string {
	var out []string
	for _, b := range topic.Blocks {
		if b.Type == doctree.BlockParagraph && b.Paragraph != nil && b.Paragraph.Class == MarkerClass {
			text := ""
			for _, r := range b.Paragraph.Runs {
				text += r.Text
			}
			out = append(out, text)
		}
	}
	return out
}

// The canonical scenario: a level-1 section wrapping one level-2 topic
// collapses to the topic at level 1, with the section heading preserved as a
// merged-title marker.
func TestByDepthAndStyle_SectionWithSingleTopic(t *testing.T) {
	tree := doctree.New()
	topicB := topicNode(tree, "topics/b.xml", "Topic B", 2)
	tree.Roots = []*doctree.Node{section("Section A", 1, topicB)}

	ByDepthAndStyle(tree, Options{DepthLimit: 1})

	require.Len(t, tree.Roots, 1)
	got := tree.Roots[0]
	assert.Same(t, topicB, got)
	assert.True(t, got.IsTopic())
	assert.Equal(t, 1, got.Level)

	topic := tree.Topic("topics/b.xml")
	require.NotNil(t, topic)
	require.Len(t, topic.Blocks, 2, "original body plus one appended marker")
	appended := topic.Blocks[1]
	require.NotNil(t, appended.Paragraph)
	assert.Equal(t, MarkerClass, appended.Paragraph.Class)
	assert.Equal(t, "SECTION A", appended.Paragraph.Runs[0].Text)
	assert.True(t, appended.Paragraph.Runs[0].Bold)
	assert.True(t, appended.Paragraph.Runs[0].Underline)
}

func TestByDepthAndStyle_MergesIntoAncestorTopic(t *testing.T) {
	tree := doctree.New()
	t2 := topicNode(tree, "topics/t2.xml", "Details", 3)
	t1 := topicNode(tree, "topics/t1.xml", "Overview", 2, t2)
	tree.Roots = []*doctree.Node{section("Guide", 1, t1)}

	stats := ByDepthAndStyle(tree, Options{DepthLimit: 2})

	assert.Equal(t, 1, stats.TopicsMerged)
	assert.Empty(t, t1.Children)
	assert.Nil(t, tree.Topic("topics/t2.xml"), "merged topic is purged")

	topic := tree.Topic("topics/t1.xml")
	require.NotNil(t, topic)
	assert.Equal(t, []string{"DETAILS"}, markerTexts(topic))
	// Marker first, then the merged body.
	last := topic.Blocks[len(topic.Blocks)-1]
	assert.Equal(t, "Details body", last.Paragraph.Runs[0].Text)
}

func TestByDepthAndStyle_PrecedingSiblingReceivesMerge(t *testing.T) {
	tree := doctree.New()
	t3 := topicNode(tree, "topics/t3.xml", "First", 3)
	t4 := topicNode(tree, "topics/t4.xml", "Second", 3)
	b := section("Chapter", 2, t3, t4)
	tree.Roots = []*doctree.Node{section("Part", 1, b)}

	ByDepthAndStyle(tree, Options{DepthLimit: 2})

	// t3 became Chapter's content module and swallowed t4; both wrapper
	// sections then collapse onto it.
	require.Len(t, tree.Roots, 1)
	assert.Same(t, t3, tree.Roots[0])
	assert.Equal(t, 1, t3.Level)
	assert.Equal(t, "Part", t3.Title)
	assert.Nil(t, tree.Topic("topics/t4.xml"))

	topic := tree.Topic("topics/t3.xml")
	assert.Equal(t, []string{"CHAPTER", "SECOND"}, markerTexts(topic))
}

func TestByDepthAndStyle_DepthInvariant(t *testing.T) {
	tree := doctree.New()
	leaf := topicNode(tree, "topics/leaf.xml", "Leaf", 4)
	c := section("C", 3, leaf)
	mid := topicNode(tree, "topics/mid.xml", "Mid", 2)
	b := section("B", 2, mid, c)
	tree.Roots = []*doctree.Node{section("A", 1, b)}

	ByDepthAndStyle(tree, Options{DepthLimit: 2})

	tree.Walk(func(n, _ *doctree.Node) bool {
		if n.IsSection() {
			assert.Less(t, n.Level, 2, "no section wrapper survives at or past the boundary")
		}
		return true
	})
	// Reference integrity both ways.
	refs := tree.ReferencedRefs()
	for ref := range tree.Topics {
		assert.True(t, refs[ref], "topic %s must be referenced", ref)
	}
	for ref := range refs {
		assert.NotNil(t, tree.Topic(ref))
	}
}

func TestByDepthAndStyle_Idempotent(t *testing.T) {
	tree := doctree.New()
	leaf := topicNode(tree, "topics/leaf.xml", "Leaf", 3)
	inner := section("Inner", 2, leaf)
	first := topicNode(tree, "topics/first.xml", "First", 2)
	tree.Roots = []*doctree.Node{section("Outer", 1, first, inner)}

	opts := Options{DepthLimit: 2}
	ByDepthAndStyle(tree, opts)
	before := snapshotShape(tree)

	second := ByDepthAndStyle(tree, opts)
	assert.Equal(t, before, snapshotShape(tree))
	assert.Zero(t, second.SectionsMerged)
	assert.Zero(t, second.TopicsMerged)
}

func TestByDepthAndStyle_StyleExclusion(t *testing.T) {
	tree := doctree.New()
	note := topicNode(tree, "topics/note.xml", "Note", 2)
	note.Style = "Sidebar"
	keep := topicNode(tree, "topics/keep.xml", "Keep", 2)
	host := topicNode(tree, "topics/host.xml", "Host", 1, note, keep)
	tree.Roots = []*doctree.Node{host}

	ByDepthAndStyle(tree, Options{
		StyleExclusions: map[int]map[string]bool{2: {"Sidebar": true}},
	})

	require.Len(t, host.Children, 1)
	assert.Same(t, keep, host.Children[0])
	assert.Nil(t, tree.Topic("topics/note.xml"))
	assert.Equal(t, []string{"NOTE"}, markerTexts(tree.Topic("topics/host.xml")))
}

func TestByDepthAndStyle_ExcludedNodeKeepsUnselectedChild(t *testing.T) {
	// Only the Sidebar note is selected. Its child carries no excluded style
	// and must survive in the note's place, body intact.
	tree := doctree.New()
	keep := topicNode(tree, "topics/keep.xml", "Keep", 3)
	note := topicNode(tree, "topics/note.xml", "Note", 2, keep)
	note.Style = "Sidebar"
	host := topicNode(tree, "topics/host.xml", "Host", 1, note)
	tree.Roots = []*doctree.Node{host}

	ByDepthAndStyle(tree, Options{
		StyleExclusions: map[int]map[string]bool{2: {"Sidebar": true}},
	})

	require.Len(t, host.Children, 1)
	assert.Same(t, keep, host.Children[0])
	assert.Equal(t, 2, keep.Level, "hoisted child moves up one level")
	require.NotNil(t, tree.Topic("topics/keep.xml"))
	assert.NotEmpty(t, tree.Topic("topics/keep.xml").Blocks)
	assert.Nil(t, tree.Topic("topics/note.xml"))
	assert.Equal(t, []string{"NOTE"}, markerTexts(tree.Topic("topics/host.xml")))
}

func TestByDepthAndStyle_PromotesEmptyBoundarySection(t *testing.T) {
	tree := doctree.New()
	empty := section("Reserved", 2)
	filler := topicNode(tree, "topics/filler.xml", "Filler", 2)
	tree.Roots = []*doctree.Node{section("Top", 1, filler, empty)}

	stats := ByDepthAndStyle(tree, Options{DepthLimit: 2})

	assert.Equal(t, 1, stats.SectionsPromoted)
	top := tree.Roots[0]
	require.Len(t, top.Children, 2)
	promoted := top.Children[1]
	assert.True(t, promoted.IsTopic())
	assert.Equal(t, 2, promoted.Level)
	assert.Equal(t, "Reserved", promoted.Title)
	assert.Equal(t, []string{"RESERVED"}, markerTexts(tree.Topic(promoted.Ref)))
}

func TestByDepthAndStyle_PromotionCarriesStrayChildren(t *testing.T) {
	// Stored levels are explicit and may disagree with structure: children
	// recorded at the section's own level are not selected for merging, so
	// the boundary promotion has to carry them under the module.
	tree := doctree.New()
	stray := topicNode(tree, "topics/stray.xml", "Stray", 2)
	lead := topicNode(tree, "topics/lead.xml", "Lead", 2)
	b := section("Bucket", 2, lead, stray)
	tree.Roots = []*doctree.Node{section("Top", 1, b)}

	ByDepthAndStyle(tree, Options{DepthLimit: 2})

	top := tree.Roots[0]
	require.Len(t, top.Children, 1)
	module := top.Children[0]
	assert.Same(t, lead, module)
	assert.Equal(t, 2, module.Level)
	require.Len(t, module.Children, 1)
	assert.Same(t, stray, module.Children[0])
	assert.Equal(t, 3, stray.Level)
}

func TestByDepthAndStyle_PromotionRelevelsUnderFreshModule(t *testing.T) {
	// The boundary section's first child is another section, so the content
	// module is freshly created. Carried children sit directly under the
	// module after promotion.
	tree := doctree.New()
	odd := section("Odd", 2)
	box := section("Box", 2, odd)
	tree.Roots = []*doctree.Node{section("Top", 1, box)}

	ByDepthAndStyle(tree, Options{DepthLimit: 2})

	top := tree.Roots[0]
	require.Len(t, top.Children, 1)
	module := top.Children[0]
	assert.True(t, module.IsTopic())
	assert.Equal(t, "Box", module.Title)
	assert.Equal(t, 2, module.Level)
	require.Len(t, module.Children, 1)
	assert.Same(t, odd, module.Children[0])
	assert.Equal(t, 3, odd.Level)
	assert.Equal(t, []string{"BOX"}, markerTexts(tree.Topic(module.Ref)))
}

func TestByDepthAndStyle_ContentLossAvoidance(t *testing.T) {
	// A selected topic at root level has no ancestor, no preceding topic
	// sibling and no parent section to host a content module: it must stay.
	tree := doctree.New()
	orphan := topicNode(tree, "topics/orphan.xml", "Orphan", 5)
	tree.Roots = []*doctree.Node{orphan}

	stats := ByDepthAndStyle(tree, Options{DepthLimit: 1})

	assert.Zero(t, stats.TopicsMerged)
	require.Len(t, tree.Roots, 1)
	assert.Same(t, orphan, tree.Roots[0])
	assert.NotNil(t, tree.Topic("topics/orphan.xml"))
}

func TestByDepthAndStyle_CollapseTransfersNavigationTitleOnly(t *testing.T) {
	tree := doctree.New()
	only := topicNode(tree, "topics/only.xml", "Body Title", 2)
	tree.Roots = []*doctree.Node{section("Wrapper", 1, only)}

	ByDepthAndStyle(tree, Options{DepthLimit: 1})

	got := tree.Roots[0]
	assert.Equal(t, "Wrapper", got.Title, "navigation title comes from the section")
	assert.Equal(t, "Body Title", tree.Topic("topics/only.xml").Title, "topic's own title survives")
}

// snapshotShape captures structure and body lengths for equality checks
// without depending on generated block ids.
func snapshotShape(tree *doctree.Tree) map[string]any {
	shape := map[string]any{}
	var nodes []map[string]any
	tree.Walk(func(n, _ *doctree.Node) bool {
		nodes = append(nodes, map[string]any{
			"kind":  n.Kind,
			"title": n.Title,
			"ref":   n.Ref,
			"level": n.Level,
		})
		return true
	})
	shape["nodes"] = nodes
	bodies := map[string]int{}
	for ref, topic := range tree.Topics {
		bodies[ref] = len(topic.Blocks)
	}
	shape["bodies"] = bodies
	return shape
}
