package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docforge/internal/doctree"
)

func paragraphText(topic *doctree.Topic) string {
	var b strings.Builder
	for _, blk := range topic.Blocks {
		if blk.Type == doctree.BlockParagraph && blk.Paragraph != nil {
			for _, r := range blk.Paragraph.Runs {
				b.WriteString(r.Text)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func TestPromoteSection_FoldsWholeSubtree(t *testing.T) {
	// A topic chain below the content module: the fold has to reach the
	// grandchild before its parent disappears, or its body is orphaned.
	tree := doctree.New()
	leaf := topicNode(tree, "topics/leaf.xml", "Leaf", 4)
	grand := topicNode(tree, "topics/grand.xml", "Grand", 3, leaf)
	core := topicNode(tree, "topics/core.xml", "Core", 2, grand)
	outer := section("Outer", 1, core)
	tree.Roots = []*doctree.Node{outer}

	module, ok := PromoteSection(tree, outer)
	require.True(t, ok)

	require.Len(t, tree.Roots, 1)
	assert.Same(t, core, module)
	assert.Same(t, core, tree.Roots[0])
	assert.True(t, module.IsTopic())
	assert.Equal(t, 1, module.Level)
	assert.Equal(t, "Outer", module.Title)
	assert.Empty(t, module.Children)

	body := tree.Topic("topics/core.xml")
	require.NotNil(t, body)
	assert.Equal(t, []string{"OUTER", "GRAND", "LEAF"}, markerTexts(body))
	text := paragraphText(body)
	assert.Contains(t, text, "Grand body")
	assert.Contains(t, text, "Leaf body")

	assert.Nil(t, tree.Topic("topics/grand.xml"))
	assert.Nil(t, tree.Topic("topics/leaf.xml"))
}

func TestPromoteSection_NestedSectionFolds(t *testing.T) {
	tree := doctree.New()
	deep := topicNode(tree, "topics/deep.xml", "Deep", 3)
	inner := section("Inner", 2, deep)
	core := topicNode(tree, "topics/core.xml", "Core", 2)
	outer := section("Outer", 1, core, inner)
	tree.Roots = []*doctree.Node{outer}

	module, ok := PromoteSection(tree, outer)
	require.True(t, ok)

	assert.Same(t, core, module)
	assert.Empty(t, module.Children)
	body := tree.Topic("topics/core.xml")
	require.NotNil(t, body)
	assert.Equal(t, []string{"OUTER", "INNER", "DEEP"}, markerTexts(body))
	assert.Nil(t, tree.Topic("topics/deep.xml"))
}
