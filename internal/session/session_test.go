package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docforge/internal/config"
	"docforge/internal/doctree"
	"docforge/internal/store"
)

func sessionTree() (*doctree.Tree, map[string]*doctree.Node) {
	tree := doctree.New()
	mkTopic := func(ref, title string, level int) *doctree.Node {
		tree.Topics[ref] = &doctree.Topic{
			Title:  title,
			Blocks: []doctree.Block{doctree.NewParagraphBlock(title + " body")},
		}
		return &doctree.Node{Kind: doctree.KindTopic, Ref: ref, Title: title, Level: level}
	}
	a := mkTopic("topics/a.xml", "A", 2)
	b := mkTopic("topics/b.xml", "B", 2)
	d := mkTopic("topics/d.xml", "D", 1)
	s1 := &doctree.Node{Kind: doctree.KindSection, Title: "S1", Level: 1, Children: []*doctree.Node{a, b}}
	tree.Roots = []*doctree.Node{s1, d}
	return tree, map[string]*doctree.Node{"a": a, "b": b, "d": d, "S1": s1}
}

func newSession(t *testing.T) (*Session, *doctree.Tree, map[string]*doctree.Node) {
	t.Helper()
	tree, nodes := sessionTree()
	sess, err := New(tree, config.Default(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return sess, tree, nodes
}

func TestSession_FailedOperationLeavesHistoryUntouched(t *testing.T) {
	sess, _, n := newSession(t)

	res := sess.MoveUp(n["S1"])
	assert.False(t, res.Success)
	assert.False(t, sess.CanUndo())
	assert.False(t, sess.CanRedo())
}

func TestSession_UndoRedoRoundTrip(t *testing.T) {
	sess, tree, n := newSession(t)
	original, err := store.Encode(tree)
	require.NoError(t, err)

	require.True(t, sess.MoveUp(n["b"]).Success)
	require.True(t, sess.Rename("topics/a.xml", "Alpha").Success)
	require.True(t, sess.DeleteTopics([]string{"topics/d.xml"}).Success)
	mutated, err := store.Encode(tree)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.True(t, sess.CanUndo())
		require.True(t, sess.Undo().Success)
	}
	back, err := store.Encode(tree)
	require.NoError(t, err)
	assert.Equal(t, string(original), string(back))
	assert.False(t, sess.CanUndo())
	assert.False(t, sess.Undo().Success)

	for i := 0; i < 3; i++ {
		require.True(t, sess.CanRedo())
		require.True(t, sess.Redo().Success)
	}
	forward, err := store.Encode(tree)
	require.NoError(t, err)
	assert.Equal(t, string(mutated), string(forward))
	assert.False(t, sess.Redo().Success)
}

func TestSession_NewMutationInvalidatesRedo(t *testing.T) {
	sess, _, n := newSession(t)

	require.True(t, sess.MoveUp(n["b"]).Success)
	require.True(t, sess.Undo().Success)
	require.True(t, sess.CanRedo())

	require.True(t, sess.Rename("topics/a.xml", "Alpha").Success)
	assert.False(t, sess.CanRedo())
}

func TestSession_MergeTopics(t *testing.T) {
	sess, tree, _ := newSession(t)

	res := sess.MergeTopics([]string{"topics/b.xml"}, "topics/a.xml")
	require.True(t, res.Success, res.Message)
	assert.Nil(t, tree.Topic("topics/b.xml"))
	assert.True(t, sess.CanUndo())

	require.True(t, sess.Undo().Success)
	assert.NotNil(t, tree.Topic("topics/b.xml"))
}

func TestSession_MergeTopicsMissingTargetFails(t *testing.T) {
	sess, _, _ := newSession(t)

	res := sess.MergeTopics([]string{"topics/b.xml"}, "topics/nope.xml")
	assert.False(t, res.Success)
	assert.False(t, sess.CanUndo())
}

func TestSession_ApplyDepthLimitUsesConfiguredExclusions(t *testing.T) {
	tree, n := sessionTree()
	n["b"].Style = "Callout"

	cfg := config.Default()
	cfg.StyleExclusions = []config.StyleExclusion{{Level: 2, Styles: []string{"Callout"}}}
	sess, err := New(tree, cfg, nil)
	require.NoError(t, err)
	defer sess.Close()

	// No depth limit: only the excluded style merges away.
	res := sess.ApplyDepthLimit(0)
	require.True(t, res.Success, res.Message)
	assert.Nil(t, tree.Topic("topics/b.xml"), "excluded topic folds into its predecessor")
	assert.NotNil(t, tree.Topic("topics/a.xml"))
	assert.True(t, sess.CanUndo())
}

func TestSession_AutosaveRecovery(t *testing.T) {
	tree, _ := sessionTree()
	cfg := config.Default()
	cfg.Autosave.Enabled = true
	cfg.Autosave.Path = filepath.Join(t.TempDir(), "autosave.db")

	sess, err := New(tree, cfg, nil)
	require.NoError(t, err)
	require.True(t, sess.Rename("topics/a.xml", "Alpha").Success)
	require.NoError(t, sess.Close())

	// A second session over a stale copy of the document recovers the
	// mirrored state.
	stale, _ := sessionTree()
	sess2, err := New(stale, cfg, nil)
	require.NoError(t, err)
	defer sess2.Close()

	require.NoError(t, sess2.RecoverLatest(context.Background()))
	assert.Equal(t, "Alpha", stale.Topic("topics/a.xml").Title)
}

func TestSession_RecoverLatestWithoutAutosave(t *testing.T) {
	sess, _, _ := newSession(t)
	assert.Error(t, sess.RecoverLatest(context.Background()))
}
