// Package session owns the state of one editing session: the live tree, the
// editing service, the undo stacks and the optional autosave journal. It
// plays the UI-controller role of bracketing every mutation with a
// pre-mutation and post-mutation snapshot push.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docforge/internal/config"
	"docforge/internal/doctree"
	"docforge/internal/editor"
	"docforge/internal/merge"
	"docforge/internal/snapshot"
	"docforge/internal/store"
)

// Session is an explicit per-document object; nothing here is process-wide.
type Session struct {
	tree       *doctree.Tree
	editor     *editor.Service
	history    *snapshot.Service
	autosave   *store.AutosaveStore
	exclusions map[int]map[string]bool
	log        *zap.SugaredLogger
}

// New builds a session over the imported tree. When autosave is enabled in
// the config, every successful mutation is mirrored into the journal.
func New(tree *doctree.Tree, cfg *config.Config, log *zap.SugaredLogger) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Session{
		tree:       tree,
		editor:     editor.New(tree, log),
		history:    snapshot.New(cfg.Editor.MaxUndoDepth, log),
		exclusions: cfg.ExclusionMap(),
		log:        log,
	}
	if cfg.Autosave.Enabled {
		as, err := store.NewAutosaveStore(cfg.Autosave.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open autosave journal: %w", err)
		}
		s.autosave = as
	}
	return s, nil
}

// Close releases the autosave journal, if any.
func (s *Session) Close() error {
	if s.autosave == nil {
		return nil
	}
	return s.autosave.Close()
}

// Tree exposes the live tree to read-only collaborators (preview, export).
func (s *Session) Tree() *doctree.Tree { return s.tree }

// Editor exposes the underlying editing service.
func (s *Session) Editor() *editor.Service { return s.editor }

// run brackets one mutation: the pre-mutation state is captured first and
// both states are pushed only when the operation succeeds, so failed
// operations leave the undo/redo stacks untouched.
func (s *Session) run(op func() editor.Result) editor.Result {
	base, err := store.Encode(s.tree)
	if err != nil {
		return editor.Result{Success: false, Message: fmt.Sprintf("cannot snapshot tree: %v", err)}
	}

	res := op()
	if !res.Success {
		return res
	}

	s.history.PushState(base)
	if err := s.history.Push(s.tree); err != nil {
		s.log.Errorw("post-mutation snapshot failed", "error", err)
		return res
	}
	s.mirror()
	return res
}

func (s *Session) mirror() {
	if s.autosave == nil {
		return
	}
	ctx := context.Background()
	if data := s.history.Latest(); data != nil {
		if _, err := s.autosave.SaveState(ctx, data); err != nil {
			s.log.Warnw("autosave failed", "error", err)
			return
		}
		if err := s.autosave.Prune(ctx, snapshot.DefaultMaxEntries); err != nil {
			s.log.Warnw("autosave prune failed", "error", err)
		}
	}
}

// RecoverLatest replaces the live tree with the newest autosaved state.
func (s *Session) RecoverLatest(ctx context.Context) error {
	if s.autosave == nil {
		return fmt.Errorf("autosave is not enabled")
	}
	data, err := s.autosave.LatestState(ctx)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("autosave journal is empty")
	}
	return store.Restore(s.tree, data)
}

// MoveUp moves a node one position up in document order.
func (s *Session) MoveUp(n *doctree.Node) editor.Result {
	return s.run(func() editor.Result { return s.editor.MoveUp(n) })
}

// MoveDown moves a node one position down in document order.
func (s *Session) MoveDown(n *doctree.Node) editor.Result {
	return s.run(func() editor.Result { return s.editor.MoveDown(n) })
}

// MoveGroupUp moves a contiguous sibling selection up.
func (s *Session) MoveGroupUp(nodes []*doctree.Node) editor.Result {
	return s.run(func() editor.Result { return s.editor.MoveGroupUp(nodes) })
}

// MoveGroupDown moves a contiguous sibling selection down.
func (s *Session) MoveGroupDown(nodes []*doctree.Node) editor.Result {
	return s.run(func() editor.Result { return s.editor.MoveGroupDown(nodes) })
}

// Rename retitles a topic and its navigation entry.
func (s *Session) Rename(ref, title string) editor.Result {
	return s.run(func() editor.Result { return s.editor.Rename(ref, title) })
}

// DeleteTopics removes topic nodes by reference key.
func (s *Session) DeleteTopics(refs []string) editor.Result {
	return s.run(func() editor.Result { return s.editor.DeleteTopics(refs) })
}

// DeleteSection removes a section subtree.
func (s *Session) DeleteSection(n *doctree.Node) editor.Result {
	return s.run(func() editor.Result { return s.editor.DeleteSection(n) })
}

// InsertSection creates a new section at the given insertion point.
func (s *Session) InsertSection(target *doctree.Node, asFirstChild bool, title string) editor.Result {
	return s.run(func() editor.Result { return s.editor.InsertSection(target, asFirstChild, title) })
}

// ConvertSectionToTopic promotes a section to a content-bearing topic.
func (s *Session) ConvertSectionToTopic(n *doctree.Node) editor.Result {
	return s.run(func() editor.Result { return s.editor.ConvertSectionToTopic(n) })
}

// SendTo relocates a selection under a destination section or the root.
func (s *Session) SendTo(selection []*doctree.Node, dest *doctree.Node) editor.Result {
	return s.run(func() editor.Result { return s.editor.SendTo(selection, dest) })
}

// MergeTopics manually merges the source topics into the target.
func (s *Session) MergeTopics(sources []string, target string) editor.Result {
	return s.run(func() editor.Result {
		stats, err := merge.Manual(s.tree, sources, target)
		if err != nil {
			return editor.Result{Success: false, Message: err.Error()}
		}
		return editor.Result{
			Success: true,
			Message: fmt.Sprintf("merged %d topics", stats.TopicsMerged),
			Details: map[string]any{"stats": stats},
		}
	})
}

// ApplyDepthLimit applies (or re-applies) a depth limit using the session's
// configured style exclusions.
func (s *Session) ApplyDepthLimit(limit int) editor.Result {
	return s.run(func() editor.Result {
		return s.editor.ApplyDepthLimit(merge.Options{
			DepthLimit:      limit,
			StyleExclusions: s.exclusions,
		})
	})
}

// Undo restores the previous baseline state.
func (s *Session) Undo() editor.Result {
	if err := s.history.Undo(s.tree); err != nil {
		return editor.Result{Success: false, Message: err.Error()}
	}
	return editor.Result{Success: true, Message: "undone"}
}

// Redo re-applies the most recently undone state.
func (s *Session) Redo() editor.Result {
	if err := s.history.Redo(s.tree); err != nil {
		return editor.Result{Success: false, Message: err.Error()}
	}
	return editor.Result{Success: true, Message: "redone"}
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }
