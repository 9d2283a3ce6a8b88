// Package snapshot provides whole-tree undo/redo over two bounded stacks of
// immutable serialized states. Callers push once before and once after every
// mutation; undo restores the pre-mutation baseline while keeping the
// post-mutation state available for redo.
package snapshot

import (
	"bytes"
	"errors"

	"go.uber.org/zap"

	"docforge/internal/doctree"
	"docforge/internal/store"
)

// Default bound on each stack.
const DefaultMaxEntries = 50

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Service holds the undo and redo stacks for one editing session.
type Service struct {
	undo [][]byte
	redo [][]byte
	max  int
	log  *zap.SugaredLogger
}

// New builds a service bounded to max entries per stack; max <= 0 selects
// DefaultMaxEntries.
func New(max int, log *zap.SugaredLogger) *Service {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{max: max, log: log}
}

// Push serializes the current tree onto the undo stack, clears the redo
// stack, and drops the oldest entries beyond the bound.
func (s *Service) Push(t *doctree.Tree) error {
	data, err := store.Encode(t)
	if err != nil {
		return err
	}
	s.PushState(data)
	return nil
}

// PushState pushes an already-serialized state. Callers that capture the
// pre-mutation state before knowing whether the mutation will succeed use
// this to push it afterwards. Re-pushing the state already on top adds no
// entry but still clears the redo stack, so a baseline push between two
// mutations never stacks a duplicate.
func (s *Service) PushState(data []byte) {
	if len(s.undo) > 0 && bytes.Equal(s.undo[len(s.undo)-1], data) {
		s.redo = nil
		return
	}
	s.undo = append(s.undo, data)
	s.redo = nil
	if excess := len(s.undo) - s.max; excess > 0 {
		s.undo = s.undo[excess:]
	}
}

// Undo restores the pre-mutation baseline into the live tree. The popped
// post-mutation state moves to the redo stack; if the baseline fails to
// restore, the popped state is pushed back and nothing changes.
func (s *Service) Undo(t *doctree.Tree) error {
	if len(s.undo) < 2 {
		return ErrNothingToUndo
	}

	post := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]

	if err := store.Restore(t, s.undo[len(s.undo)-1]); err != nil {
		s.undo = append(s.undo, post)
		s.log.Warnw("undo restore failed", "error", err)
		return err
	}

	s.redo = append(s.redo, post)
	if excess := len(s.redo) - s.max; excess > 0 {
		s.redo = s.redo[excess:]
	}
	return nil
}

// Redo restores the most recently undone state. On success that state moves
// back onto the undo stack; on failure both stacks and the live tree stay as
// they were.
func (s *Service) Redo(t *doctree.Tree) error {
	if len(s.redo) == 0 {
		return ErrNothingToRedo
	}

	state := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]

	if err := store.Restore(t, state); err != nil {
		s.redo = append(s.redo, state)
		s.log.Warnw("redo restore failed", "error", err)
		return err
	}

	s.undo = append(s.undo, state)
	if excess := len(s.undo) - s.max; excess > 0 {
		s.undo = s.undo[excess:]
	}
	return nil
}

// CanUndo reports whether a baseline and a post-mutation state are present.
func (s *Service) CanUndo() bool { return len(s.undo) > 1 }

// CanRedo reports whether an undone state is available.
func (s *Service) CanRedo() bool { return len(s.redo) > 0 }

// Depths reports the current stack sizes, newest last.
func (s *Service) Depths() (undo, redo int) {
	return len(s.undo), len(s.redo)
}

// Latest returns the newest undo entry without popping it, or nil. The
// session's autosave mirror reads it after each push.
func (s *Service) Latest() []byte {
	if len(s.undo) == 0 {
		return nil
	}
	return s.undo[len(s.undo)-1]
}
