package editor

import (
	"fmt"

	"docforge/internal/merge"
	"docforge/internal/store"
)

// ApplyDepthLimit runs the merge engine against the session's original tree
// state. The first call captures the current tree as that original baseline;
// every later call restores the baseline before merging again, so depth
// limits never compound and any limit can be swapped for another. Requesting
// the pair (limit, has-exclusions) that is already in effect is a recognized
// no-op.
func (s *Service) ApplyDepthLimit(opts merge.Options) (res Result) {
	defer guard(&res, s.log, "apply depth limit")

	hasExcl := opts.HasExclusions()
	if opts.DepthLimit <= 0 && !hasExcl {
		return failure("no depth limit or style exclusions given")
	}
	if s.applied && s.appliedDepth == opts.DepthLimit && s.appliedExcl == hasExcl {
		return success("depth limit already applied").
			with("noop", true).
			with("merge_runs", s.mergeRuns)
	}

	if s.baseline == nil {
		base, err := store.Encode(s.tree)
		if err != nil {
			return failure(fmt.Sprintf("cannot capture baseline: %v", err))
		}
		s.baseline = base
	} else if err := store.Restore(s.tree, s.baseline); err != nil {
		return failure(fmt.Sprintf("cannot restore baseline: %v", err))
	}

	stats := merge.ByDepthAndStyle(s.tree, opts)
	s.mergeRuns++
	s.applied = true
	s.appliedDepth = opts.DepthLimit
	s.appliedExcl = hasExcl

	s.log.Infow("applied depth limit",
		"limit", opts.DepthLimit,
		"style_exclusions", hasExcl,
		"sections_merged", stats.SectionsMerged,
		"topics_merged", stats.TopicsMerged)

	return success("depth limit applied").
		with("merge_runs", s.mergeRuns).
		with("stats", stats)
}

// MergeRuns reports how many times the merge engine has run for this
// service.
func (s *Service) MergeRuns() int { return s.mergeRuns }
