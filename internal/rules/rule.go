// Package rules implements the thirteen-plus-one scoring rule kinds that
// the engine applies in order to assign a final status to each note.
package rules

import (
	"notescore/internal/notestats"
	"notescore/internal/ruleid"
)

// Rule is the contract every scoring rule implements: an identity, a
// declared dependency set, and a scoring function over the current table
// and labels. statusColumn is the caller's output status column name; the
// rule kinds in this package do not read it, and it does not change which
// field of Update carries the decided status.
type Rule interface {
	ID() ruleid.ID
	Dependencies() ruleid.Set
	Score(notes *notestats.Table, labels *notestats.Labels, statusColumn string) (notestats.Updates, notestats.Extras, error)
}

// base holds the identity/dependency bookkeeping shared by every rule kind,
// mirroring the common ScoringRule header in the original implementation.
type base struct {
	id   ruleid.ID
	deps ruleid.Set
}

func (b base) ID() ruleid.ID { return b.id }

func (b base) Dependencies() ruleid.Set {
	if b.deps == nil {
		return ruleid.Set{}
	}
	return b.deps
}
