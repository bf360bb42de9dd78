package rules

import (
	"notescore/internal/notestats"
	"notescore/internal/ruleid"
	"notescore/internal/status"
)

// DefaultRule initializes every note to a configured default status.
// Mirrors the original implementation's DefaultRule, used to produce
// InitialNMR / MetaInitialNMR.
type DefaultRule struct {
	base
	Status status.Status
}

// NewDefaultRule builds a DefaultRule assigning st to every note in the
// input table. Must be the first rule applied.
func NewDefaultRule(id ruleid.ID, deps ruleid.Set, st status.Status) *DefaultRule {
	return &DefaultRule{base: base{id: id, deps: deps}, Status: st}
}

func (r *DefaultRule) Score(notes *notestats.Table, _ *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	ids := notes.NoteIDs()
	updates := make(notestats.Updates, 0, len(ids))
	for _, id := range ids {
		updates = append(updates, notestats.Update{NoteID: id, Status: r.Status})
	}
	return updates, nil, nil
}
