package rules

import (
	"notescore/internal/notestats"
	"notescore/internal/ruleid"
	"notescore/internal/status"
)

// Predicate is a boolean function over a single note row, e.g.
// "intercept > 0.4". Implemented as a plain function rather than an
// expression tree, matching the original implementation's lambda-based
// RuleFromFunction.
type Predicate func(notestats.NoteRow) bool

// RuleFromFunction wraps a boolean predicate: every note the predicate
// matches is assigned Status, optionally restricted to notes whose
// classification is not SAYS_NOT_MISLEADING.
//
// Used to encode GeneralCRH, GeneralCRNH, UcbCRNH and similar coarse
// threshold rules.
type RuleFromFunction struct {
	base
	Status         status.Status
	Predicate      Predicate
	OnlyMisleading bool
}

// NewRuleFromFunction builds a RuleFromFunction. onlyMisleading defaults to
// true in the original implementation; callers pass it explicitly here.
func NewRuleFromFunction(id ruleid.ID, deps ruleid.Set, st status.Status, pred Predicate, onlyMisleading bool) *RuleFromFunction {
	return &RuleFromFunction{base: base{id: id, deps: deps}, Status: st, Predicate: pred, OnlyMisleading: onlyMisleading}
}

func (r *RuleFromFunction) Score(notes *notestats.Table, _ *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	var updates notestats.Updates
	for _, row := range notes.Rows() {
		if !r.Predicate(row) {
			continue
		}
		// Inequality with SAYS_NOT_MISLEADING (not equality with
		// SAYS_MISLEADING) so notes whose classification is MISSING
		// (deleted notes) are still included.
		if r.OnlyMisleading && row.Classification == status.SaysNotMisleading {
			continue
		}
		updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: r.Status})
	}
	return updates, nil, nil
}

// NmToCRNH is a specialization the original roster keeps as its own rule
// kind (NmCRNH): notes on non-misleading tweets with a low intercept become
// CRNH. Unlike RuleFromFunction's OnlyMisleading flag, this uses strict
// equality against SAYS_NOT_MISLEADING, so MISSING (deleted) notes are
// excluded rather than included.
type NmToCRNH struct {
	base
	Status                    status.Status
	CrnhThresholdNMIntercept float64
}

func NewNmToCRNH(id ruleid.ID, deps ruleid.Set, st status.Status, threshold float64) *NmToCRNH {
	return &NmToCRNH{base: base{id: id, deps: deps}, Status: st, CrnhThresholdNMIntercept: threshold}
}

func (r *NmToCRNH) Score(notes *notestats.Table, _ *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	var updates notestats.Updates
	for _, row := range notes.Rows() {
		intercept, ok := row.InternalNoteIntercept.Get()
		if !ok || intercept >= r.CrnhThresholdNMIntercept {
			continue
		}
		if row.Classification != status.SaysNotMisleading {
			continue
		}
		updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: r.Status})
	}
	return updates, nil, nil
}
