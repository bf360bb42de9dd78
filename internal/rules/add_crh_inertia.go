package rules

import (
	"notescore/internal/notestats"
	"notescore/internal/rerr"
	"notescore/internal/ruleid"
	"notescore/internal/status"
)

// AddCRHInertia promotes notes that were CRH in the previous run and still
// clear a relaxed bar back to CRH, preventing otherwise-stable notes from
// flickering status run to run on marginal intercept movement.
type AddCRHInertia struct {
	base
	MinRatingsNeeded        int
	InterceptThreshold      float64
	ExpectedMaxIntercept    float64
}

func NewAddCRHInertia(id ruleid.ID, deps ruleid.Set, minRatingsNeeded int, interceptThreshold, expectedMax float64) *AddCRHInertia {
	return &AddCRHInertia{base: base{id: id, deps: deps}, MinRatingsNeeded: minRatingsNeeded, InterceptThreshold: interceptThreshold, ExpectedMaxIntercept: expectedMax}
}

func (r *AddCRHInertia) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	candidates := candidatesExcluding(notes, labels, status.CRH).Filter(func(row notestats.NoteRow) bool {
		numRatings, ok := row.NumRatings.Get()
		if !ok || numRatings < r.MinRatingsNeeded {
			return false
		}
		intercept, ok := row.InternalNoteIntercept.Get()
		if !ok || intercept < r.InterceptThreshold {
			return false
		}
		prevLabel, ok := row.CurrentLabel.Get()
		if !ok || prevLabel != status.CRH {
			return false
		}
		return row.Classification != status.SaysNotMisleading
	})

	var updates notestats.Updates
	for _, row := range candidates.Rows() {
		if intercept, ok := row.InternalNoteIntercept.Get(); ok && intercept > r.ExpectedMaxIntercept {
			return nil, nil, rerr.InvariantViolationNotef(r.id, row.NoteID, "internalNoteIntercept %f exceeds expectedMax %f for a note selected by AddCRHInertia", intercept, r.ExpectedMaxIntercept)
		}
		updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: status.CRH})
	}
	return updates, nil, nil
}
