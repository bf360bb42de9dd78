package rules

import (
	"notescore/internal/notestats"
	"notescore/internal/ruleid"
	"notescore/internal/status"
)

// candidatesExcluding returns the notes currently NOT at excluded status,
// mirroring the original implementation's habit of excluding CRNH notes
// before filter rules run (CRNH has stronger downstream effects, so filter
// rules must not overwrite it).
func candidatesExcluding(notes *notestats.Table, labels *notestats.Labels, excluded status.Status) *notestats.Table {
	return notes.Filter(func(row notestats.NoteRow) bool {
		s, ok := labels.Get(row.NoteID)
		return !ok || s != excluded
	})
}

// candidatesWithStatus restricts to notes currently at status s.
func candidatesWithStatus(notes *notestats.Table, labels *notestats.Labels, s status.Status) *notestats.Table {
	return notes.Filter(func(row notestats.NoteRow) bool {
		cur, ok := labels.Get(row.NoteID)
		return ok && cur == s
	})
}

// FilterIncorrect filters CRH-track notes with strong incorrect-tag signal
// from similar-factor raters.
type FilterIncorrect struct {
	base
	Status               status.Status
	TagThreshold         float64
	VoteThreshold        float64
	WeightedTotalVotes   float64
}

func NewFilterIncorrect(id ruleid.ID, deps ruleid.Set, st status.Status, tagThreshold, voteThreshold, weightedTotalVotes float64) *FilterIncorrect {
	return &FilterIncorrect{base: base{id: id, deps: deps}, Status: st, TagThreshold: tagThreshold, VoteThreshold: voteThreshold, WeightedTotalVotes: weightedTotalVotes}
}

func (r *FilterIncorrect) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	candidates := candidatesExcluding(notes, labels, status.CRNH)
	var updates notestats.Updates
	for _, row := range candidates.Rows() {
		incorrect, ok1 := row.NotHelpfulIncorrectInterval.Get()
		voters, ok2 := row.NumVotersInterval.Get()
		tfidf, ok3 := row.TfIdfIncorrectInterval.Get()
		if ok1 && ok2 && ok3 && incorrect >= r.TagThreshold && voters >= r.VoteThreshold && tfidf >= r.WeightedTotalVotes {
			updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: r.Status})
		}
	}
	return updates, nil, nil
}

// FilterLowDiligence filters CRH-track notes with a high low-diligence
// intercept.
type FilterLowDiligence struct {
	base
	Status             status.Status
	InterceptThreshold float64
}

func NewFilterLowDiligence(id ruleid.ID, deps ruleid.Set, st status.Status, interceptThreshold float64) *FilterLowDiligence {
	return &FilterLowDiligence{base: base{id: id, deps: deps}, Status: st, InterceptThreshold: interceptThreshold}
}

func (r *FilterLowDiligence) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	candidates := candidatesExcluding(notes, labels, status.CRNH)
	var updates notestats.Updates
	for _, row := range candidates.Rows() {
		if v, ok := row.LowDiligenceNoteIntercept.Get(); ok && v > r.InterceptThreshold {
			updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: r.Status})
		}
	}
	return updates, nil, nil
}

// FilterLargeFactor filters CRH notes with an especially large factor1,
// positive or negative.
type FilterLargeFactor struct {
	base
	Status          status.Status
	FactorThreshold float64
}

func NewFilterLargeFactor(id ruleid.ID, deps ruleid.Set, st status.Status, factorThreshold float64) *FilterLargeFactor {
	return &FilterLargeFactor{base: base{id: id, deps: deps}, Status: st, FactorThreshold: factorThreshold}
}

func (r *FilterLargeFactor) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	candidates := candidatesWithStatus(notes, labels, status.CRH)
	var updates notestats.Updates
	for _, row := range candidates.Rows() {
		if v, ok := row.InternalNoteFactor1.Get(); ok && abs(v) > r.FactorThreshold {
			updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: r.Status})
		}
	}
	return updates, nil, nil
}

// RejectLowIntercept marks NMR-track notes with a too-low intercept as the
// internal FIRM_REJECT status, blocking later CRH promotion.
type RejectLowIntercept struct {
	base
	Status              status.Status
	FirmRejectThreshold float64
}

func NewRejectLowIntercept(id ruleid.ID, deps ruleid.Set, st status.Status, firmRejectThreshold float64) *RejectLowIntercept {
	return &RejectLowIntercept{base: base{id: id, deps: deps}, Status: st, FirmRejectThreshold: firmRejectThreshold}
}

func (r *RejectLowIntercept) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	candidates := candidatesExcluding(notes, labels, status.CRNH)
	var updates notestats.Updates
	for _, row := range candidates.Rows() {
		if v, ok := row.InternalNoteIntercept.Get(); ok && v < r.FirmRejectThreshold {
			updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: r.Status})
		}
	}
	return updates, nil, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
