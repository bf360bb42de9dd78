package rules

import (
	"notescore/internal/notestats"
	"notescore/internal/rerr"
	"notescore/internal/ruleid"
	"notescore/internal/status"
)

// ColumnFilter is an equality filter applied before propagation: only notes
// where Get(row) == Value survive.
type ColumnFilter struct {
	Get   func(notestats.NoteRow) status.Status
	Value status.Status
}

// ApplyModelResult propagates a status already computed by an upstream
// model (core/expansion/group/topic scorer) into the shared status column,
// subject to an optional firm-reject guard and optional equality filters.
type ApplyModelResult struct {
	base
	// Source reads the per-note status to propagate; returns ok=false for
	// notes with no result from this source (the Optional "is NaN" case).
	Source          func(notestats.NoteRow) (status.Status, bool)
	CheckFirmReject bool
	Filters         []ColumnFilter
}

func NewApplyModelResult(id ruleid.ID, deps ruleid.Set, source func(notestats.NoteRow) (status.Status, bool), checkFirmReject bool, filters []ColumnFilter) *ApplyModelResult {
	return &ApplyModelResult{base: base{id: id, deps: deps}, Source: source, CheckFirmReject: checkFirmReject, Filters: filters}
}

// blockedByCoreOrExpansion implements the shared "CRH blocked by a stronger
// model's firm reject or CRNH" predicate used by both ApplyModelResult and
// ApplyGroupModelResult.
func blockedByCoreOrExpansion(row notestats.NoteRow) bool {
	coreReject := false
	if core, ok := row.CoreRatingStatus.Get(); ok {
		coreReject = core == status.FirmReject || core == status.CRNH
	}
	expansionReject := false
	if expansion, ok := row.ExpansionRatingStatus.Get(); ok {
		expansionReject = expansion == status.FirmReject || expansion == status.CRNH
	}
	_, coreKnown := row.CoreRatingStatus.Get()
	if coreKnown {
		return coreReject
	}
	return expansionReject
}

func (r *ApplyModelResult) Score(notes *notestats.Table, _ *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	var updates notestats.Updates
	for _, row := range notes.Rows() {
		src, ok := r.Source(row)
		if !ok {
			continue
		}
		if r.CheckFirmReject && src == status.CRH && blockedByCoreOrExpansion(row) {
			continue
		}
		if !passesFilters(row, r.Filters) {
			continue
		}
		out := src
		if out == status.FirmReject {
			out = status.NMR
		}
		if out != status.CRH && out != status.CRNH && out != status.NMR {
			return nil, nil, rerr.DomainErrorf(r.id, "status must be CRH, CRNH or NMR after propagation, got %s", out)
		}
		updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: out})
	}
	return updates, nil, nil
}

func passesFilters(row notestats.NoteRow, filters []ColumnFilter) bool {
	for _, f := range filters {
		if f.Get(row) != f.Value {
			return false
		}
	}
	return true
}
