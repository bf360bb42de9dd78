package rules

import (
	"notescore/internal/notestats"
	"notescore/internal/ruleid"
	"notescore/internal/status"
)

// NmrDueToMinStableCrhTime requires a note to be stably CRH for a minimum
// number of minutes before its label reports CRH, using a per-note
// timestamp threaded between scoring runs. It is the one rule permitted to
// emit extras for notes whose status was not changed, per its bookkeeping
// contract.
type NmrDueToMinStableCrhTime struct {
	base
	RequiredStableCrhMinutes int
	Now                      int64 // epoch millis, injected for determinism/testability
}

func NewNmrDueToMinStableCrhTime(id ruleid.ID, deps ruleid.Set, requiredMinutes int, now int64) *NmrDueToMinStableCrhTime {
	return &NmrDueToMinStableCrhTime{base: base{id: id, deps: deps}, RequiredStableCrhMinutes: requiredMinutes, Now: now}
}

func (r *NmrDueToMinStableCrhTime) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	thresholdMillis := int64(r.RequiredStableCrhMinutes) * 60 * 1000
	// Notes already CRH from the previous run bypass hysteresis entirely.
	candidates := notes.Filter(func(row notestats.NoteRow) bool {
		cur, ok := row.CurrentLabel.Get()
		return !ok || cur != status.CRH
	})

	var updates notestats.Updates
	extras := make(notestats.Extras)
	for _, row := range candidates.Rows() {
		statusNow, ok := labels.Get(row.NoteID)
		if !ok {
			continue
		}
		tRaw, hasT := row.TimestampMillisOfNmrDueToMinStableCrhTime.Get()
		hasPositiveT := hasT && tRaw > 0

		considered := statusNow == status.CRH || hasPositiveT
		if !considered {
			continue
		}

		var newT int64
		statusChanged := false
		var newStatus status.Status

		switch {
		case statusNow == status.CRH && !hasPositiveT:
			newStatus, newT, statusChanged = status.NMR, r.Now, true
		case statusNow == status.CRH && hasPositiveT && r.Now-tRaw >= thresholdMillis:
			newStatus, newT, statusChanged = status.CRH, -1, false
		case statusNow == status.CRH && hasPositiveT:
			newStatus, newT, statusChanged = status.NMR, tRaw, true
		case statusNow != status.CRH && hasPositiveT:
			newT, statusChanged = -1, false
			newStatus = statusNow
		default:
			newT, statusChanged = tRaw, false
			newStatus = statusNow
		}

		extras[row.NoteID] = notestats.ExtraRow{"updatedTimestampMillisOfNmrDueToMinStableCrhTime": newT}
		if statusChanged && statusNow == status.CRH && newStatus == status.NMR {
			updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: status.NMR})
		}
	}
	return updates, extras, nil
}
