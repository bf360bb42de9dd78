package rules

import (
	"notescore/internal/notestats"
	"notescore/internal/ruleid"
)

// ScoringDriftGuard re-asserts a note's externally locked status whenever
// the rest of the pipeline has drifted away from it, recording the
// pre-override status so operators can see what the lock overrode.
type ScoringDriftGuard struct {
	base
	Locked notestats.LockedStatus
}

func NewScoringDriftGuard(id ruleid.ID, deps ruleid.Set, locked notestats.LockedStatus) *ScoringDriftGuard {
	return &ScoringDriftGuard{base: base{id: id, deps: deps}, Locked: locked}
}

func (r *ScoringDriftGuard) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	var updates notestats.Updates
	extras := make(notestats.Extras)
	for id, lockedStatus := range r.Locked {
		if _, ok := notes.Row(id); !ok {
			continue
		}
		current, ok := labels.Get(id)
		if !ok || current == lockedStatus {
			continue
		}
		updates = append(updates, notestats.Update{NoteID: id, Status: lockedStatus})
		extras[id] = notestats.ExtraRow{"unlockedRatingStatus": current.String()}
	}
	return updates, extras, nil
}
