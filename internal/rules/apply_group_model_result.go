package rules

import (
	"notescore/internal/notestats"
	"notescore/internal/ruleid"
	"notescore/internal/status"
)

// ApplyGroupModelResult lets a per-group model expand CRH coverage without
// overriding a stronger (core/expansion) model's decision, subject to
// safeguard thresholds on whichever of core/expansion has an intercept.
type ApplyGroupModelResult struct {
	base
	GroupNumber           int
	MinSafeguardThreshold float64
	CoreCrhThreshold      notestats.Optional[float64]
	ExpansionCrhThreshold notestats.Optional[float64]
}

func NewApplyGroupModelResult(id ruleid.ID, deps ruleid.Set, groupNumber int, minSafeguard float64, coreCrh, expansionCrh notestats.Optional[float64]) *ApplyGroupModelResult {
	return &ApplyGroupModelResult{base: base{id: id, deps: deps}, GroupNumber: groupNumber, MinSafeguardThreshold: minSafeguard, CoreCrhThreshold: coreCrh, ExpansionCrhThreshold: expansionCrh}
}

// triState mirrors the original implementation's core/expansion columns,
// which are genuinely nullable booleans: missing when the corresponding
// intercept itself is missing.
type triState int

const (
	triMissing triState = iota
	triFalse
	triTrue
)

func (r *ApplyGroupModelResult) evalSide(intercept notestats.Optional[float64], ceiling notestats.Optional[float64]) triState {
	v, ok := intercept.Get()
	if !ok {
		return triMissing
	}
	pass := v > r.MinSafeguardThreshold
	if max, hasCeiling := ceiling.Get(); hasCeiling {
		pass = pass && v < max
	}
	if pass {
		return triTrue
	}
	return triFalse
}

func (r *ApplyGroupModelResult) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	eligible := notes.Filter(func(row notestats.NoteRow) bool {
		if blockedByCoreOrExpansion(row) {
			return false
		}
		group, ok := row.GroupRatingStatus.Get()
		if !ok || group != status.CRH {
			return false
		}
		modelGroup, ok := row.ModelingGroup.Get()
		if !ok || modelGroup != r.GroupNumber {
			return false
		}
		cur, ok := labels.Get(row.NoteID)
		return ok && cur == status.NMR
	})

	var updates notestats.Updates
	for _, row := range eligible.Rows() {
		core := r.evalSide(row.CoreNoteIntercept, r.CoreCrhThreshold)
		expansion := r.evalSide(row.ExpansionNoteIntercept, r.ExpansionCrhThreshold)
		// Prefer core over expansion: actionable iff the first
		// non-missing of (core, expansion) is true.
		actionable := false
		if core != triMissing {
			actionable = core == triTrue
		} else if expansion != triMissing {
			actionable = expansion == triTrue
		}
		if actionable {
			updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: status.CRH})
		}
	}
	return updates, nil, nil
}

// ApplyTopicModelResult demotes currently-CRH notes scored by a narrower
// topic model back to NMR when the topic model lacks confidence in them.
type ApplyTopicModelResult struct {
	base
	Topic                       string
	TopicNMRInterceptThreshold float64
	TopicNMRFactorThreshold    float64
}

func NewApplyTopicModelResult(id ruleid.ID, deps ruleid.Set, topic string, interceptThreshold, factorThreshold float64) *ApplyTopicModelResult {
	return &ApplyTopicModelResult{base: base{id: id, deps: deps}, Topic: topic, TopicNMRInterceptThreshold: interceptThreshold, TopicNMRFactorThreshold: factorThreshold}
}

func (r *ApplyTopicModelResult) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	currentCRH := candidatesWithStatus(notes, labels, status.CRH)
	var updates notestats.Updates
	for _, row := range currentCRH.Rows() {
		topic, ok := row.NoteTopic.Get()
		if !ok || topic != r.Topic {
			continue
		}
		confident, ok := row.TopicNoteConfident.Get()
		if !ok || !confident {
			continue
		}
		intercept, hasIntercept := row.TopicNoteIntercept.Get()
		factor, hasFactor := row.TopicNoteFactor1.Get()
		low := hasIntercept && intercept < r.TopicNMRInterceptThreshold
		extreme := hasFactor && abs(factor) > r.TopicNMRFactorThreshold
		if low || extreme {
			updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: status.NMR})
		}
	}
	return updates, nil, nil
}
