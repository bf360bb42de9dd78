package rules_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"notescore/internal/notestats"
	"notescore/internal/ruleid"
	"notescore/internal/rules"
	"notescore/internal/status"
)

// TestMain verifies no goroutine leaks past test completion, in particular
// from FilterTagOutliers's errgroup-based per-tag fan-out.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func labelsWith(pairs map[notestats.NoteID]status.Status) *notestats.Labels {
	l := notestats.NewLabels()
	for id, s := range pairs {
		l.Upsert(id, s)
	}
	return l
}

func TestNmToCRNHStrictEqualityExcludesMissing(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{
		{NoteID: 1, InternalNoteIntercept: notestats.Some(-0.5), Classification: status.SaysNotMisleading},
		{NoteID: 2, InternalNoteIntercept: notestats.Some(-0.5), Classification: status.ClassificationMissing},
	})
	rule := rules.NewNmToCRNH(ruleid.NmCRNH, nil, status.CRNH, 0.0)
	updates, extras, err := rule.Score(notes, notestats.NewLabels(), "")
	require.NoError(t, err)
	require.Nil(t, extras)
	require.Len(t, updates, 1)
	require.Equal(t, notestats.NoteID(1), updates[0].NoteID)
}

func TestFilterLargeFactorOnlyTouchesCRH(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{
		{NoteID: 1, InternalNoteFactor1: notestats.Some(2.0)},
		{NoteID: 2, InternalNoteFactor1: notestats.Some(2.0)},
	})
	labels := labelsWith(map[notestats.NoteID]status.Status{1: status.CRH, 2: status.NMR})
	rule := rules.NewFilterLargeFactor(ruleid.LargeFactor, nil, status.NMR, 1.0)
	updates, _, err := rule.Score(notes, labels, "")
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, notestats.NoteID(1), updates[0].NoteID)
}

func TestRejectLowInterceptExcludesCRNH(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{
		{NoteID: 1, InternalNoteIntercept: notestats.Some(-1.0)},
		{NoteID: 2, InternalNoteIntercept: notestats.Some(-1.0)},
	})
	labels := labelsWith(map[notestats.NoteID]status.Status{1: status.NMR, 2: status.CRNH})
	rule := rules.NewRejectLowIntercept(ruleid.LowIntercept, nil, status.FirmReject, 0.0)
	updates, _, err := rule.Score(notes, labels, "")
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, notestats.NoteID(1), updates[0].NoteID)
	require.Equal(t, status.FirmReject, updates[0].Status)
}

func TestApplyGroupModelResultPrefersCoreOverExpansion(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{
		{
			NoteID:                 1,
			GroupRatingStatus:      notestats.Some(status.CRH),
			ModelingGroup:          notestats.Some(3),
			CoreNoteIntercept:      notestats.Some(0.1), // below threshold: core says false
			ExpansionNoteIntercept: notestats.Some(0.9), // above threshold: expansion says true
		},
	})
	labels := labelsWith(map[notestats.NoteID]status.Status{1: status.NMR})
	rule := rules.NewApplyGroupModelResult(ruleid.GroupModel03, nil, 3, 0.3, notestats.None[float64](), notestats.None[float64]())
	updates, _, err := rule.Score(notes, labels, "")
	require.NoError(t, err)
	// core is non-missing and evaluates false, so the rule must not fall
	// through to expansion even though expansion alone would pass.
	require.Empty(t, updates)
}

func TestApplyGroupModelResultFallsBackToExpansionWhenCoreMissing(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{
		{
			NoteID:                 1,
			GroupRatingStatus:      notestats.Some(status.CRH),
			ModelingGroup:          notestats.Some(3),
			ExpansionNoteIntercept: notestats.Some(0.9),
		},
	})
	labels := labelsWith(map[notestats.NoteID]status.Status{1: status.NMR})
	rule := rules.NewApplyGroupModelResult(ruleid.GroupModel03, nil, 3, 0.3, notestats.None[float64](), notestats.None[float64]())
	updates, _, err := rule.Score(notes, labels, "")
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, status.CRH, updates[0].Status)
}

func TestInsufficientExplanationSwappedArgumentOrder(t *testing.T) {
	// CRH branch calls topTwoTags with minTagsNeededForStatus as the
	// per-tag qualifying threshold (the swapped argument order), so a tag
	// needs count >= minTagsNeededForStatus(2) to qualify at all. Here it
	// qualifies as the sole tag, which is still fewer than the 2 tags
	// required for CRH, so the note is demoted.
	notes := notestats.NewTable([]notestats.NoteRow{
		{
			NoteID:          1,
			HelpfulTagCount: map[string]notestats.Optional[int]{"helpfulClear": notestats.Some(3)},
		},
	})
	labels := labelsWith(map[notestats.NoteID]status.Status{1: status.CRH})
	rule := rules.NewInsufficientExplanation(ruleid.InsufficientExplanation, nil, status.NMR, 1, 2, nil)
	updates, extras, err := rule.Score(notes, labels, "")
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, status.NMR, updates[0].Status)
	require.Equal(t, "helpfulClear", extras[1]["firstTag"])
}

func TestAddCRHInertiaRejectsExceedingExpectedMax(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{
		{
			NoteID:                1,
			NumRatings:            notestats.Some(10),
			InternalNoteIntercept: notestats.Some(5.0),
			CurrentLabel:          notestats.Some(status.CRH),
			Classification:        status.SaysMisleading,
		},
	})
	labels := labelsWith(map[notestats.NoteID]status.Status{1: status.NMR})
	rule := rules.NewAddCRHInertia(ruleid.GeneralCRHInertia, nil, 5, 0.3, 1.0)
	_, _, err := rule.Score(notes, labels, "")
	require.Error(t, err)
}

func TestAddCRHInertiaPromotesQualifyingNote(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{
		{
			NoteID:                1,
			NumRatings:            notestats.Some(10),
			InternalNoteIntercept: notestats.Some(0.5),
			CurrentLabel:          notestats.Some(status.CRH),
			Classification:        status.SaysMisleading,
		},
	})
	labels := labelsWith(map[notestats.NoteID]status.Status{1: status.NMR})
	rule := rules.NewAddCRHInertia(ruleid.GeneralCRHInertia, nil, 5, 0.3, 1.0)
	updates, _, err := rule.Score(notes, labels, "")
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, status.CRH, updates[0].Status)
}

func TestAddCRHInertiaSkipsNoteAlreadyCRHInCurrentRun(t *testing.T) {
	// A note already promoted to CRH earlier in the same run (e.g. by
	// ApplyGroupModelResult) must not be re-selected here: that would
	// append a redundant duplicate update and a spurious attribution
	// entry that could wrongly become the decided-by rule.
	notes := notestats.NewTable([]notestats.NoteRow{
		{
			NoteID:                1,
			NumRatings:            notestats.Some(10),
			InternalNoteIntercept: notestats.Some(0.5),
			CurrentLabel:          notestats.Some(status.CRH),
			Classification:        status.SaysMisleading,
		},
	})
	labels := labelsWith(map[notestats.NoteID]status.Status{1: status.CRH})
	rule := rules.NewAddCRHInertia(ruleid.GeneralCRHInertia, nil, 5, 0.3, 1.0)
	updates, _, err := rule.Score(notes, labels, "")
	require.NoError(t, err)
	require.Empty(t, updates)
}
