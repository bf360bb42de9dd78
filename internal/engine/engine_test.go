package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"notescore/internal/engine"
	"notescore/internal/logging"
	"notescore/internal/notestats"
	"notescore/internal/ruleid"
	"notescore/internal/rules"
	"notescore/internal/status"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.New(logging.Config{})
	require.NoError(t, err)
	return log
}

func opts() engine.Options {
	return engine.Options{StatusColumn: "finalRatingStatus", RuleColumn: "ratingStatusExplanationKeys", DecidedByColumn: "decidedBy"}
}

func TestS1DefaultOnly(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{{NoteID: 1}, {NoteID: 2}, {NoteID: 3}})
	ruleList := []rules.Rule{rules.NewDefaultRule(ruleid.InitialNMR, nil, status.NMR)}

	out, err := engine.Run(context.Background(), testLogger(t), notes, ruleList, opts())
	require.NoError(t, err)
	require.Len(t, out, 3)
	for _, sn := range out {
		require.Equal(t, status.NMR, sn.Status)
		require.Equal(t, "InitialNMR (v1.0)", sn.Rules)
		require.False(t, sn.CurrentlyRatedHelpfulBool)
		require.False(t, sn.CurrentlyRatedNotHelpfulBool)
		require.True(t, sn.AwaitingMoreRatingsBool)
	}
}

func TestS2PredicatePromotion(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{
		{NoteID: 1, InternalNoteIntercept: notestats.Some(0.5), Classification: status.SaysMisleading},
		{NoteID: 2, InternalNoteIntercept: notestats.Some(0.5), Classification: status.SaysNotMisleading},
	})
	ruleList := []rules.Rule{
		rules.NewDefaultRule(ruleid.InitialNMR, nil, status.NMR),
		rules.NewRuleFromFunction(ruleid.GeneralCRH, ruleid.NewSet(ruleid.InitialNMR), status.CRH, func(row notestats.NoteRow) bool {
			v, ok := row.InternalNoteIntercept.Get()
			return ok && v > 0.4
		}, true),
	}

	out, err := engine.Run(context.Background(), testLogger(t), notes, ruleList, opts())
	require.NoError(t, err)
	byID := map[notestats.NoteID]engine.ScoredNote{}
	for _, sn := range out {
		byID[sn.Note.NoteID] = sn
	}

	want := map[notestats.NoteID]engine.ScoredNote{
		1: {
			Note:                      notes.Rows()[0],
			Status:                    status.CRH,
			Rules:                     "InitialNMR (v1.0),GeneralCRH (v1.0)",
			DecidedBy:                 "GeneralCRH (v1.0)",
			CurrentlyRatedHelpfulBool: true,
		},
		2: {
			Note:                    notes.Rows()[1],
			Status:                  status.NMR,
			Rules:                   "InitialNMR (v1.0)",
			DecidedBy:               "InitialNMR (v1.0)",
			AwaitingMoreRatingsBool: true,
		},
	}
	if diff := cmp.Diff(want, byID); diff != "" {
		t.Errorf("scored notes mismatch (-want +got):\n%s", diff)
	}
}

func TestS3TagOutlierOverridesCRH(t *testing.T) {
	tag := "notHelpfulArgumentativeOrBiased"
	notes := notestats.NewTable([]notestats.NoteRow{
		{
			NoteID:                1,
			InternalNoteIntercept: notestats.Some(0.5),
			Classification:        status.SaysMisleading,
			TagAdjusted:           map[string]notestats.Optional[float64]{tag: notestats.Some(3.0)},
			TagAdjustedRatio:      map[string]notestats.Optional[float64]{tag: notestats.Some(0.9)},
		},
	})
	ruleList := []rules.Rule{
		rules.NewDefaultRule(ruleid.InitialNMR, nil, status.NMR),
		rules.NewRuleFromFunction(ruleid.GeneralCRH, ruleid.NewSet(ruleid.InitialNMR), status.CRH, func(row notestats.NoteRow) bool {
			v, ok := row.InternalNoteIntercept.Get()
			return ok && v > 0.4
		}, true),
		rules.NewFilterTagOutliers(ruleid.TagOutlier, ruleid.NewSet(ruleid.GeneralCRH), status.NMR, map[string]float64{tag: 0.8}, 2.5),
	}

	out, err := engine.Run(context.Background(), testLogger(t), notes, ruleList, opts())
	require.NoError(t, err)
	require.Len(t, out, 1)
	sn := out[0]
	require.Equal(t, status.NMR, sn.Status)
	require.Equal(t, tag, sn.Extras["activeFilterTags"])
	require.Contains(t, sn.Rules, "GeneralCRH")
	require.Contains(t, sn.Rules, "TagFilter")
	require.Equal(t, "TagFilter (v1.0)", sn.DecidedBy)
}

func TestS4FirmRejectIsHidden(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{
		{NoteID: 1, InternalNoteIntercept: notestats.Some(-1.0)},
	})
	ruleList := []rules.Rule{
		rules.NewDefaultRule(ruleid.InitialNMR, nil, status.NMR),
		rules.NewRejectLowIntercept(ruleid.LowIntercept, ruleid.NewSet(ruleid.InitialNMR), status.FirmReject, 0.0),
		rules.NewApplyModelResult(ruleid.CoreModel, ruleid.NewSet(ruleid.LowIntercept), func(row notestats.NoteRow) (status.Status, bool) {
			return status.FirmReject, true
		}, false, nil),
	}

	out, err := engine.Run(context.Background(), testLogger(t), notes, ruleList, opts())
	require.NoError(t, err)
	require.Equal(t, status.NMR, out[0].Status)
}

func TestS5HysteresisFirstObservation(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{
		{NoteID: 1, CurrentLabel: notestats.Some(status.NMR)},
	})
	labels := notestats.NewLabels()
	labels.Upsert(1, status.CRH)
	rule := rules.NewNmrDueToMinStableCrhTime(ruleid.NmrDueToMinStableCrhTime, nil, 30, 1_000_000)
	updates, extras, err := rule.Score(notes, labels, "")
	require.NoError(t, err)
	require.Equal(t, status.NMR, updates[0].Status)
	require.Equal(t, int64(1_000_000), extras[1]["updatedTimestampMillisOfNmrDueToMinStableCrhTime"])
}

func TestS6HysteresisMatured(t *testing.T) {
	threshold := int64(30) * 60 * 1000
	notes := notestats.NewTable([]notestats.NoteRow{
		{NoteID: 1, CurrentLabel: notestats.Some(status.NMR), TimestampMillisOfNmrDueToMinStableCrhTime: notestats.Some(int64(1_000_000))},
	})
	labels := notestats.NewLabels()
	labels.Upsert(1, status.CRH)
	rule := rules.NewNmrDueToMinStableCrhTime(ruleid.NmrDueToMinStableCrhTime, nil, 30, 1_000_000+threshold)
	updates, extras, err := rule.Score(notes, labels, "")
	require.NoError(t, err)
	require.Empty(t, updates)
	require.Equal(t, int64(-1), extras[1]["updatedTimestampMillisOfNmrDueToMinStableCrhTime"])
}

func TestS7DriftGuard(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{{NoteID: 5}})
	ruleList := []rules.Rule{
		rules.NewDefaultRule(ruleid.InitialNMR, nil, status.NMR),
		rules.NewScoringDriftGuard(ruleid.ScoringDriftGuard, ruleid.NewSet(ruleid.InitialNMR), notestats.LockedStatus{5: status.CRH}),
	}

	out, err := engine.Run(context.Background(), testLogger(t), notes, ruleList, opts())
	require.NoError(t, err)
	require.Equal(t, status.CRH, out[0].Status)
	require.Equal(t, "NMR", out[0].Extras["unlockedRatingStatus"])
	require.True(t, strings.Contains(out[0].Rules, "ScoringDriftGuard"))
}

func TestDependencyViolationIsFatal(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{{NoteID: 1}})
	ruleList := []rules.Rule{
		rules.NewRuleFromFunction(ruleid.GeneralCRH, ruleid.NewSet(ruleid.InitialNMR), status.CRH, func(notestats.NoteRow) bool { return true }, false),
	}
	_, err := engine.Run(context.Background(), testLogger(t), notes, ruleList, opts())
	require.Error(t, err)
}

func TestDuplicateRuleIsFatal(t *testing.T) {
	notes := notestats.NewTable([]notestats.NoteRow{{NoteID: 1}})
	ruleList := []rules.Rule{
		rules.NewDefaultRule(ruleid.InitialNMR, nil, status.NMR),
		rules.NewDefaultRule(ruleid.InitialNMR, nil, status.NMR),
	}
	_, err := engine.Run(context.Background(), testLogger(t), notes, ruleList, opts())
	require.Error(t, err)
}
