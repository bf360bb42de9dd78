// Package engine drives an ordered list of scoring rules over a note-stats
// table to produce a final, fully attributed status per note.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"notescore/internal/logging"
	"notescore/internal/notestats"
	"notescore/internal/rerr"
	"notescore/internal/ruleid"
	"notescore/internal/rules"
	"notescore/internal/status"
)

// Options names the output columns the driver produces, mirroring the
// conceptual applyScoringRules(noteStats, rules, statusColumn, ruleColumn,
// decidedByColumn?) entry point.
type Options struct {
	StatusColumn    string
	RuleColumn      string
	DecidedByColumn string // empty means the caller did not request it
}

// ScoredNote is one note's final, fully attributed scoring result.
type ScoredNote struct {
	Note      notestats.NoteRow
	Status    status.Status
	Rules     string
	DecidedBy string
	Extras    notestats.ExtraRow

	CurrentlyRatedHelpfulBool    bool
	CurrentlyRatedNotHelpfulBool bool
	AwaitingMoreRatingsBool      bool
}

// Validate checks a rule list's dependency ordering and uniqueness without
// scoring any notes, backing the CLI's `validate` subcommand.
func Validate(ruleList []rules.Rule) error {
	applied := ruleid.Set{}
	for _, r := range ruleList {
		if missing := applied.Missing(r.Dependencies()); len(missing) > 0 {
			return rerr.DependencyViolationf(r.ID(), missing)
		}
		if applied.Contains(r.ID()) {
			return rerr.DuplicateRulef(r.ID())
		}
		applied[r.ID()] = struct{}{}
	}
	return nil
}

// Run applies ruleList to notes in order and returns the final scored
// table. ctx is checked once per rule boundary (never mid-rule), per the
// core's single-threaded determinism guarantee.
func Run(ctx context.Context, log *logging.Logger, notes *notestats.Table, ruleList []rules.Rule, opts Options) ([]ScoredNote, error) {
	runID := uuid.NewString()
	scoringLog := log.For(logging.CategoryScoring).With("runId", runID)
	scoringLog.Infow("scoring run started", "rules", len(ruleList), "notes", notes.Len())

	noteLabels := notestats.NewLabels()
	attribution := make(map[notestats.NoteID][]string)
	noteColumns := make(notestats.Extras)
	applied := ruleid.Set{}

	for _, r := range ruleList {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scoring run cancelled before rule %s: %w", ruleid.Name(r.ID()), err)
		}

		if missing := applied.Missing(r.Dependencies()); len(missing) > 0 {
			return nil, rerr.DependencyViolationf(r.ID(), missing)
		}
		if applied.Contains(r.ID()) {
			return nil, rerr.DuplicateRulef(r.ID())
		}
		applied[r.ID()] = struct{}{}

		ruleName := ruleid.Name(r.ID())
		timer := log.StartTimer(logging.CategoryScoring, ruleName)
		updates, extras, err := r.Score(notes, noteLabels, opts.StatusColumn)
		elapsed := timer.Stop()
		scoringLog.Infow("rule applied", "rule", ruleName, "updates", len(updates), "elapsedMs", elapsed.Milliseconds())
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", ruleName, err)
		}

		seen := make(map[notestats.NoteID]struct{}, len(updates))
		for _, u := range updates {
			if _, dup := seen[u.NoteID]; dup {
				return nil, rerr.InvariantViolationNotef(r.ID(), u.NoteID, "rule output contains duplicate NoteId")
			}
			seen[u.NoteID] = struct{}{}
		}

		if extras != nil && r.ID() != ruleid.NmrDueToMinStableCrhTime {
			updateIDs := updates.IDSet()
			extraIDs := extras.IDSet()
			if !sameIDSet(updateIDs, extraIDs) {
				return nil, rerr.InvariantViolationf(r.ID(), "updates NoteId set and extras NoteId set diverge")
			}
		}

		for _, u := range updates {
			noteLabels.Upsert(u.NoteID, u.Status)
			attribution[u.NoteID] = append(attribution[u.NoteID], ruleName)
		}

		for id, row := range extras {
			existing, ok := noteColumns[id]
			if !ok {
				existing = notestats.ExtraRow{}
			}
			for k, v := range row {
				existing[k] = v
			}
			noteColumns[id] = existing
		}
	}

	finalizeTimer := log.StartTimer(logging.CategoryScoring, "finalize")
	defer finalizeTimer.Stop()

	inputIDs := notes.IDSet()
	labelIDs := noteLabels.IDSet()
	if !sameIDSet(inputIDs, labelIDs) {
		return nil, rerr.InvariantViolationf(ruleid.Unknown, "input NoteId set and assigned-label NoteId set diverge; every note must receive a default status")
	}
	attributionIDs := make(map[notestats.NoteID]struct{}, len(attribution))
	for id := range attribution {
		attributionIDs[id] = struct{}{}
	}
	if !sameIDSet(inputIDs, attributionIDs) {
		return nil, rerr.InvariantViolationf(ruleid.Unknown, "input NoteId set and rule-attribution NoteId set diverge")
	}
	for id := range noteColumns {
		if _, ok := inputIDs[id]; !ok {
			return nil, rerr.InvariantViolationf(ruleid.Unknown, "extras column set is not a subset of input NoteIds")
		}
	}

	out := make([]ScoredNote, 0, notes.Len())
	for _, id := range notes.NoteIDs() {
		row, _ := notes.Row(id)
		st, _ := noteLabels.Get(id)
		if st == status.FirmReject {
			st = status.NMR
		}
		if st != status.CRH && st != status.CRNH && st != status.NMR {
			return nil, rerr.InvariantViolationNotef(ruleid.Unknown, id, "final status %s is outside {CRH, CRNH, NMR}", st)
		}

		ruleNames := attribution[id]
		decidedBy := ""
		if opts.DecidedByColumn != "" && len(ruleNames) > 0 {
			decidedBy = ruleNames[len(ruleNames)-1]
		}

		out = append(out, ScoredNote{
			Note:                         row,
			Status:                       st,
			Rules:                        strings.Join(ruleNames, ","),
			DecidedBy:                    decidedBy,
			Extras:                       noteColumns[id],
			CurrentlyRatedHelpfulBool:    st == status.CRH,
			CurrentlyRatedNotHelpfulBool: st == status.CRNH,
			AwaitingMoreRatingsBool:      st == status.NMR,
		})
	}
	scoringLog.Infow("scoring run completed", "notes", len(out))
	return out, nil
}

func sameIDSet(a, b map[notestats.NoteID]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
