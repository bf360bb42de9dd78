package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"notescore/internal/config"
	"notescore/internal/engine"
	"notescore/internal/logging"
	"notescore/internal/notestats"
	"notescore/internal/status"
)

var (
	scoreInput      string
	scoreOutput     string
	scorePipeline   string
	scorePipelineTOML string
	scoreLocked     string
	scoreNowMillis  int64
	scoreDelimiter  string
	scoreStatusCol  string
	scoreRuleCol    string
	scoreDecidedCol string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run the rule pipeline over a note-stats file and write a scored table",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "path to the note-stats CSV/TSV file (required)")
	scoreCmd.Flags().StringVar(&scoreOutput, "output", "", "path to write the scored CSV file (required)")
	scoreCmd.Flags().StringVar(&scorePipeline, "pipeline", "", "path to a YAML rule pipeline file (top-level 'rules' key)")
	scoreCmd.Flags().StringVar(&scorePipelineTOML, "pipeline-toml", "", "path to a TOML rule pipeline file, alternative to --pipeline")
	scoreCmd.Flags().StringVar(&scoreLocked, "locked", "", "optional path to a two-column noteId,status CSV of externally locked statuses")
	scoreCmd.Flags().Int64Var(&scoreNowMillis, "now", 0, "epoch millis used for time-gated rules; 0 means wall-clock time")
	scoreCmd.Flags().StringVar(&scoreDelimiter, "delimiter", ",", "field delimiter for --input (use \"\\t\" for TSV)")
	scoreCmd.Flags().StringVar(&scoreStatusCol, "status-column", "finalRatingStatus", "name of the output status column")
	scoreCmd.Flags().StringVar(&scoreRuleCol, "rule-column", "ratingStatusExplanationKeys", "name of the output rule-attribution column")
	scoreCmd.Flags().StringVar(&scoreDecidedCol, "decided-by-column", "decidedBy", "name of the output decided-by column; empty disables it")
	_ = scoreCmd.MarkFlagRequired("input")
	_ = scoreCmd.MarkFlagRequired("output")
}

func runScore(cmd *cobra.Command, args []string) error {
	ioLog := log.For(logging.CategoryIO)

	spec, err := loadPipelineSpec()
	if err != nil {
		return err
	}

	locked, err := loadLockedStatus(scoreLocked)
	if err != nil {
		return err
	}

	now := scoreNowMillis
	if now == 0 {
		now = time.Now().UnixMilli()
	}

	ruleList, err := config.Build(*spec, config.BuildContext{Now: now, Locked: locked})
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	in, err := os.Open(scoreInput)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	delim := ','
	if scoreDelimiter == "\\t" || scoreDelimiter == "\t" {
		delim = '\t'
	}
	notes, err := readNoteTable(in, delim)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	ioLog.Infow("loaded note-stats table", "notes", notes.Len(), "input", scoreInput)

	if err := cfg.RuleLimits.CheckRuleLimits(ruleList, notes); err != nil {
		return err
	}

	lock := flock.New(scoreOutput + ".lock")
	acquired, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring output lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("another notescore run is writing %s", scoreOutput)
	}
	defer func() { _ = lock.Unlock() }()

	opts := engine.Options{StatusColumn: scoreStatusCol, RuleColumn: scoreRuleCol, DecidedByColumn: scoreDecidedCol}
	scored, err := engine.Run(cmd.Context(), log, notes, ruleList, opts)
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	out, err := os.Create(scoreOutput)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()
	if err := writeScoredTable(out, scored, opts); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	ioLog.Infow("wrote scored table", "notes", len(scored), "output", scoreOutput)
	return nil
}

func loadPipelineSpec() (*config.PipelineSpec, error) {
	switch {
	case scorePipelineTOML != "":
		return config.LoadPipelineTOML(scorePipelineTOML)
	case scorePipeline != "":
		data, err := os.ReadFile(scorePipeline)
		if err != nil {
			return nil, fmt.Errorf("reading pipeline %s: %w", scorePipeline, err)
		}
		var spec config.PipelineSpec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("parsing pipeline %s: %w", scorePipeline, err)
		}
		return &spec, nil
	default:
		return &cfg.Pipeline, nil
	}
}

func loadLockedStatus(path string) (notestats.LockedStatus, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locked statuses %s: %w", path, err)
	}
	locked := make(notestats.LockedStatus)
	for i, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("locked statuses %s: line %d: expected noteId,status", path, i+1)
		}
		noteID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("locked statuses %s: line %d: %w", path, i+1, err)
		}
		st, err := status.ParseStatus(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("locked statuses %s: line %d: %w", path, i+1, err)
		}
		locked[notestats.NoteID(noteID)] = st
	}
	return locked, nil
}
