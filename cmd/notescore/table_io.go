package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"notescore/internal/engine"
	"notescore/internal/notestats"
	"notescore/internal/status"
)

// readNoteTable parses a delimited note-stats file (CSV or TSV, selected by
// delim) into a notestats.Table. Unrecognized headers are ignored; missing
// optional columns simply leave the corresponding field Optional-missing.
// There is no third-party CSV library in the example pack to ground one on,
// so this is built directly on encoding/csv.
func readNoteTable(r io.Reader, delim rune) (*notestats.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("table_io: read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	noteIDCol, ok := col["noteId"]
	if !ok {
		return nil, fmt.Errorf("table_io: input is missing required noteId column")
	}

	var rows []notestats.NoteRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table_io: read row: %w", err)
		}
		noteID, err := strconv.ParseInt(field(rec, noteIDCol), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("table_io: invalid noteId %q: %w", field(rec, noteIDCol), err)
		}

		row := notestats.NoteRow{
			NoteID:                 notestats.NoteID(noteID),
			InternalNoteIntercept:  optFloat(rec, col, "internalNoteIntercept"),
			InternalNoteFactor1:    optFloat(rec, col, "internalNoteFactor1"),
			CoreNoteIntercept:      optFloat(rec, col, "coreNoteIntercept"),
			CoreNoteFactor1:        optFloat(rec, col, "coreNoteFactor1"),
			CoreRatingStatus:       optStatus(rec, col, "coreRatingStatus"),
			ExpansionNoteIntercept: optFloat(rec, col, "expansionNoteIntercept"),
			ExpansionRatingStatus:  optStatus(rec, col, "expansionRatingStatus"),
			GroupRatingStatus:      optStatus(rec, col, "groupRatingStatus"),
			ModelingGroup:          optInt(rec, col, "modelingGroup"),
			TopicNoteIntercept:     optFloat(rec, col, "topicNoteIntercept"),
			TopicNoteFactor1:       optFloat(rec, col, "topicNoteFactor1"),
			TopicNoteConfident:     optBool(rec, col, "topicNoteConfident"),
			NoteTopic:              optString(rec, col, "noteTopic"),
			LowDiligenceNoteIntercept:                  optFloat(rec, col, "lowDiligenceNoteIntercept"),
			Classification:                             classificationOf(rec, col),
			NumRatings:                                 optInt(rec, col, "numRatings"),
			CurrentLabel:                               optStatus(rec, col, "currentLabel"),
			TimestampMillisOfNmrDueToMinStableCrhTime:  optInt64(rec, col, "timestampMillisOfNmrDueToMinStableCrhTime"),
			NotHelpfulIncorrectInterval:                optFloat(rec, col, "notHelpfulIncorrectInterval"),
			NumVotersInterval:                          optFloat(rec, col, "numVotersInterval"),
			TfIdfIncorrectInterval:                      optFloat(rec, col, "tfIdfIncorrectInterval"),
			TagAdjusted:                                make(map[string]notestats.Optional[float64]),
			TagAdjustedRatio:                            make(map[string]notestats.Optional[float64]),
			HelpfulTagCount:                             make(map[string]notestats.Optional[int]),
			NotHelpfulTagCount:                          make(map[string]notestats.Optional[int]),
		}
		for _, tag := range notestats.NotHelpfulTagsOrder {
			row.TagAdjusted[tag] = optFloat(rec, col, notestats.AdjustedColumn(tag))
			row.TagAdjustedRatio[tag] = optFloat(rec, col, notestats.AdjustedRatioColumn(tag))
			row.NotHelpfulTagCount[tag] = optInt(rec, col, tag+"Count")
		}
		for _, tag := range notestats.HelpfulTagsOrder {
			row.HelpfulTagCount[tag] = optInt(rec, col, tag+"Count")
		}
		rows = append(rows, row)
	}
	return notestats.NewTable(rows), nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func cell(rec []string, col map[string]int, name string) (string, bool) {
	i, ok := col[name]
	if !ok {
		return "", false
	}
	v := field(rec, i)
	if v == "" {
		return "", false
	}
	return v, true
}

func optFloat(rec []string, col map[string]int, name string) notestats.Optional[float64] {
	v, ok := cell(rec, col, name)
	if !ok {
		return notestats.None[float64]()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return notestats.None[float64]()
	}
	return notestats.Some(f)
}

func optInt(rec []string, col map[string]int, name string) notestats.Optional[int] {
	v, ok := cell(rec, col, name)
	if !ok {
		return notestats.None[int]()
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return notestats.None[int]()
	}
	return notestats.Some(n)
}

func optInt64(rec []string, col map[string]int, name string) notestats.Optional[int64] {
	v, ok := cell(rec, col, name)
	if !ok {
		return notestats.None[int64]()
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return notestats.None[int64]()
	}
	return notestats.Some(n)
}

func optBool(rec []string, col map[string]int, name string) notestats.Optional[bool] {
	v, ok := cell(rec, col, name)
	if !ok {
		return notestats.None[bool]()
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return notestats.None[bool]()
	}
	return notestats.Some(b)
}

func optString(rec []string, col map[string]int, name string) notestats.Optional[string] {
	v, ok := cell(rec, col, name)
	if !ok {
		return notestats.None[string]()
	}
	return notestats.Some(v)
}

func optStatus(rec []string, col map[string]int, name string) notestats.Optional[status.Status] {
	v, ok := cell(rec, col, name)
	if !ok {
		return notestats.None[status.Status]()
	}
	s, err := status.ParseStatus(v)
	if err != nil {
		return notestats.None[status.Status]()
	}
	return notestats.Some(s)
}

func classificationOf(rec []string, col map[string]int) status.Classification {
	v, ok := cell(rec, col, "classification")
	if !ok {
		return status.ClassificationMissing
	}
	switch v {
	case "MISLEADING":
		return status.SaysMisleading
	case "NOT_MISLEADING":
		return status.SaysNotMisleading
	default:
		return status.ClassificationMissing
	}
}

// writeScoredTable writes the engine's scored notes as CSV, with the
// required output columns from the interface contract plus whatever extras
// columns appeared anywhere in the result, in a stable, sorted order.
func writeScoredTable(w io.Writer, scored []engine.ScoredNote, opts engine.Options) error {
	extraCols := collectExtraColumns(scored)

	cw := csv.NewWriter(w)
	header := []string{"noteId", opts.StatusColumn, opts.RuleColumn}
	if opts.DecidedByColumn != "" {
		header = append(header, opts.DecidedByColumn)
	}
	header = append(header, "currentlyRatedHelpfulBool", "currentlyRatedNotHelpfulBool", "awaitingMoreRatingsBool")
	header = append(header, extraCols...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("table_io: write header: %w", err)
	}

	for _, sn := range scored {
		rec := []string{
			strconv.FormatInt(int64(sn.Note.NoteID), 10),
			sn.Status.String(),
			sn.Rules,
		}
		if opts.DecidedByColumn != "" {
			rec = append(rec, sn.DecidedBy)
		}
		rec = append(rec,
			strconv.FormatBool(sn.CurrentlyRatedHelpfulBool),
			strconv.FormatBool(sn.CurrentlyRatedNotHelpfulBool),
			strconv.FormatBool(sn.AwaitingMoreRatingsBool),
		)
		for _, c := range extraCols {
			v := ""
			if sn.Extras != nil {
				if raw, ok := sn.Extras[c]; ok {
					v = fmt.Sprintf("%v", raw)
				}
			}
			rec = append(rec, v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("table_io: write row %d: %w", sn.Note.NoteID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func collectExtraColumns(scored []engine.ScoredNote) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, sn := range scored {
		for k := range sn.Extras {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}
