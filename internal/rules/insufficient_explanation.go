package rules

import (
	"notescore/internal/notestats"
	"notescore/internal/ruleid"
	"notescore/internal/status"
)

// InsufficientExplanation selects up to two explanatory tags per note and
// demotes CRH/CRNH notes whose explanation is too thin (fewer than
// minTagsNeededForStatus non-missing top tags) to the configured status.
// The selected tags are emitted as firstTag/secondTag extras for the
// demoted notes only, so the extras cover the same notes as the updates.
type InsufficientExplanation struct {
	base
	Status              status.Status
	MinRatingsToGetTag  int
	MinTagsNeededForStatus int
	// TagsConsidered, when set, is applied to every note uniformly instead
	// of branching on CRH/CRNH tie-break order.
	TagsConsidered []string
}

func NewInsufficientExplanation(id ruleid.ID, deps ruleid.Set, st status.Status, minRatingsToGetTag, minTagsNeededForStatus int, tagsConsidered []string) *InsufficientExplanation {
	return &InsufficientExplanation{base: base{id: id, deps: deps}, Status: st, MinRatingsToGetTag: minRatingsToGetTag, MinTagsNeededForStatus: minTagsNeededForStatus, TagsConsidered: tagsConsidered}
}

func (r *InsufficientExplanation) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	firstTag := make(map[notestats.NoteID]notestats.Optional[string])
	secondTag := make(map[notestats.NoteID]notestats.Optional[string])

	if r.TagsConsidered != nil {
		for _, row := range notes.Rows() {
			f, s := topTwoTags(row.HelpfulTagCount, r.MinRatingsToGetTag, r.TagsConsidered)
			firstTag[row.NoteID], secondTag[row.NoteID] = f, s
		}
	} else {
		for _, row := range notes.Rows() {
			cur, ok := labels.Get(row.NoteID)
			if !ok {
				continue
			}
			switch cur {
			case status.CRH:
				// NOTE: the upstream production implementation calls the
				// top-two-tags selector for the CRH branch with
				// (minTagsNeededForStatus, minRatingsToGetTag) — the two
				// positional arguments in the OPPOSITE order from the
				// CRNH branch below. Confirmed in the original source,
				// not an artifact of distillation; preserved as-is.
				f, s := topTwoTags(row.HelpfulTagCount, r.MinTagsNeededForStatus, notestats.HelpfulTagsOrder)
				firstTag[row.NoteID], secondTag[row.NoteID] = f, s
			case status.CRNH:
				f, s := topTwoTags(row.NotHelpfulTagCount, r.MinRatingsToGetTag, notestats.NotHelpfulTagsOrder)
				firstTag[row.NoteID], secondTag[row.NoteID] = f, s
			}
		}
	}

	var updates notestats.Updates
	extras := make(notestats.Extras)
	for _, row := range notes.Rows() {
		cur, ok := labels.Get(row.NoteID)
		if !ok || (cur != status.CRH && cur != status.CRNH) {
			continue
		}
		f := firstTag[row.NoteID]
		s := secondTag[row.NoteID]
		count := 0
		if _, ok := f.Get(); ok {
			count++
		}
		if _, ok := s.Get(); ok {
			count++
		}
		extraRow := notestats.ExtraRow{}
		if v, ok := f.Get(); ok {
			extraRow["firstTag"] = v
		}
		if v, ok := s.Get(); ok {
			extraRow["secondTag"] = v
		}
		if count < r.MinTagsNeededForStatus {
			updates = append(updates, notestats.Update{NoteID: row.NoteID, Status: r.Status})
			extras[row.NoteID] = extraRow
		}
	}
	return updates, extras, nil
}
