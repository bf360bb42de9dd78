package rules

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"notescore/internal/notestats"
	"notescore/internal/ruleid"
	"notescore/internal/status"
)

// FilterTagOutliers flags CRH-track notes with an outlying level of any
// single not-helpful tag, sending them to NMR (or another configured
// status) and recording which tags triggered.
type FilterTagOutliers struct {
	base
	Status              status.Status
	TagFilterThresholds map[string]float64 // keyed by raw tag name
	MinAdjustedTotal    float64
}

func NewFilterTagOutliers(id ruleid.ID, deps ruleid.Set, st status.Status, thresholds map[string]float64, minAdjustedTotal float64) *FilterTagOutliers {
	return &FilterTagOutliers{base: base{id: id, deps: deps}, Status: st, TagFilterThresholds: thresholds, MinAdjustedTotal: minAdjustedTotal}
}

// tagHit is one (note, tag) pair where the outlier filter triggered.
type tagHit struct {
	noteID notestats.NoteID
	tag    string
}

func (r *FilterTagOutliers) Score(notes *notestats.Table, labels *notestats.Labels, _ string) (notestats.Updates, notestats.Extras, error) {
	candidates := candidatesExcluding(notes, labels, status.CRNH)
	rows := candidates.Rows()

	// Each tag's scan over all candidate rows is independent and
	// commutative with the others, so they fan out across goroutines and
	// are merged back in tag-definition order below, matching the
	// determinism guarantee for intra-rule parallelism.
	hitsByTag := make([][]tagHit, len(notestats.NotHelpfulTagsOrder))
	var mu sync.Mutex
	var g errgroup.Group
	for i, tag := range notestats.NotHelpfulTagsOrder {
		i, tag := i, tag
		if tag == notestats.NotHelpfulHardToUnderstand {
			continue
		}
		threshold, ok := r.TagFilterThresholds[tag]
		if !ok {
			continue
		}
		g.Go(func() error {
			var hits []tagHit
			for _, row := range rows {
				adjusted, adjOK := row.TagAdjusted[tag]
				ratio, ratioOK := row.TagAdjustedRatio[tag]
				if !adjOK || !ratioOK {
					continue
				}
				adjVal, adjValid := adjusted.Get()
				ratioVal, ratioValid := ratio.Get()
				if !adjValid || !ratioValid {
					continue
				}
				if adjVal > r.MinAdjustedTotal && ratioVal > threshold {
					hits = append(hits, tagHit{noteID: row.NoteID, tag: tag})
				}
			}
			mu.Lock()
			hitsByTag[i] = hits
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // scans never return an error

	impacted := make(map[notestats.NoteID][]string)
	var order []notestats.NoteID
	for _, hits := range hitsByTag {
		for _, h := range hits {
			if _, seen := impacted[h.noteID]; !seen {
				order = append(order, h.noteID)
			}
			impacted[h.noteID] = append(impacted[h.noteID], h.tag)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	updates := make(notestats.Updates, 0, len(order))
	extras := make(notestats.Extras, len(order))
	for _, id := range order {
		updates = append(updates, notestats.Update{NoteID: id, Status: r.Status})
		extras[id] = notestats.ExtraRow{"activeFilterTags": strings.Join(impacted[id], ",")}
	}
	return updates, extras, nil
}
