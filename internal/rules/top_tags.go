package rules

import "notescore/internal/notestats"

// topTwoTags selects up to two tag names per note from counts, subject to a
// minimum rating count to qualify, breaking ties by tieBreakOrder (earlier
// entries win). Mirrors get_top_two_tags_for_note from the original
// implementation.
func topTwoTags(counts map[string]notestats.Optional[int], minRatingsToGetTag int, tieBreakOrder []string) (notestats.Optional[string], notestats.Optional[string]) {
	type candidate struct {
		tag   string
		count int
	}
	var qualifying []candidate
	for _, tag := range tieBreakOrder {
		c, ok := counts[tag]
		if !ok {
			continue
		}
		v, valid := c.Get()
		if !valid || v < minRatingsToGetTag {
			continue
		}
		qualifying = append(qualifying, candidate{tag: tag, count: v})
	}
	// Stable sort by count descending; tieBreakOrder already gives the
	// definition-order tie-break for equal counts since qualifying was
	// built in that order and sort is stable.
	for i := 1; i < len(qualifying); i++ {
		for j := i; j > 0 && qualifying[j].count > qualifying[j-1].count; j-- {
			qualifying[j], qualifying[j-1] = qualifying[j-1], qualifying[j]
		}
	}
	var first, second notestats.Optional[string]
	if len(qualifying) > 0 {
		first = notestats.Some(qualifying[0].tag)
	}
	if len(qualifying) > 1 {
		second = notestats.Some(qualifying[1].tag)
	}
	return first, second
}
