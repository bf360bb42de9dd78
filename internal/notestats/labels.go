package notestats

import "notescore/internal/status"

// Labels holds the currently-assigned status per note as rules accumulate,
// with exactly one row per note any rule has touched so far — the last rule
// to write a note's status wins.
type Labels struct {
	byID map[NoteID]status.Status
}

// NewLabels returns an empty label table.
func NewLabels() *Labels {
	return &Labels{byID: make(map[NoteID]status.Status)}
}

// Get returns the current status for id, if any rule has assigned one.
func (l *Labels) Get(id NoteID) (status.Status, bool) {
	s, ok := l.byID[id]
	return s, ok
}

// Upsert overwrites id's status, last-writer-wins.
func (l *Labels) Upsert(id NoteID, s status.Status) {
	l.byID[id] = s
}

// Len returns the number of notes with an assigned status.
func (l *Labels) Len() int { return len(l.byID) }

// IDSet returns the set of NoteIDs with an assigned status.
func (l *Labels) IDSet() map[NoteID]struct{} {
	s := make(map[NoteID]struct{}, len(l.byID))
	for id := range l.byID {
		s[id] = struct{}{}
	}
	return s
}

// Update is one note's proposed status from a single rule invocation.
type Update struct {
	NoteID NoteID
	Status status.Status
}

// Updates is the return type of Rule.Score's first element. NoteID must be
// unique within a single Updates value; the engine enforces this.
type Updates []Update

// IDSet returns the set of NoteIDs present in u.
func (u Updates) IDSet() map[NoteID]struct{} {
	s := make(map[NoteID]struct{}, len(u))
	for _, upd := range u {
		s[upd.NoteID] = struct{}{}
	}
	return s
}

// ExtraRow is one note's worth of additional output columns contributed by
// a rule (e.g. activeFilterTags, firstTag, unlockedRatingStatus).
type ExtraRow map[string]any

// Extras is the return type of Rule.Score's optional second element, keyed
// by NoteID.
type Extras map[NoteID]ExtraRow

// IDSet returns the set of NoteIDs present in e.
func (e Extras) IDSet() map[NoteID]struct{} {
	s := make(map[NoteID]struct{}, len(e))
	for id := range e {
		s[id] = struct{}{}
	}
	return s
}

// LockedStatus represents historical, committed labels that ScoringDriftGuard
// restores if current scoring would drift from them.
type LockedStatus map[NoteID]status.Status
