// Package rerr defines the five fatal error kinds the scoring engine and
// its rules can raise. It is a standalone package (rather than living in
// engine or rules) so that both can construct and inspect these errors
// without an import cycle.
package rerr

import (
	"fmt"

	"notescore/internal/notestats"
	"notescore/internal/ruleid"
)

// Kind identifies one of the five fatal error categories. All are
// programming errors or corrupted-input errors; none are retryable, since
// scoring is a pure computation.
type Kind int

const (
	DependencyViolation Kind = iota
	DuplicateRule
	SchemaMismatch
	InvariantViolation
	DomainError
)

func (k Kind) String() string {
	switch k {
	case DependencyViolation:
		return "DependencyViolation"
	case DuplicateRule:
		return "DuplicateRule"
	case SchemaMismatch:
		return "SchemaMismatch"
	case InvariantViolation:
		return "InvariantViolation"
	case DomainError:
		return "DomainError"
	default:
		return "UnknownError"
	}
}

// Error is the single error type the engine and its rules raise.
type Error struct {
	Kind      Kind
	Rule      ruleid.ID
	NoteID    notestats.NoteID
	HasNoteID bool
	Msg       string
}

func (e *Error) Error() string {
	ruleName := ruleid.Name(e.Rule)
	switch {
	case e.HasNoteID:
		return fmt.Sprintf("%s: rule %s, note %d: %s", e.Kind, ruleName, e.NoteID, e.Msg)
	case e.Rule != ruleid.Unknown:
		return fmt.Sprintf("%s: rule %s: %s", e.Kind, ruleName, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

// Is lets callers use errors.Is(err, &rerr.Error{Kind: rerr.DomainError})
// to match on kind alone.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func DependencyViolationf(rule ruleid.ID, missing []ruleid.ID) error {
	return &Error{Kind: DependencyViolation, Rule: rule, Msg: fmt.Sprintf("missing dependencies: %v", namesOf(missing))}
}

func DuplicateRulef(rule ruleid.ID) error {
	return &Error{Kind: DuplicateRule, Rule: rule, Msg: "rule id already applied in this run"}
}

func SchemaMismatchf(rule ruleid.ID, format string, args ...any) error {
	return &Error{Kind: SchemaMismatch, Rule: rule, Msg: fmt.Sprintf(format, args...)}
}

func InvariantViolationf(rule ruleid.ID, format string, args ...any) error {
	return &Error{Kind: InvariantViolation, Rule: rule, Msg: fmt.Sprintf(format, args...)}
}

func InvariantViolationNotef(rule ruleid.ID, id notestats.NoteID, format string, args ...any) error {
	return &Error{Kind: InvariantViolation, Rule: rule, NoteID: id, HasNoteID: true, Msg: fmt.Sprintf(format, args...)}
}

func DomainErrorf(rule ruleid.ID, format string, args ...any) error {
	return &Error{Kind: DomainError, Rule: rule, Msg: fmt.Sprintf(format, args...)}
}

func namesOf(ids []ruleid.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = ruleid.Name(id)
	}
	return out
}
