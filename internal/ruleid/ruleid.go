// Package ruleid defines the closed roster of scoring rule identifiers.
//
// Each entry mirrors the production rule roster: a name, a version string,
// and a locking flag consumed by an external locking collaborator. The
// engine itself only needs the triple for attribution and uniqueness
// checking.
package ruleid

import "fmt"

// ID uniquely identifies one instantiation of a scoring rule.
type ID int

const (
	Unknown ID = iota

	InitialNMR
	GeneralCRH
	GeneralCRNH
	UcbCRNH
	TagOutlier
	ElevatedCRH
	NmCRNH
	GeneralCRHInertia
	ElevatedCRHInertia
	IncorrectOutlier
	LowDiligence
	LargeFactor
	LowIntercept

	MetaInitialNMR
	ExpansionModel
	ExpansionPlusModel
	CoreModel
	CoverageModel
	GroupModel01
	GroupModel02
	GroupModel03
	GroupModel04
	GroupModel05
	GroupModel06
	GroupModel07
	GroupModel08
	GroupModel09
	GroupModel10
	GroupModel11
	GroupModel12
	GroupModel13
	GroupModel14
	TopicModel01
	TopicModel02
	TopicModel03
	MultiGroupModel01
	InsufficientExplanation
	ScoringDriftGuard
	NmrDueToMinStableCrhTime
)

// Info is the (name, version, lockingEnabled) triple identifying a rule's
// logic and revision.
type Info struct {
	Name           string
	Version        string
	LockingEnabled bool
}

// DisplayName returns "<name> (v<version>)", the attribution string that
// appears in RuleAttribution and the decidedBy column.
func (i Info) DisplayName() string {
	return fmt.Sprintf("%s (v%s)", i.Name, i.Version)
}

var registry = map[ID]Info{
	InitialNMR:         {"InitialNMR", "1.0", false},
	GeneralCRH:         {"GeneralCRH", "1.0", false},
	GeneralCRNH:        {"GeneralCRNH", "1.0", false},
	UcbCRNH:            {"UcbCRNH", "1.0", false},
	TagOutlier:         {"TagFilter", "1.0", false},
	ElevatedCRH:        {"CRHSuperThreshold", "1.0", false},
	NmCRNH:             {"NmCRNH", "1.0", false},
	GeneralCRHInertia:  {"GeneralCRHInertia", "1.0", false},
	ElevatedCRHInertia: {"ElevatedCRHInertia", "1.0", false},
	IncorrectOutlier:   {"FilterIncorrect", "1.0", false},
	LowDiligence:       {"FilterLowDiligence", "1.0", false},
	LargeFactor:        {"FilterLargeFactor", "1.0", false},
	LowIntercept:       {"RejectLowIntercept", "1.0", false},

	MetaInitialNMR:           {"MetaInitialNMR", "1.0", false},
	ExpansionModel:           {"ExpansionModel", "1.1", false},
	ExpansionPlusModel:       {"ExpansionPlusModel", "1.1", false},
	CoreModel:                {"CoreModel", "1.1", true},
	CoverageModel:            {"CoverageModel", "1.1", false},
	GroupModel01:             {"GroupModel01", "1.1", true},
	GroupModel02:             {"GroupModel02", "1.1", true},
	GroupModel03:             {"GroupModel03", "1.1", true},
	GroupModel04:             {"GroupModel04", "1.1", false},
	GroupModel05:             {"GroupModel05", "1.1", false},
	GroupModel06:             {"GroupModel06", "1.1", true},
	GroupModel07:             {"GroupModel07", "1.1", false},
	GroupModel08:             {"GroupModel08", "1.1", true},
	GroupModel09:             {"GroupModel09", "1.1", true},
	GroupModel10:             {"GroupModel10", "1.1", true},
	GroupModel11:             {"GroupModel11", "1.1", true},
	GroupModel12:             {"GroupModel12", "1.1", false},
	GroupModel13:             {"GroupModel13", "1.1", true},
	GroupModel14:             {"GroupModel14", "1.1", true},
	TopicModel01:             {"TopicModel01", "1.0", false},
	TopicModel02:             {"TopicModel02", "1.0", false},
	TopicModel03:             {"TopicModel03", "1.0", false},
	MultiGroupModel01:        {"MultiGroupModel01", "1.0", false},
	InsufficientExplanation:  {"InsufficientExplanation", "1.0", true},
	ScoringDriftGuard:        {"ScoringDriftGuard", "1.0", false},
	NmrDueToMinStableCrhTime: {"NmrDueToMinStableCrhTime", "1.0", false},
}

// GroupModel returns the rule ID for group model n (1-indexed, matching the
// upstream modelingGroup column), or Unknown if n is out of range.
func GroupModel(n int) ID {
	ids := []ID{
		GroupModel01, GroupModel02, GroupModel03, GroupModel04, GroupModel05,
		GroupModel06, GroupModel07, GroupModel08, GroupModel09, GroupModel10,
		GroupModel11, GroupModel12, GroupModel13, GroupModel14,
	}
	if n < 1 || n > len(ids) {
		return Unknown
	}
	return ids[n-1]
}

// MustInfo returns the Info for id, panicking if id is not registered. Only
// safe for ids defined as constants in this package.
func MustInfo(id ID) Info {
	info, ok := registry[id]
	if !ok {
		panic(fmt.Sprintf("ruleid: unregistered rule id %d", id))
	}
	return info
}

// Name returns the display name for id, or "<unknown>" when unregistered.
func Name(id ID) string {
	info, ok := registry[id]
	if !ok {
		return "<unknown>"
	}
	return info.DisplayName()
}

// constNames maps each ID to the Go constant identifier used to reference it
// from declarative pipeline configuration, as opposed to Info.Name (the
// display name, which can differ — e.g. TagOutlier displays as "TagFilter").
var constNames = map[ID]string{
	InitialNMR: "InitialNMR", GeneralCRH: "GeneralCRH", GeneralCRNH: "GeneralCRNH",
	UcbCRNH: "UcbCRNH", TagOutlier: "TagOutlier", ElevatedCRH: "ElevatedCRH",
	NmCRNH: "NmCRNH", GeneralCRHInertia: "GeneralCRHInertia", ElevatedCRHInertia: "ElevatedCRHInertia",
	IncorrectOutlier: "IncorrectOutlier", LowDiligence: "LowDiligence", LargeFactor: "LargeFactor",
	LowIntercept: "LowIntercept", MetaInitialNMR: "MetaInitialNMR", ExpansionModel: "ExpansionModel",
	ExpansionPlusModel: "ExpansionPlusModel", CoreModel: "CoreModel", CoverageModel: "CoverageModel",
	GroupModel01: "GroupModel01", GroupModel02: "GroupModel02", GroupModel03: "GroupModel03",
	GroupModel04: "GroupModel04", GroupModel05: "GroupModel05", GroupModel06: "GroupModel06",
	GroupModel07: "GroupModel07", GroupModel08: "GroupModel08", GroupModel09: "GroupModel09",
	GroupModel10: "GroupModel10", GroupModel11: "GroupModel11", GroupModel12: "GroupModel12",
	GroupModel13: "GroupModel13", GroupModel14: "GroupModel14", TopicModel01: "TopicModel01",
	TopicModel02: "TopicModel02", TopicModel03: "TopicModel03", MultiGroupModel01: "MultiGroupModel01",
	InsufficientExplanation: "InsufficientExplanation", ScoringDriftGuard: "ScoringDriftGuard",
	NmrDueToMinStableCrhTime: "NmrDueToMinStableCrhTime",
}

var byConstName map[string]ID

func init() {
	byConstName = make(map[string]ID, len(constNames))
	for id, name := range constNames {
		byConstName[name] = id
	}
}

// ParseID recovers an ID from its Go constant identifier (as used in
// declarative pipeline configuration), e.g. "GeneralCRH".
func ParseID(name string) (ID, error) {
	id, ok := byConstName[name]
	if !ok {
		return Unknown, fmt.Errorf("ruleid: unrecognized rule id %q", name)
	}
	return id, nil
}

// Set is a small helper over a map[ID]struct{} used for dependency sets.
type Set map[ID]struct{}

// NewSet builds a Set from the given ids.
func NewSet(ids ...ID) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is a member of s.
func (s Set) Contains(id ID) bool {
	_, ok := s[id]
	return ok
}

// Missing returns the ids in required that are absent from s.
func (s Set) Missing(required Set) []ID {
	var missing []ID
	for id := range required {
		if !s.Contains(id) {
			missing = append(missing, id)
		}
	}
	return missing
}
