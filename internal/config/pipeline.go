package config

import (
	"fmt"

	"notescore/internal/notestats"
	"notescore/internal/ruleid"
	"notescore/internal/rules"
	"notescore/internal/status"
)

// RuleSpec declaratively names one rule instantiation: which Go rule kind to
// build, its identity, its declared dependencies (by Go constant name, see
// ruleid.ParseID), and kind-specific parameters.
type RuleSpec struct {
	Kind         string         `yaml:"kind"`
	ID           string         `yaml:"id"`
	Dependencies []string       `yaml:"dependencies"`
	Status       string         `yaml:"status"`
	Params       map[string]any `yaml:"params"`
}

// PipelineSpec is the declarative, ordered rule list a scoring run applies.
type PipelineSpec struct {
	Rules []RuleSpec `yaml:"rules"`
}

// BuildContext carries the runtime inputs a pipeline build needs but that do
// not belong in a checked-in config file: the current wall-clock-equivalent
// timestamp (for hysteresis) and any externally locked statuses (for
// ScoringDriftGuard).
type BuildContext struct {
	Now    int64
	Locked notestats.LockedStatus
}

// Build translates a PipelineSpec into the ordered []rules.Rule the engine
// consumes, resolving each RuleSpec's declared dependencies and status
// token along the way.
func Build(spec PipelineSpec, bctx BuildContext) ([]rules.Rule, error) {
	out := make([]rules.Rule, 0, len(spec.Rules))
	for i, rs := range spec.Rules {
		r, err := buildOne(rs, bctx)
		if err != nil {
			return nil, fmt.Errorf("pipeline rule %d (%s/%s): %w", i, rs.Kind, rs.ID, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func buildOne(rs RuleSpec, bctx BuildContext) (rules.Rule, error) {
	id, err := ruleid.ParseID(rs.ID)
	if err != nil {
		return nil, err
	}
	deps, err := parseDeps(rs.Dependencies)
	if err != nil {
		return nil, err
	}
	st, err := parseOptionalStatus(rs.Status)
	if err != nil {
		return nil, err
	}

	switch rs.Kind {
	case "default":
		return rules.NewDefaultRule(id, deps, st), nil

	case "predicateIntercept":
		threshold, err := floatParam(rs.Params, "interceptThreshold")
		if err != nil {
			return nil, err
		}
		onlyMisleading, _ := boolParam(rs.Params, "onlyMisleading", true)
		return rules.NewRuleFromFunction(id, deps, st, func(row notestats.NoteRow) bool {
			v, ok := row.InternalNoteIntercept.Get()
			return ok && v > threshold
		}, onlyMisleading), nil

	case "nmToCrnh":
		threshold, err := floatParam(rs.Params, "crnhThresholdNMIntercept")
		if err != nil {
			return nil, err
		}
		return rules.NewNmToCRNH(id, deps, st, threshold), nil

	case "applyModelResult":
		source, err := stringParam(rs.Params, "source")
		if err != nil {
			return nil, err
		}
		checkFirmReject, _ := boolParam(rs.Params, "checkFirmReject", false)
		getter, err := modelResultSource(source)
		if err != nil {
			return nil, err
		}
		return rules.NewApplyModelResult(id, deps, getter, checkFirmReject, nil), nil

	case "filterIncorrect":
		tagThreshold, err := floatParam(rs.Params, "tagThreshold")
		if err != nil {
			return nil, err
		}
		voteThreshold, err := floatParam(rs.Params, "voteThreshold")
		if err != nil {
			return nil, err
		}
		weighted, err := floatParam(rs.Params, "weightedTotalVotes")
		if err != nil {
			return nil, err
		}
		return rules.NewFilterIncorrect(id, deps, st, tagThreshold, voteThreshold, weighted), nil

	case "filterLowDiligence":
		threshold, err := floatParam(rs.Params, "interceptThreshold")
		if err != nil {
			return nil, err
		}
		return rules.NewFilterLowDiligence(id, deps, st, threshold), nil

	case "filterLargeFactor":
		threshold, err := floatParam(rs.Params, "factorThreshold")
		if err != nil {
			return nil, err
		}
		return rules.NewFilterLargeFactor(id, deps, st, threshold), nil

	case "rejectLowIntercept":
		threshold, err := floatParam(rs.Params, "firmRejectThreshold")
		if err != nil {
			return nil, err
		}
		return rules.NewRejectLowIntercept(id, deps, st, threshold), nil

	case "filterTagOutliers":
		thresholds, err := floatMapParam(rs.Params, "tagFilterThresholds")
		if err != nil {
			return nil, err
		}
		minAdjusted, err := floatParam(rs.Params, "minAdjustedTotal")
		if err != nil {
			return nil, err
		}
		return rules.NewFilterTagOutliers(id, deps, st, thresholds, minAdjusted), nil

	case "applyGroupModelResult":
		group, err := intParam(rs.Params, "groupNumber")
		if err != nil {
			return nil, err
		}
		minSafeguard, err := floatParam(rs.Params, "minSafeguardThreshold")
		if err != nil {
			return nil, err
		}
		coreCrh := optionalFloatParam(rs.Params, "coreCrhThreshold")
		expansionCrh := optionalFloatParam(rs.Params, "expansionCrhThreshold")
		return rules.NewApplyGroupModelResult(id, deps, group, minSafeguard, coreCrh, expansionCrh), nil

	case "applyTopicModelResult":
		topic, err := stringParam(rs.Params, "topic")
		if err != nil {
			return nil, err
		}
		interceptThreshold, err := floatParam(rs.Params, "topicNMRInterceptThreshold")
		if err != nil {
			return nil, err
		}
		factorThreshold, err := floatParam(rs.Params, "topicNMRFactorThreshold")
		if err != nil {
			return nil, err
		}
		return rules.NewApplyTopicModelResult(id, deps, topic, interceptThreshold, factorThreshold), nil

	case "nmrDueToMinStableCrhTime":
		minutes, err := intParam(rs.Params, "requiredStableCrhMinutes")
		if err != nil {
			return nil, err
		}
		return rules.NewNmrDueToMinStableCrhTime(id, deps, minutes, bctx.Now), nil

	case "insufficientExplanation":
		minRatings, err := intParam(rs.Params, "minRatingsToGetTag")
		if err != nil {
			return nil, err
		}
		minTags, err := intParam(rs.Params, "minTagsNeededForStatus")
		if err != nil {
			return nil, err
		}
		tagsConsidered, _ := stringSliceParam(rs.Params, "tagsConsidered")
		return rules.NewInsufficientExplanation(id, deps, st, minRatings, minTags, tagsConsidered), nil

	case "addCrhInertia":
		minRatingsNeeded, err := intParam(rs.Params, "minRatingsNeeded")
		if err != nil {
			return nil, err
		}
		interceptThreshold, err := floatParam(rs.Params, "interceptThreshold")
		if err != nil {
			return nil, err
		}
		expectedMax, err := floatParam(rs.Params, "expectedMaxIntercept")
		if err != nil {
			return nil, err
		}
		return rules.NewAddCRHInertia(id, deps, minRatingsNeeded, interceptThreshold, expectedMax), nil

	case "scoringDriftGuard":
		return rules.NewScoringDriftGuard(id, deps, bctx.Locked), nil

	default:
		return nil, fmt.Errorf("unrecognized rule kind %q", rs.Kind)
	}
}

func modelResultSource(name string) (func(notestats.NoteRow) (status.Status, bool), error) {
	switch name {
	case "core":
		return func(row notestats.NoteRow) (status.Status, bool) { return row.CoreRatingStatus.Get() }, nil
	case "expansion":
		return func(row notestats.NoteRow) (status.Status, bool) { return row.ExpansionRatingStatus.Get() }, nil
	case "group":
		return func(row notestats.NoteRow) (status.Status, bool) { return row.GroupRatingStatus.Get() }, nil
	default:
		return nil, fmt.Errorf("unrecognized model result source %q", name)
	}
}

func parseDeps(names []string) (ruleid.Set, error) {
	if len(names) == 0 {
		return nil, nil
	}
	ids := make([]ruleid.ID, 0, len(names))
	for _, n := range names {
		id, err := ruleid.ParseID(n)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ruleid.NewSet(ids...), nil
}

func parseOptionalStatus(token string) (status.Status, error) {
	if token == "" {
		return status.Unset, nil
	}
	return status.ParseStatus(token)
}

func floatParam(params map[string]any, key string) (float64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing required param %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("param %q: expected a number, got %T", key, v)
	}
}

func intParam(params map[string]any, key string) (int, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing required param %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("param %q: expected an integer, got %T", key, v)
	}
}

func stringParam(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required param %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %q: expected a string, got %T", key, v)
	}
	return s, nil
}

func boolParam(params map[string]any, key string, def bool) (bool, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return def, fmt.Errorf("param %q: expected a bool, got %T", key, v)
	}
	return b, nil
}

func optionalFloatParam(params map[string]any, key string) notestats.Optional[float64] {
	v, ok := params[key]
	if !ok {
		return notestats.None[float64]()
	}
	switch n := v.(type) {
	case float64:
		return notestats.Some(n)
	case int:
		return notestats.Some(float64(n))
	default:
		return notestats.None[float64]()
	}
}

func floatMapParam(params map[string]any, key string) (map[string]float64, error) {
	v, ok := params[key]
	if !ok {
		return nil, fmt.Errorf("missing required param %q", key)
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("param %q: expected a map, got %T", key, v)
	}
	out := make(map[string]float64, len(raw))
	for k, rv := range raw {
		switch n := rv.(type) {
		case float64:
			out[k] = n
		case int:
			out[k] = float64(n)
		default:
			return nil, fmt.Errorf("param %q.%q: expected a number, got %T", key, k, rv)
		}
	}
	return out, nil
}

func stringSliceParam(params map[string]any, key string) ([]string, error) {
	v, ok := params[key]
	if !ok {
		return nil, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("param %q: expected a list, got %T", key, v)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("param %q: list element expected a string, got %T", key, item)
		}
		out = append(out, s)
	}
	return out, nil
}
