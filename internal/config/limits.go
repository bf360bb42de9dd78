package config

import (
	"fmt"

	"notescore/internal/notestats"
	"notescore/internal/rules"
)

// CheckRuleLimits enforces RuleLimits against a concrete pipeline and input
// table before a scoring run starts, mirroring the teacher's
// EnforceCoreLimits pre-flight check applied to this domain's resources
// (rule count and note count instead of memory/shard/session budgets).
func (l RuleLimits) CheckRuleLimits(ruleList []rules.Rule, notes *notestats.Table) error {
	if !l.EnforceRuleLimits {
		return nil
	}
	if len(ruleList) > l.MaxRules {
		return fmt.Errorf("config: pipeline has %d rules, exceeds max_rules=%d", len(ruleList), l.MaxRules)
	}
	if notes.Len() > l.MaxNotes {
		return fmt.Errorf("config: input table has %d notes, exceeds max_notes=%d", notes.Len(), l.MaxNotes)
	}
	return nil
}
