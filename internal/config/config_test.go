package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"notescore/internal/config"
	"notescore/internal/notestats"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, config.DefaultConfig().Validate())
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadParsesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n  format: json\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsInvalidLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: chatty\n  format: console\n"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestBuildPipelineFromSpec(t *testing.T) {
	spec := config.PipelineSpec{
		Rules: []config.RuleSpec{
			{Kind: "default", ID: "InitialNMR", Status: "NMR"},
			{Kind: "predicateIntercept", ID: "GeneralCRH", Dependencies: []string{"InitialNMR"}, Status: "CRH", Params: map[string]any{"interceptThreshold": 0.4, "onlyMisleading": true}},
		},
	}
	ruleList, err := config.Build(spec, config.BuildContext{Now: 1})
	require.NoError(t, err)
	require.Len(t, ruleList, 2)
}

func TestBuildPipelineRejectsUnknownKind(t *testing.T) {
	spec := config.PipelineSpec{Rules: []config.RuleSpec{{Kind: "doesNotExist", ID: "InitialNMR"}}}
	_, err := config.Build(spec, config.BuildContext{})
	require.Error(t, err)
}

func TestCheckRuleLimitsEnforced(t *testing.T) {
	limits := config.RuleLimits{MaxRules: 1, MaxNotes: 1, EnforceRuleLimits: true}
	spec := config.PipelineSpec{Rules: []config.RuleSpec{
		{Kind: "default", ID: "InitialNMR", Status: "NMR"},
		{Kind: "predicateIntercept", ID: "GeneralCRH", Dependencies: []string{"InitialNMR"}, Status: "CRH", Params: map[string]any{"interceptThreshold": 0.4}},
	}}
	ruleList, err := config.Build(spec, config.BuildContext{})
	require.NoError(t, err)

	notes := notestats.NewTable([]notestats.NoteRow{{NoteID: 1}})
	err = limits.CheckRuleLimits(ruleList, notes)
	require.Error(t, err)
}
