package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notescore/internal/config"
	"notescore/internal/engine"
	"notescore/internal/logging"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a rule pipeline's dependency ordering and uniqueness without scoring",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&scorePipeline, "pipeline", "", "path to a YAML rule pipeline file (top-level 'rules' key)")
	validateCmd.Flags().StringVar(&scorePipelineTOML, "pipeline-toml", "", "path to a TOML rule pipeline file, alternative to --pipeline")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cliLog := log.For(logging.CategoryCLI)

	spec, err := loadPipelineSpec()
	if err != nil {
		return err
	}
	ruleList, err := config.Build(*spec, config.BuildContext{Now: 1})
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}
	if err := engine.Validate(ruleList); err != nil {
		cliLog.Errorw("pipeline validation failed", "error", err)
		return err
	}
	cliLog.Infow("pipeline is valid", "rules", len(ruleList))
	fmt.Println("pipeline OK:", len(ruleList), "rules")
	return nil
}
