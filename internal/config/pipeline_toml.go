package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// LoadPipelineTOML reads a rule pipeline from a standalone TOML file, an
// alternate format to embedding the pipeline in the main YAML config —
// useful for pipeline authors who want to version-control and diff rule
// lists independent of ambient logging/limits settings.
func LoadPipelineTOML(path string) (*PipelineSpec, error) {
	var spec PipelineSpec
	if _, err := toml.DecodeFile(path, &spec); err != nil {
		return nil, fmt.Errorf("config: decode pipeline TOML %s: %w", path, err)
	}
	return &spec, nil
}
