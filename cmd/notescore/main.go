// Command notescore runs the deterministic note-status rule engine over a
// prepared note-stats table and a declarative rule pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"notescore/internal/config"
	"notescore/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "notescore",
	Short: "Deterministic, dependency-ordered note scoring engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if logLevel != "" {
			loaded.Logging.Level = logLevel
		}
		if logFormat != "" {
			loaded.Logging.Format = logFormat
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded

		log, err = logging.New(logging.Config{
			Level:      cfg.Logging.Level,
			Format:     cfg.Logging.Format,
			FilePath:   cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
		})
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		log.For(logging.CategoryCLI).Infow("notescore starting", "command", cmd.Name())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.For(logging.CategoryCLI).Infow("notescore finished", "command", cmd.Name())
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a notescore YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging.format (console|json)")
	rootCmd.AddCommand(scoreCmd, validateCmd)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if log != nil {
				log.For(logging.CategoryCLI).Errorw("unrecovered panic, treating as invariant violation", "panic", r)
			}
			fmt.Fprintf(os.Stderr, "notescore: internal error: %v\n", r)
			os.Exit(1)
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
