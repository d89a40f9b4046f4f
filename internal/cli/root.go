package cli

import (
	"log/slog"

	"github.com/me/varpipe/internal/config"
	"github.com/me/varpipe/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagConfig    string

	logger *slog.Logger
	cfg    config.Config
)

// NewRootCmd creates the root cobra command for the varpipe CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "varpipe",
		Short: "varpipe — resumable genomic variant-calling pipelines",
		Long: `varpipe orchestrates external bioinformatics tools (GATK, STAR, samtools)
as resumable multi-stage pipelines: completed stages are detected by their
output artifacts and skipped on re-invocation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)

			var err error
			cfg, err = config.Load(flagConfig)
			return err
		},
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Optional YAML config overlay")

	root.AddCommand(
		newCallCmd(),
		newAlignCmd(),
		newMergeCountsCmd(),
		newRunsCmd(),
	)

	return root
}
