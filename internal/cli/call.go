package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/varpipe/internal/hostinfo"
	"github.com/me/varpipe/internal/journal"
	"github.com/me/varpipe/internal/pipeline"
	"github.com/me/varpipe/internal/sample"
	"github.com/me/varpipe/internal/vc"
	"github.com/me/varpipe/pkg/model"
)

func newCallCmd() *cobra.Command {
	var noJournal bool

	cmd := &cobra.Command{
		Use:   "call <reference> <alignment.bam> <known-sites.vcf> [outdir] [threads] [memGiB] [gatk-path]",
		Short: "Run the variant-calling pipeline for one sample",
		Long: `Runs MarkDuplicates, SplitNCigarReads, BaseRecalibrator, ApplyBQSR,
HaplotypeCaller and VariantFiltration in sequence. Stages whose output
artifacts already exist are skipped, so an interrupted run can simply be
re-invoked. The presence of the filtered VCF index short-circuits the whole
run.`,
		Args: cobra.RangeArgs(3, 7),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, bam, knownSites := args[0], args[1], args[2]

			var outRoot string
			if len(args) > 3 {
				outRoot = args[3]
			}
			threads, err := optionalInt(args, 4, "threads")
			if err != nil {
				return err
			}
			memGiB, err := optionalInt(args, 5, "memGiB")
			if err != nil {
				return err
			}
			if len(args) > 6 {
				cfg.GATKPath = args[6]
			}

			for _, check := range []struct{ arg, path string }{
				{"reference", reference},
				{"alignment", bam},
				{"known-sites", knownSites},
			} {
				if _, err := os.Stat(check.path); err != nil {
					return model.NewArgumentError(check.arg, "file does not exist: %s", check.path)
				}
			}
			if err := checkTool(cfg.GATKPath); err != nil {
				return err
			}

			sc, err := sample.Derive(bam, outRoot)
			if err != nil {
				return err
			}

			res := hostinfo.Estimate(hostinfo.Detect(), hostinfo.EstimateOptions{
				ReserveCore:    cfg.Call.ReserveCore,
				MemoryFraction: cfg.Call.MemoryFraction,
			}, threads, memGiB)

			logger.Info("variant calling",
				"sample", sc.SampleID,
				"output_dir", sc.OutputDir,
				"threads", res.Threads,
				"memory", humanize.IBytes(uint64(res.MemoryGiB)<<30),
			)

			var observer pipeline.Observer
			if !noJournal {
				j, err := journal.Open(filepath.Join(sc.OutputDir, journal.DefaultFilename), logger)
				if err != nil {
					// History is best-effort; a broken journal must not stop
					// a multi-hour pipeline.
					logger.Warn("journal unavailable", "error", err)
				} else {
					defer j.Close()
					observer = j
				}
			}

			def := vc.Define(sc, vc.Inputs{
				Reference:    reference,
				AlignmentBAM: bam,
				KnownSites:   knownSites,
			}, res, cfg)

			runner := pipeline.NewRunner(logger, pipeline.NewOSCommandRunner(), observer)
			result, err := runner.Run(cmd.Context(), sc, def.Stages, def.Options)
			if err != nil {
				return err
			}
			if result.AlreadyDone {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: already completed (%s)\n", sc.SampleID, def.Options.TerminalMarker)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: completed, filtered variants in %s\n", sc.SampleID, def.FilteredVCF)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "Disable the SQLite run journal")

	return cmd
}

// optionalInt parses the positional at idx as a positive integer when present.
func optionalInt(args []string, idx int, name string) (int, error) {
	if len(args) <= idx {
		return 0, nil
	}
	n, err := strconv.Atoi(args[idx])
	if err != nil || n <= 0 {
		return 0, model.NewArgumentError(name, "must be a positive integer, got %q", args[idx])
	}
	return n, nil
}

// checkTool verifies an external executable is reachable: explicit paths must
// exist, bare names must resolve via $PATH.
func checkTool(tool string) error {
	if strings.ContainsRune(tool, os.PathSeparator) {
		if _, err := os.Stat(tool); err != nil {
			return model.NewArgumentError("tool", "executable does not exist: %s", tool)
		}
		return nil
	}
	if !pipeline.LookPath(tool) {
		return model.NewArgumentError("tool", "executable %q not found in PATH", tool)
	}
	return nil
}
