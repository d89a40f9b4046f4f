package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/varpipe/internal/align"
	"github.com/me/varpipe/internal/hostinfo"
	"github.com/me/varpipe/internal/journal"
	"github.com/me/varpipe/internal/pipeline"
	"github.com/me/varpipe/internal/sample"
	"github.com/me/varpipe/pkg/model"
)

func newAlignCmd() *cobra.Command {
	var (
		samplesFile string
		threads     int
		memGiB      int
	)

	cmd := &cobra.Command{
		Use:   "align <genome-dir> <fastq-dir> [outdir]",
		Short: "Align every FASTQ sample in a directory",
		Long: `Discovers single- and paired-end FASTQ files in <fastq-dir>, groups them
into per-sample jobs (mate pairs by the _R1/_R2 naming convention) and runs
STAR plus BAM indexing for each. Samples whose output already exists are
skipped. A first mate without its second mate is dropped with a warning.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			genomeDir, fastqDir := args[0], args[1]
			outRoot := fastqDir
			if len(args) > 2 {
				outRoot = args[2]
			}

			for _, check := range []struct{ arg, path string }{
				{"genome-dir", genomeDir},
				{"fastq-dir", fastqDir},
			} {
				if _, err := os.Stat(check.path); err != nil {
					return model.NewArgumentError(check.arg, "directory does not exist: %s", check.path)
				}
			}
			if err := checkTool(cfg.STARPath); err != nil {
				return err
			}
			if err := checkTool(cfg.SamtoolsPath); err != nil {
				return err
			}

			var allowList []string
			if samplesFile != "" {
				var err error
				allowList, err = align.ReadAllowList(samplesFile)
				if err != nil {
					return err
				}
			}

			jobs, err := align.GroupInputs(fastqDir, allowList, logger)
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				logger.Warn("no alignment jobs found", "dir", fastqDir)
				return nil
			}

			res := hostinfo.Estimate(hostinfo.Detect(), hostinfo.EstimateOptions{
				MemoryFraction: cfg.Align.MemoryFraction,
			}, threads, memGiB)

			logger.Info("alignment",
				"jobs", len(jobs),
				"threads", res.Threads,
				"memory", humanize.IBytes(uint64(res.MemoryGiB)<<30),
			)

			var observer pipeline.Observer
			if j, err := journal.Open(filepath.Join(outRoot, journal.DefaultFilename), logger); err != nil {
				logger.Warn("journal unavailable", "error", err)
			} else {
				defer j.Close()
				observer = j
			}

			runner := pipeline.NewRunner(logger, pipeline.NewOSCommandRunner(), observer)
			for _, job := range jobs {
				sc, err := sample.ForID(job.SampleID, outRoot)
				if err != nil {
					return err
				}
				def := align.Define(sc, job, genomeDir, res, cfg)

				result, err := runner.Run(cmd.Context(), sc, def.Stages, def.Options)
				if err != nil {
					return err
				}
				if result.AlreadyDone {
					logger.Info("sample already aligned", "sample", job.SampleID)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: aligned, counts in %s\n", job.SampleID, def.CountFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&samplesFile, "samples", "", "Line-delimited sample allow-list file")
	cmd.Flags().IntVar(&threads, "threads", 0, "Thread count for the aligner (default: all cores)")
	cmd.Flags().IntVar(&memGiB, "mem", 0, "Memory budget in GiB (default: 90% of total)")

	return cmd
}
