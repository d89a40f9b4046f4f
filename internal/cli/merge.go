package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/varpipe/internal/counts"
	"github.com/me/varpipe/pkg/model"
)

func newMergeCountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge-counts <output> <count-file>...",
		Short: "Merge per-sample gene-count tables into one matrix",
		Long: `Merges two-column gene-count tables (the aligner's ReadsPerGene output
convention, four summary rows skipped) into a single tab-separated matrix:
one row per gene, one column per input file. Column headers come from each
filename's first underscore-delimited segment.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, files := args[0], args[1:]

			for _, f := range files {
				if _, err := os.Stat(f); err != nil {
					return model.NewArgumentError("count-file", "file does not exist: %s", f)
				}
			}

			matrix, err := counts.Merge(files)
			if err != nil {
				return err
			}
			if err := counts.WriteMatrix(matrix, output); err != nil {
				return err
			}

			logger.Info("counts merged", "genes", len(matrix.Genes), "samples", len(matrix.Samples), "output", output)
			fmt.Fprintf(cmd.OutOrStdout(), "merged %d samples, %d genes -> %s\n", len(matrix.Samples), len(matrix.Genes), output)
			return nil
		},
	}
}
