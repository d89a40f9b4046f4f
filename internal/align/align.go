package align

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/me/varpipe/internal/config"
	"github.com/me/varpipe/internal/pipeline"
	"github.com/me/varpipe/internal/sample"
	"github.com/me/varpipe/pkg/model"
)

// Definition is the derived alignment pipeline for one job: a STAR run plus
// a BAM index step, executed through the generic runner.
type Definition struct {
	Stages  []pipeline.Stage
	Options pipeline.Options

	// CountFile is the per-gene count table STAR writes for this sample,
	// consumed later by the count merger.
	CountFile string
}

// Define builds the stage descriptors for one alignment job. The output
// prefix convention is {outputDir}/{sampleId}_; STAR's gene-count table under
// that prefix is the job's terminal completion marker.
func Define(sc sample.Context, job Job, genomeDir string, res model.Resources, cfg config.Config) Definition {
	prefix := filepath.Join(sc.OutputDir, sc.SampleID+"_")
	bam := prefix + "Aligned.sortedByCoord.out.bam"
	counts := prefix + "ReadsPerGene.out.tab"

	starCmd := []string{
		cfg.STARPath,
		"--runThreadN", fmt.Sprint(res.Threads),
		"--genomeDir", genomeDir,
		"--readFilesIn",
	}
	starCmd = append(starCmd, job.Reads...)
	if strings.HasSuffix(job.Reads[0], ".gz") {
		starCmd = append(starCmd, "--readFilesCommand", "zcat")
	}
	starCmd = append(starCmd,
		"--outFileNamePrefix", prefix,
		"--outSAMtype", "BAM", "SortedByCoordinate",
		"--quantMode", "GeneCounts",
	)

	stages := []pipeline.Stage{
		{
			Name:    "STAR",
			Command: starCmd,
			Inputs:  append([]string{genomeDir}, job.Reads...),
			Outputs: []string{bam, counts},
		},
		{
			Name:    "IndexBAM",
			Command: []string{cfg.SamtoolsPath, "index", bam},
			Inputs:  []string{bam},
			Outputs: []string{bam + ".bai"},
		},
	}

	return Definition{
		Stages: stages,
		Options: pipeline.Options{
			Kind: model.PipelineAlign,
			// The BAM index is written last, so its presence means the whole
			// job is done.
			TerminalMarker: bam + ".bai",
			// The alignment workflow always appends to existing logs.
			ResetLogs: false,
		},
		CountFile: counts,
	}
}
