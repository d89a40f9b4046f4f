// Package vc defines the GATK variant-calling pipeline: six external-tool
// stages forming a strict linear dependency chain from an aligned BAM to a
// hard-filtered VCF. Stage i's output is stage i+1's input, so the generic
// runner's per-stage skip gives idempotent resume for free.
package vc

import (
	"fmt"

	"github.com/me/varpipe/internal/config"
	"github.com/me/varpipe/internal/pipeline"
	"github.com/me/varpipe/internal/sample"
	"github.com/me/varpipe/pkg/model"
)

// Inputs are the external artifacts the pipeline consumes.
type Inputs struct {
	// Reference is the reference genome FASTA.
	Reference string

	// AlignmentBAM is the aligned, coordinate-sorted input.
	AlignmentBAM string

	// KnownSites is the VCF of previously characterized variants used to
	// calibrate base quality scores.
	KnownSites string
}

// Definition is the fully derived pipeline for one sample: stage list plus
// the runner options (terminal marker, cleanup set).
type Definition struct {
	Stages  []pipeline.Stage
	Options pipeline.Options

	// FilteredVCF is the pipeline's terminal artifact.
	FilteredVCF string
}

// Define builds the stage descriptors for one sample. Descriptors are plain
// data; nothing here touches the filesystem.
func Define(sc sample.Context, in Inputs, res model.Resources, cfg config.Config) Definition {
	dedupBAM := sc.Artifact(".dedupped.bam")
	dedupMetrics := sc.Artifact(".dedup.metrics")
	splitBAM := sc.Artifact(".split.bam")
	recalTable := sc.Artifact(".recal.table")
	recalBAM := sc.Artifact(".recal.bam")
	rawVCF := sc.Artifact(".raw.vcf")
	filteredVCF := sc.Artifact(".filtered.vcf")
	filteredIdx := filteredVCF + ".idx"

	javaOpts := fmt.Sprintf("-Xmx%dg", res.MemoryGiB)

	stages := []pipeline.Stage{
		{
			Name: "MarkDuplicates",
			Command: []string{
				cfg.GATKPath, "--java-options", javaOpts, "MarkDuplicates",
				"-I", in.AlignmentBAM,
				"-O", dedupBAM,
				"-M", dedupMetrics,
				"--CREATE_INDEX", "true",
			},
			Inputs:  []string{in.AlignmentBAM},
			Outputs: []string{dedupBAM},
		},
		{
			Name: "SplitNCigarReads",
			Command: []string{
				cfg.GATKPath, "--java-options", javaOpts, "SplitNCigarReads",
				"-R", in.Reference,
				"-I", dedupBAM,
				"-O", splitBAM,
			},
			Inputs:  []string{in.Reference, dedupBAM},
			Outputs: []string{splitBAM},
		},
		{
			Name: "BaseRecalibrator",
			Command: []string{
				cfg.GATKPath, "--java-options", javaOpts, "BaseRecalibrator",
				"-R", in.Reference,
				"-I", splitBAM,
				"--known-sites", in.KnownSites,
				"-O", recalTable,
			},
			Inputs:  []string{in.Reference, splitBAM, in.KnownSites},
			Outputs: []string{recalTable},
		},
		{
			Name: "ApplyBQSR",
			Command: []string{
				cfg.GATKPath, "--java-options", javaOpts, "ApplyBQSR",
				"-R", in.Reference,
				"-I", splitBAM,
				"--bqsr-recal-file", recalTable,
				"-O", recalBAM,
			},
			Inputs:  []string{in.Reference, splitBAM, recalTable},
			Outputs: []string{recalBAM},
		},
		{
			Name: "HaplotypeCaller",
			Command: []string{
				cfg.GATKPath, "--java-options", javaOpts, "HaplotypeCaller",
				"-R", in.Reference,
				"-I", recalBAM,
				"-O", rawVCF,
				"--native-pair-hmm-threads", fmt.Sprint(res.Threads),
			},
			Inputs:  []string{in.Reference, recalBAM},
			Outputs: []string{rawVCF},
		},
		{
			Name: "VariantFiltration",
			Command: []string{
				cfg.GATKPath, "--java-options", javaOpts, "VariantFiltration",
				"-R", in.Reference,
				"-V", rawVCF,
				"--filter-name", cfg.Call.FilterName,
				"--filter-expression", cfg.Call.FilterExpression,
				"-O", filteredVCF,
			},
			Inputs: []string{in.Reference, rawVCF},
			// The index is written alongside the VCF and doubles as the
			// terminal completion marker for the whole pipeline.
			Outputs: []string{filteredVCF, filteredIdx},
		},
	}

	opts := pipeline.Options{
		Kind:           model.PipelineVariantCall,
		TerminalMarker: filteredIdx,
		ResetLogs:      cfg.Call.ResetLogs,
	}
	if !cfg.Call.KeepIntermediates {
		opts.Cleanup = []string{
			dedupBAM,
			sc.Artifact(".dedupped.bai"),
			splitBAM,
			sc.Artifact(".split.bai"),
			recalTable,
			recalBAM,
			sc.Artifact(".recal.bai"),
		}
	}

	return Definition{Stages: stages, Options: opts, FilteredVCF: filteredVCF}
}
