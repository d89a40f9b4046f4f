package align

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/me/varpipe/internal/config"
	"github.com/me/varpipe/internal/sample"
	"github.com/me/varpipe/pkg/model"
)

func TestDefine_PairedCompressed(t *testing.T) {
	sc := sample.Context{SampleID: "sampleA", OutputDir: "/out/sampleA"}
	job := Job{
		SampleID: "sampleA",
		Reads:    []string{"/in/sampleA_R1.fastq.gz", "/in/sampleA_R2.fastq.gz"},
		Paired:   true,
	}
	def := Define(sc, job, "/ref/starIndex", model.Resources{Threads: 8, MemoryGiB: 14}, config.Default())

	if len(def.Stages) != 2 {
		t.Fatalf("stages = %d, want STAR + IndexBAM", len(def.Stages))
	}
	star := def.Stages[0]
	joined := strings.Join(star.Command, " ")

	if !strings.Contains(joined, "--readFilesIn /in/sampleA_R1.fastq.gz /in/sampleA_R2.fastq.gz") {
		t.Errorf("mates not in order: %v", star.Command)
	}
	if !strings.Contains(joined, "--readFilesCommand zcat") {
		t.Errorf("compressed input without zcat: %v", star.Command)
	}
	if !strings.Contains(joined, "--runThreadN 8") {
		t.Errorf("thread count missing: %v", star.Command)
	}

	prefix := filepath.Join("/out/sampleA", "sampleA_")
	if def.CountFile != prefix+"ReadsPerGene.out.tab" {
		t.Errorf("CountFile = %q", def.CountFile)
	}
	if want := prefix + "Aligned.sortedByCoord.out.bam.bai"; def.Options.TerminalMarker != want {
		t.Errorf("TerminalMarker = %q, want %q", def.Options.TerminalMarker, want)
	}
}

func TestDefine_SingleEndUncompressed(t *testing.T) {
	sc := sample.Context{SampleID: "s", OutputDir: "/out/s"}
	job := Job{SampleID: "s", Reads: []string{"/in/s.fastq"}}
	def := Define(sc, job, "/ref/starIndex", model.Resources{Threads: 1, MemoryGiB: 1}, config.Default())

	joined := strings.Join(def.Stages[0].Command, " ")
	if strings.Contains(joined, "zcat") {
		t.Errorf("zcat added for uncompressed input: %v", def.Stages[0].Command)
	}
}

func TestDefine_IndexConsumesAlignerOutput(t *testing.T) {
	sc := sample.Context{SampleID: "s", OutputDir: "/out/s"}
	job := Job{SampleID: "s", Reads: []string{"/in/s.fq"}}
	def := Define(sc, job, "/ref/idx", model.Resources{Threads: 1, MemoryGiB: 1}, config.Default())

	star, index := def.Stages[0], def.Stages[1]
	found := false
	for _, out := range star.Outputs {
		if slices.Contains(index.Inputs, out) {
			found = true
		}
	}
	if !found {
		t.Errorf("IndexBAM inputs %v do not include a STAR output %v", index.Inputs, star.Outputs)
	}
}
