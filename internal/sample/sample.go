// Package sample derives per-sample identity and on-disk layout from an
// input artifact path. The layout is stable across repeated invocations so
// the runner can detect prior progress in the same directory.
package sample

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Context is the per-sample identity and output layout for one pipeline run.
type Context struct {
	// SampleID is the input's base filename up to the first dot,
	// e.g. "/data/sample1.rnaseq.bam" -> "sample1".
	SampleID string

	// OutputDir holds every artifact the pipeline writes for this sample.
	OutputDir string

	// LogPath and ErrPath are the append-only text logs inside OutputDir.
	LogPath string
	ErrPath string
}

// Derive computes the Context for inputPath and creates its output directory.
// If outputRoot is empty, the output directory is placed next to the input.
// Creation is idempotent; only filesystem permission failures propagate.
func Derive(inputPath, outputRoot string) (Context, error) {
	id := ID(inputPath)

	root := outputRoot
	if root == "" {
		root = filepath.Dir(inputPath)
	}
	outDir := filepath.Join(root, id)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Context{}, fmt.Errorf("create output dir %s: %w", outDir, err)
	}

	return Context{
		SampleID:  id,
		OutputDir: outDir,
		LogPath:   filepath.Join(outDir, id+".log"),
		ErrPath:   filepath.Join(outDir, id+".err"),
	}, nil
}

// ForID builds the Context for an already-known sample identifier under
// outputRoot, creating the output directory. Used by workflows whose sample
// identity comes from input grouping rather than a single artifact path.
func ForID(id, outputRoot string) (Context, error) {
	outDir := filepath.Join(outputRoot, id)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Context{}, fmt.Errorf("create output dir %s: %w", outDir, err)
	}
	return Context{
		SampleID:  id,
		OutputDir: outDir,
		LogPath:   filepath.Join(outDir, id+".log"),
		ErrPath:   filepath.Join(outDir, id+".err"),
	}, nil
}

// ID returns the sample identifier for a path: the base filename stripped of
// everything from the first dot onward.
func ID(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

// Artifact returns the path of a named artifact inside the sample's output
// directory, prefixed with the sample ID (e.g. Artifact(".split.bam") for
// "sample1" yields "<outputDir>/sample1.split.bam").
func (c Context) Artifact(suffix string) string {
	return filepath.Join(c.OutputDir, c.SampleID+suffix)
}
