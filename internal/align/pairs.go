// Package align discovers raw sequencing inputs in a directory, groups them
// into per-sample alignment jobs, and defines the STAR invocation for each
// job. Jobs run through the same pipeline runner as the calling workflow.
package align

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// readSuffixes are the recognized raw-read file extensions, longest first so
// suffix stripping is unambiguous.
var readSuffixes = []string{".fastq.gz", ".fq.gz", ".fastq", ".fq"}

const (
	mate1Marker = "_R1"
	mate2Marker = "_R2"
)

// Job is one per-sample alignment unit: a single read file, or an ordered
// mate1/mate2 pair.
type Job struct {
	SampleID string

	// Reads holds one file for single-end input, two (mate1 then mate2)
	// for paired-end.
	Reads []string

	Paired bool
}

// GroupInputs enumerates recognized read files under dir and groups them
// into jobs. allowList, when non-empty, keeps only files whose name contains
// one of its entries. A first mate whose computed second-mate counterpart is
// absent is dropped with a warning, not an error. Jobs are returned in
// filesystem enumeration order; callers must not depend on it for
// correctness.
func GroupInputs(dir string, allowList []string, logger *slog.Logger) ([]Job, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", dir, err)
	}

	var jobs []Job
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		suffix := matchSuffix(name)
		if suffix == "" {
			continue
		}
		if len(allowList) > 0 && !matchesAny(name, allowList) {
			continue
		}

		base := strings.TrimSuffix(name, suffix)
		switch {
		case strings.Contains(base, mate2Marker):
			// Picked up as the mate of its R1 counterpart.
			continue
		case strings.Contains(base, mate1Marker):
			mate := strings.Replace(name, mate1Marker, mate2Marker, 1)
			matePath := filepath.Join(dir, mate)
			if _, err := os.Stat(matePath); err != nil {
				logger.Warn("dropping read file without second mate",
					"file", name, "expected_mate", mate)
				continue
			}
			jobs = append(jobs, Job{
				SampleID: sampleFromBase(base),
				Reads:    []string{filepath.Join(dir, name), matePath},
				Paired:   true,
			})
		default:
			jobs = append(jobs, Job{
				SampleID: sampleFromBase(base),
				Reads:    []string{filepath.Join(dir, name)},
			})
		}
	}
	return jobs, nil
}

// ReadAllowList loads a line-delimited sample identifier file. Blank lines
// and leading/trailing whitespace are ignored.
func ReadAllowList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample list: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			ids = append(ids, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read sample list: %w", err)
	}
	return ids, nil
}

func matchSuffix(name string) string {
	for _, s := range readSuffixes {
		if strings.HasSuffix(name, s) {
			return s
		}
	}
	return ""
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func sampleFromBase(base string) string {
	if i := strings.Index(base, mate1Marker); i >= 0 {
		// Drop the mate marker and anything after it (lane suffixes etc.).
		return strings.TrimRight(base[:i], "_")
	}
	return base
}
