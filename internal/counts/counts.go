// Package counts merges per-sample gene-count tables (the aligner's
// ReadsPerGene output convention) into a single matrix keyed by gene
// identifier.
package counts

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// summaryRows is the number of non-gene header/summary rows at the top of
// each count file (unmapped/multimapping/noFeature/ambiguous in the known
// aligner output convention).
const summaryRows = 4

// Matrix is the merged result: one row per distinct gene across all inputs,
// one column per input file in input order.
type Matrix struct {
	// Samples are the column headers, derived from each input filename's
	// first underscore-delimited segment.
	Samples []string

	// Genes is the sorted union of gene identifiers.
	Genes []string

	// Values maps gene -> per-sample counts, index-aligned with Samples.
	// A gene absent from a sample's file is recorded as 0.
	Values map[string][]int64
}

// Merge reads the given count files and builds the merged matrix. Each file
// is a two-or-more-column table; only the first two columns are used.
func Merge(files []string) (*Matrix, error) {
	m := &Matrix{Values: make(map[string][]int64)}

	for col, path := range files {
		m.Samples = append(m.Samples, SampleName(path))

		counts, err := readCounts(path)
		if err != nil {
			return nil, err
		}
		for gene, n := range counts {
			row, ok := m.Values[gene]
			if !ok {
				row = make([]int64, len(files))
				m.Values[gene] = row
			}
			row[col] = n
		}
	}

	m.Genes = make([]string, 0, len(m.Values))
	for gene := range m.Values {
		m.Genes = append(m.Genes, gene)
	}
	sort.Strings(m.Genes)

	return m, nil
}

// SampleName derives a column header from a count file path: the base
// filename's first underscore-delimited segment.
func SampleName(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "_"); i >= 0 {
		return base[:i]
	}
	return base
}

// WriteMatrix writes the matrix as a tab-separated table with a leading
// "gene" column, suitable as the merged geneCounts.txt at an output root.
func WriteMatrix(m *Matrix, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "gene\t%s\n", strings.Join(m.Samples, "\t"))
	for _, gene := range m.Genes {
		fmt.Fprint(w, gene)
		for _, n := range m.Values[gene] {
			fmt.Fprintf(w, "\t%d", n)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readCounts(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open count file: %w", err)
	}
	defer f.Close()

	counts := make(map[string]int64)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line <= summaryRows {
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad count %q: %w", path, line, fields[1], err)
		}
		counts[fields[0]] = n
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read count file %s: %w", path, err)
	}
	return counts, nil
}
