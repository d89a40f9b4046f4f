package counts

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const header = "N_unmapped\t1\t1\t1\nN_multimapping\t2\t2\t2\nN_noFeature\t3\t3\t3\nN_ambiguous\t4\t4\t4\n"

func writeCountFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(header+body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMerge_SharedGenes(t *testing.T) {
	dir := t.TempDir()
	a := writeCountFile(t, dir, "sampleA_ReadsPerGene.out.tab", "G1\t5\nG2\t10\n")
	b := writeCountFile(t, dir, "sampleB_ReadsPerGene.out.tab", "G1\t3\nG2\t7\n")

	m, err := Merge([]string{a, b})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if want := []string{"sampleA", "sampleB"}; !slices.Equal(m.Samples, want) {
		t.Errorf("Samples = %v, want %v", m.Samples, want)
	}
	if want := []string{"G1", "G2"}; !slices.Equal(m.Genes, want) {
		t.Errorf("Genes = %v, want %v", m.Genes, want)
	}
	if want := []int64{5, 3}; !slices.Equal(m.Values["G1"], want) {
		t.Errorf("G1 = %v, want %v", m.Values["G1"], want)
	}
	if want := []int64{10, 7}; !slices.Equal(m.Values["G2"], want) {
		t.Errorf("G2 = %v, want %v", m.Values["G2"], want)
	}
}

func TestMerge_MissingGeneIsZero(t *testing.T) {
	dir := t.TempDir()
	a := writeCountFile(t, dir, "a_counts.tab", "G1\t5\n")
	b := writeCountFile(t, dir, "b_counts.tab", "G2\t7\n")

	m, err := Merge([]string{a, b})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if want := []int64{5, 0}; !slices.Equal(m.Values["G1"], want) {
		t.Errorf("G1 = %v, want %v", m.Values["G1"], want)
	}
	if want := []int64{0, 7}; !slices.Equal(m.Values["G2"], want) {
		t.Errorf("G2 = %v, want %v", m.Values["G2"], want)
	}
}

func TestMerge_SkipsSummaryRows(t *testing.T) {
	dir := t.TempDir()
	a := writeCountFile(t, dir, "a_counts.tab", "G1\t1\n")

	m, err := Merge([]string{a})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	for _, gene := range m.Genes {
		if strings.HasPrefix(gene, "N_") {
			t.Errorf("summary row %q leaked into matrix", gene)
		}
	}
}

func TestMerge_ExtraColumnsIgnored(t *testing.T) {
	dir := t.TempDir()
	// STAR writes four columns; only the first two matter.
	a := writeCountFile(t, dir, "a_counts.tab", "G1\t5\t100\t200\n")

	m, err := Merge([]string{a})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if want := []int64{5}; !slices.Equal(m.Values["G1"], want) {
		t.Errorf("G1 = %v, want %v", m.Values["G1"], want)
	}
}

func TestSampleName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/out/sampleA_ReadsPerGene.out.tab", "sampleA"},
		{"plain.tab", "plain.tab"},
		{"/x/a_b_c.tab", "a"},
	}
	for _, tt := range tests {
		if got := SampleName(tt.path); got != tt.want {
			t.Errorf("SampleName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWriteMatrix(t *testing.T) {
	dir := t.TempDir()
	a := writeCountFile(t, dir, "sampleA_counts.tab", "G2\t10\nG1\t5\n")
	b := writeCountFile(t, dir, "sampleB_counts.tab", "G1\t3\n")

	m, err := Merge([]string{a, b})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	out := filepath.Join(dir, "geneCounts.txt")
	if err := WriteMatrix(m, out); err != nil {
		t.Fatalf("WriteMatrix: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"gene\tsampleA\tsampleB",
		"G1\t5\t3",
		"G2\t10\t0",
	}
	if !slices.Equal(lines, want) {
		t.Errorf("matrix = %q, want %q", lines, want)
	}
}
