package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/varpipe/internal/sample"
	"github.com/me/varpipe/pkg/model"
)

// fakeRunner records invocations and simulates exit codes per program name.
type fakeRunner struct {
	calls     [][]string
	exitCodes map[string]int
	runErr    error
	stdout    string
}

func (f *fakeRunner) Run(_ context.Context, name string, args []string, stdout, _ io.Writer) (int, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.runErr != nil {
		return -1, f.runErr
	}
	if f.stdout != "" {
		io.WriteString(stdout, f.stdout)
	}
	if code, ok := f.exitCodes[name]; ok {
		return code, nil
	}
	return 0, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testContext(t *testing.T) sample.Context {
	t.Helper()
	sc, err := sample.Derive(filepath.Join(t.TempDir(), "s1.bam"), "")
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	return sc
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func TestRun_TerminalMarkerShortCircuits(t *testing.T) {
	sc := testContext(t)
	marker := sc.Artifact(".filtered.vcf.idx")
	touch(t, marker)

	fake := &fakeRunner{}
	r := NewRunner(testLogger(), fake, nil)

	stages := []Stage{{Name: "MarkDuplicates", Command: []string{"gatk", "MarkDuplicates"}}}
	res, err := r.Run(context.Background(), sc, stages, Options{TerminalMarker: marker})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.AlreadyDone {
		t.Errorf("AlreadyDone = false, want true")
	}
	if len(fake.calls) != 0 {
		t.Errorf("subprocesses invoked on completed pipeline: %v", fake.calls)
	}
	// The short circuit must not touch the logs either.
	if _, err := os.Stat(sc.LogPath); !os.IsNotExist(err) {
		t.Errorf("log file created on short-circuited run")
	}
}

func TestRun_SkipsStageWithExistingOutputs(t *testing.T) {
	sc := testContext(t)
	done := sc.Artifact(".dedupped.bam")
	touch(t, done)
	next := sc.Artifact(".split.bam")

	fake := &fakeRunner{}
	r := NewRunner(testLogger(), fake, nil)

	stages := []Stage{
		{Name: "MarkDuplicates", Command: []string{"tool-a"}, Outputs: []string{done}},
		{Name: "SplitNCigarReads", Command: []string{"tool-b"}, Inputs: []string{done}, Outputs: []string{next}},
	}
	res, err := r.Run(context.Background(), sc, stages, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.StagesSkipped != 1 || res.StagesRun != 1 {
		t.Errorf("skipped/run = %d/%d, want 1/1", res.StagesSkipped, res.StagesRun)
	}
	if len(fake.calls) != 1 || fake.calls[0][0] != "tool-b" {
		t.Errorf("calls = %v, want only tool-b", fake.calls)
	}

	data, err := os.ReadFile(sc.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "MarkDuplicates already run") {
		t.Errorf("log missing skip line, got: %s", data)
	}
}

func TestRun_FailFastStopsLaterStages(t *testing.T) {
	sc := testContext(t)

	fake := &fakeRunner{exitCodes: map[string]int{"tool-b": 3}}
	r := NewRunner(testLogger(), fake, nil)

	stages := []Stage{
		{Name: "first", Command: []string{"tool-a"}},
		{Name: "second", Command: []string{"tool-b"}},
		{Name: "third", Command: []string{"tool-c"}},
	}
	_, err := r.Run(context.Background(), sc, stages, Options{})

	var sfe *model.StageFailedError
	if !errors.As(err, &sfe) {
		t.Fatalf("err = %v, want StageFailedError", err)
	}
	if sfe.Stage != "second" || sfe.ExitCode != 3 {
		t.Errorf("StageFailedError = %+v, want stage second exit 3", sfe)
	}
	if len(fake.calls) != 2 {
		t.Errorf("calls = %v, third stage must never be invoked", fake.calls)
	}
}

func TestRun_MissingInputAborts(t *testing.T) {
	sc := testContext(t)
	missing := sc.Artifact(".nope.bam")

	fake := &fakeRunner{}
	r := NewRunner(testLogger(), fake, nil)

	stages := []Stage{{Name: "needy", Command: []string{"tool"}, Inputs: []string{missing}}}
	_, err := r.Run(context.Background(), sc, stages, Options{})

	var mie *model.MissingInputError
	if !errors.As(err, &mie) {
		t.Fatalf("err = %v, want MissingInputError", err)
	}
	if mie.Stage != "needy" || mie.Path != missing {
		t.Errorf("MissingInputError = %+v", mie)
	}
	if len(fake.calls) != 0 {
		t.Errorf("stage invoked despite missing input: %v", fake.calls)
	}
}

func TestRun_ToolOutputAppendsToLog(t *testing.T) {
	sc := testContext(t)

	fake := &fakeRunner{stdout: "tool says hi\n"}
	r := NewRunner(testLogger(), fake, nil)

	stages := []Stage{{Name: "noisy", Command: []string{"tool"}}}
	if _, err := r.Run(context.Background(), sc, stages, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(sc.LogPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "tool says hi") {
		t.Errorf("tool stdout not in log: %s", data)
	}
	if !strings.Contains(string(data), "run completed") {
		t.Errorf("completion timestamp missing: %s", data)
	}
}

func TestRun_ResetLogsTruncatesStaleContent(t *testing.T) {
	sc := testContext(t)
	touch(t, sc.LogPath)
	if err := os.WriteFile(sc.LogPath, []byte("stale from crashed attempt\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(testLogger(), &fakeRunner{}, nil)
	stages := []Stage{{Name: "only", Command: []string{"tool"}}}
	if _, err := r.Run(context.Background(), sc, stages, Options{ResetLogs: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, _ := os.ReadFile(sc.LogPath)
	if strings.Contains(string(data), "stale") {
		t.Errorf("stale content survived reset: %s", data)
	}
}

func TestRun_CleanupRemovesIntermediates(t *testing.T) {
	sc := testContext(t)
	inter := sc.Artifact(".dedupped.bam")
	touch(t, inter)

	r := NewRunner(testLogger(), &fakeRunner{}, nil)
	stages := []Stage{{Name: "only", Command: []string{"tool"}}}
	opts := Options{
		// One real intermediate plus one already-absent path; neither may
		// fail the run.
		Cleanup: []string{inter, sc.Artifact(".never-existed.bam")},
	}
	if _, err := r.Run(context.Background(), sc, stages, opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(inter); !os.IsNotExist(err) {
		t.Errorf("intermediate %s not removed", inter)
	}
}

func TestRun_RerunAfterSuccessIsNoOp(t *testing.T) {
	sc := testContext(t)
	marker := sc.Artifact(".filtered.vcf.idx")

	fake := &fakeRunner{stdout: ""}
	r := NewRunner(testLogger(), fake, nil)

	// First run produces the terminal marker as its final output.
	stages := []Stage{{
		Name:    "filter",
		Command: []string{"tool"},
		Outputs: []string{marker},
	}}
	if _, err := r.Run(context.Background(), sc, stages, Options{TerminalMarker: marker}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	touch(t, marker) // the external tool would have written this

	before := len(fake.calls)
	res, err := r.Run(context.Background(), sc, stages, Options{TerminalMarker: marker})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !res.AlreadyDone {
		t.Errorf("second run not short-circuited")
	}
	if len(fake.calls) != before {
		t.Errorf("second run invoked subprocesses: %v", fake.calls[before:])
	}
}

func TestRun_CommandStartFailureIsFatal(t *testing.T) {
	sc := testContext(t)

	fake := &fakeRunner{runErr: errors.New("executable file not found")}
	r := NewRunner(testLogger(), fake, nil)

	stages := []Stage{{Name: "ghost", Command: []string{"no-such-tool"}}}
	_, err := r.Run(context.Background(), sc, stages, Options{})
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Errorf("err = %v, want error naming stage", err)
	}
}
