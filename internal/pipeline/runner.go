// Package pipeline is a resumable, idempotent, multi-stage job runner.
// Stages run strictly sequentially; each stage's declared outputs double as
// its completion markers, so an interrupted run can be re-invoked and picks
// up where it left off.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/me/varpipe/internal/logging"
	"github.com/me/varpipe/internal/sample"
	"github.com/me/varpipe/pkg/model"
)

// Options configures one run.
type Options struct {
	// Kind labels the run in logs and the journal.
	Kind model.PipelineKind

	// TerminalMarker is the artifact whose presence means the whole pipeline
	// is already done for this sample. Checked before anything else; when
	// present no subprocess is invoked and no log is touched.
	TerminalMarker string

	// ResetLogs truncates stale log/err files from a previous failed attempt
	// before appending fresh entries. When false, logs always append.
	ResetLogs bool

	// Cleanup lists intermediate artifacts superseded by later-stage outputs,
	// removed after all stages complete. Removal failures are logged and
	// swallowed; the run is still reported successful.
	Cleanup []string
}

// Result summarizes a finished run.
type Result struct {
	RunID string

	// AlreadyDone is true when the terminal marker short-circuited the run.
	AlreadyDone bool

	StagesRun     int
	StagesSkipped int
}

// Runner executes an ordered list of stages against a sample context.
// One Runner may be reused across samples; all per-run state lives on the
// stack of Run.
type Runner struct {
	logger   *slog.Logger
	exec     CommandRunner
	observer Observer
}

// NewRunner creates a Runner. A nil observer disables journaling.
func NewRunner(logger *slog.Logger, exec CommandRunner, observer Observer) *Runner {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Runner{
		logger:   logger.With("component", "runner"),
		exec:     exec,
		observer: observer,
	}
}

// Run executes stages in order against ctx's sample. Fatal errors
// (MissingInputError, StageFailedError) abort immediately; the partial
// output of a failing stage is left in place for inspection.
func (r *Runner) Run(ctx context.Context, sc sample.Context, stages []Stage, opts Options) (Result, error) {
	runID := uuid.NewString()
	log := r.logger.With("run_id", runID, "sample", sc.SampleID)

	res := Result{RunID: runID}

	// Whole-run short circuit: the primary idempotence contract.
	if opts.TerminalMarker != "" {
		if _, err := os.Stat(opts.TerminalMarker); err == nil {
			log.Info("pipeline already completed", "marker", opts.TerminalMarker)
			r.observer.RunStarted(runID, opts.Kind, sc.SampleID)
			r.observer.RunFinished(runID, model.RunStateSkipped, "")
			res.AlreadyDone = true
			return res, nil
		}
	}

	sink, err := logging.OpenFileSink(sc.LogPath, sc.ErrPath, opts.ResetLogs)
	if err != nil {
		return res, err
	}
	defer sink.Close()

	r.observer.RunStarted(runID, opts.Kind, sc.SampleID)
	sink.Timestamp("run started")

	for _, stage := range stages {
		if stage.Completed() {
			log.Info("stage already run, skipping", "stage", stage.Name)
			sink.Line("%s already run", stage.Name)
			r.observer.StageChanged(runID, stage.Name, model.StageStateSkipped, 0)
			res.StagesSkipped++
			continue
		}

		if missing := firstMissing(stage.Inputs); missing != "" {
			err := &model.MissingInputError{Stage: stage.Name, Path: missing}
			log.Error("missing stage input", "stage", stage.Name, "path", missing)
			sink.Line("ERROR: %v", err)
			r.observer.StageChanged(runID, stage.Name, model.StageStateFailed, -1)
			r.observer.RunFinished(runID, model.RunStateFailed, err.Error())
			return res, err
		}

		if len(stage.Command) == 0 {
			err := fmt.Errorf("stage %s: empty command", stage.Name)
			r.observer.RunFinished(runID, model.RunStateFailed, err.Error())
			return res, err
		}

		log.Info("running stage", "stage", stage.Name, "command", stage.Command)
		sink.Line("running %s: %v", stage.Name, stage.Command)
		r.observer.StageChanged(runID, stage.Name, model.StageStateRunning, 0)

		exitCode, runErr := r.exec.Run(ctx, stage.Command[0], stage.Command[1:], sink.Stdout(), sink.Stderr())
		if runErr != nil {
			err := fmt.Errorf("stage %s: run command: %w", stage.Name, runErr)
			log.Error("stage could not be started", "stage", stage.Name, "error", runErr)
			sink.Line("ERROR: %v", err)
			r.observer.StageChanged(runID, stage.Name, model.StageStateFailed, exitCode)
			r.observer.RunFinished(runID, model.RunStateFailed, err.Error())
			return res, err
		}
		if exitCode != 0 {
			err := &model.StageFailedError{Stage: stage.Name, ExitCode: exitCode}
			log.Error("stage failed", "stage", stage.Name, "exit_code", exitCode)
			sink.Line("ERROR: %v", err)
			r.observer.StageChanged(runID, stage.Name, model.StageStateFailed, exitCode)
			r.observer.RunFinished(runID, model.RunStateFailed, err.Error())
			return res, err
		}

		log.Info("stage completed", "stage", stage.Name)
		r.observer.StageChanged(runID, stage.Name, model.StageStateSuccess, 0)
		res.StagesRun++
	}

	r.cleanup(log, sink, opts.Cleanup)

	sink.Timestamp("run completed")
	log.Info("pipeline completed", "stages_run", res.StagesRun, "stages_skipped", res.StagesSkipped)
	r.observer.RunFinished(runID, model.RunStateCompleted, "")
	return res, nil
}

// cleanup removes superseded intermediates. Failures are warnings, never
// run failures.
func (r *Runner) cleanup(log *slog.Logger, sink *logging.FileSink, paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			log.Warn("cleanup failed", "path", p, "error", err)
			sink.Line("WARN: cleanup %s: %v", p, err)
			continue
		}
		log.Debug("removed intermediate", "path", p)
	}
}

func firstMissing(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return p
		}
	}
	return ""
}
