package pipeline

import "github.com/me/varpipe/pkg/model"

// Observer receives run and stage lifecycle events. The journal implements
// this; observer failures must never fail a run, so implementations swallow
// their own errors.
type Observer interface {
	RunStarted(runID string, kind model.PipelineKind, sampleID string)
	StageChanged(runID, stage string, state model.StageState, exitCode int)
	RunFinished(runID string, state model.RunState, errMsg string)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) RunStarted(string, model.PipelineKind, string)      {}
func (NopObserver) StageChanged(string, string, model.StageState, int) {}
func (NopObserver) RunFinished(string, model.RunState, string)         {}
