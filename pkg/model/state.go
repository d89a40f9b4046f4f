package model

// RunState represents the lifecycle state of a pipeline run.
type RunState string

const (
	RunStatePending   RunState = "PENDING"
	RunStateRunning   RunState = "RUNNING"
	RunStateCompleted RunState = "COMPLETED"
	RunStateFailed    RunState = "FAILED"
	RunStateSkipped   RunState = "SKIPPED"
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	return string(s)
}

// IsTerminal returns true if the run is in a final state.
func (s RunState) IsTerminal() bool {
	switch s {
	case RunStateCompleted, RunStateFailed, RunStateSkipped:
		return true
	}
	return false
}

// ValidRunTransitions defines the allowed state transitions for runs.
// SKIPPED is reached directly from PENDING when the terminal completion
// marker is already present.
var ValidRunTransitions = map[RunState][]RunState{
	RunStatePending: {RunStateRunning, RunStateSkipped},
	RunStateRunning: {RunStateCompleted, RunStateFailed},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s RunState) CanTransitionTo(next RunState) bool {
	for _, allowed := range ValidRunTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StageState represents the lifecycle state of a single stage within a run.
type StageState string

const (
	StageStatePending StageState = "PENDING"
	StageStateRunning StageState = "RUNNING"
	StageStateSuccess StageState = "SUCCESS"
	StageStateFailed  StageState = "FAILED"
	StageStateSkipped StageState = "SKIPPED"
)

// String returns the string representation of the stage state.
func (s StageState) String() string {
	return string(s)
}

// IsTerminal returns true if the stage is in a final state.
func (s StageState) IsTerminal() bool {
	switch s {
	case StageStateSuccess, StageStateFailed, StageStateSkipped:
		return true
	}
	return false
}

// ValidStageTransitions defines the allowed state transitions for stages.
var ValidStageTransitions = map[StageState][]StageState{
	StageStatePending: {StageStateRunning, StageStateSkipped},
	StageStateRunning: {StageStateSuccess, StageStateFailed},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s StageState) CanTransitionTo(next StageState) bool {
	for _, allowed := range ValidStageTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PipelineKind identifies which workflow produced a run.
type PipelineKind string

const (
	PipelineVariantCall PipelineKind = "variant-call"
	PipelineAlign       PipelineKind = "align"
)
