package model

import "fmt"

// ArgumentError reports a missing required argument or a referenced path
// that does not exist. It is raised before any on-disk state is created.
type ArgumentError struct {
	Arg     string
	Message string
}

func (e *ArgumentError) Error() string {
	if e.Arg == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Arg, e.Message)
}

// NewArgumentError creates an ArgumentError for the named argument.
func NewArgumentError(arg, format string, a ...any) *ArgumentError {
	return &ArgumentError{Arg: arg, Message: fmt.Sprintf(format, a...)}
}

// MissingInputError reports that a stage's declared input artifact is absent
// at the point the stage is about to run. In normal sequential use this
// cannot happen; it indicates external interference or a corrupted prior run.
type MissingInputError struct {
	Stage string
	Path  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("stage %s: required input %s does not exist", e.Stage, e.Path)
}

// StageFailedError reports a stage subprocess that exited non-zero.
// The partial output of the failing stage, if any, is left in place for
// manual inspection.
type StageFailedError struct {
	Stage    string
	ExitCode int
}

func (e *StageFailedError) Error() string {
	return fmt.Sprintf("stage %s failed with exit code %d", e.Stage, e.ExitCode)
}
