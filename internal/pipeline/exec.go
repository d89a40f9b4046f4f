package pipeline

import (
	"context"
	"io"
	"os/exec"
)

// CommandRunner abstracts subprocess execution for testing. The real
// implementation blocks until the process exits; no timeout is enforced.
type CommandRunner interface {
	// Run executes name with args, streaming output to stdout and stderr.
	// A non-zero exit status is reported through exitCode, not err; err is
	// reserved for failures to run at all (e.g. binary not found).
	Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (exitCode int, err error)
}

// osCommandRunner is the real implementation using os/exec.
type osCommandRunner struct{}

// NewOSCommandRunner returns the CommandRunner backed by os/exec.
func NewOSCommandRunner() CommandRunner {
	return &osCommandRunner{}
}

func (r *osCommandRunner) Run(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	runErr := cmd.Run()
	switch e := runErr.(type) {
	case nil:
		return 0, nil
	case *exec.ExitError:
		return e.ExitCode(), nil
	default:
		return -1, runErr
	}
}

// LookPath reports whether an executable can be resolved via the process's
// search path. Used for pre-run tool discovery.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
