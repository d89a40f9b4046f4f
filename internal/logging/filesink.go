package logging

import (
	"fmt"
	"io"
	"os"
	"time"
)

// FileSink is the per-sample log/err file pair that receives the stdout and
// stderr of external tool invocations. It is opened once per run with append
// semantics and passed into the runner explicitly; nothing in the process
// holds a global handle to it.
type FileSink struct {
	out *os.File
	err *os.File
}

// OpenFileSink opens (creating if needed) the log and err files in append
// mode. If reset is true, stale content from a previous failed attempt is
// truncated first.
func OpenFileSink(logPath, errPath string, reset bool) (*FileSink, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if reset {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	out, err := os.OpenFile(logPath, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	errf, err := os.OpenFile(errPath, flags, 0o644)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("open err file: %w", err)
	}
	return &FileSink{out: out, err: errf}, nil
}

// Stdout returns the writer external tools should use for standard output.
func (s *FileSink) Stdout() io.Writer { return s.out }

// Stderr returns the writer external tools should use for standard error.
func (s *FileSink) Stderr() io.Writer { return s.err }

// Line appends a single formatted line to the log file.
func (s *FileSink) Line(format string, a ...any) {
	fmt.Fprintf(s.out, format+"\n", a...)
}

// Timestamp appends a timestamped marker line to the log file, e.g. the
// completion line written after the last stage.
func (s *FileSink) Timestamp(label string) {
	fmt.Fprintf(s.out, "%s: %s\n", label, time.Now().Format(time.RFC3339))
}

// Close closes both files. Safe to call once after the run finishes.
func (s *FileSink) Close() error {
	err1 := s.out.Close()
	err2 := s.err.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
