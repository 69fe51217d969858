package gitrepo

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an acquisition failed.
type ErrorKind string

const (
	ToolUnavailable ErrorKind = "tool_unavailable"
	OperationFailed ErrorKind = "operation_failed"
	Unknown         ErrorKind = "unknown"
)

// AcquisitionError is returned by Acquirer.Acquire. Detail carries the
// diagnostic (stderr excerpt or launch error) for observability.
type AcquisitionError struct {
	Kind   ErrorKind
	Repo   string
	Detail string
	Err    error
}

func (e *AcquisitionError) Error() string {
	switch e.Kind {
	case ToolUnavailable:
		return "git is not installed on this host"
	case OperationFailed:
		return fmt.Sprintf("git operation failed for %s: %s", e.Repo, e.Detail)
	default:
		return fmt.Sprintf("unexpected error acquiring %s: %s", e.Repo, e.Detail)
	}
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an AcquisitionError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var acqErr *AcquisitionError
	return errors.As(err, &acqErr) && acqErr.Kind == kind
}

// CommandError is returned by a VCS when the external process exits non-zero.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %v: %v: %s", e.Args, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
