package git

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors that can be used with errors.Is()
var (
	// ErrStartFailure indicates the backend process did not begin running
	ErrStartFailure = errors.New("backend process failed to start")

	// ErrTimeout indicates the backend process did not finish in time and was killed
	ErrTimeout = errors.New("backend process timed out")

	// ErrNotFound indicates an unknown revision
	ErrNotFound = errors.New("not found")

	// ErrNotImplemented indicates a permanently unsupported operation
	ErrNotImplemented = errors.New("not implemented")

	// ErrNothingToCommit indicates a commit found no changes to record
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrNotInitialized indicates the working directory has no repository yet
	ErrNotInitialized = errors.New("repository not initialized")
)

// ExitError is returned when the backend exits with a non-zero code.
// Stderr carries the raw backend text so the UI can show it.
type ExitError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Error implements the error interface with the backend's own message
func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	if msg == "" {
		return fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("exit status %d: %s", e.ExitCode, msg)
}

// ParseError describes a backend output line that could not be understood.
// It is recoverable: the line is dropped and the call still succeeds.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Line, e.Reason)
}

// CommandError names the repository operation whose backend step failed
type CommandError struct {
	Operation string
	Err       error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}

func newCommandError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Operation: operation, Err: err}
}

// Stderr extracts the raw backend stderr from err, if any
func Stderr(err error) string {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return strings.TrimSpace(exitErr.Stderr)
	}
	return ""
}
