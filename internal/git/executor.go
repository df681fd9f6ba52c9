package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

const (
	DefaultStartTimeout  = 5 * time.Second
	DefaultFinishTimeout = 30 * time.Second

	// pipeDrainDelay bounds how long Wait keeps reading pipes that a killed
	// process left open through its own children.
	pipeDrainDelay = 2 * time.Second
)

// CommandResult is the captured outcome of one backend process
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor runs the backend binary. Implementations spawn exactly one process
// per call and never retry.
type Executor interface {
	Run(ctx context.Context, workingDir string, args []string, startTimeout, finishTimeout time.Duration) (CommandResult, error)
}

// ProcessExecutor is the os/exec backed Executor
type ProcessExecutor struct {
	Binary string
	log    logr.Logger
}

// NewProcessExecutor creates an executor for the given binary path
func NewProcessExecutor(binary string, log logr.Logger) *ProcessExecutor {
	return &ProcessExecutor{Binary: binary, log: log.WithName("executor")}
}

// Run launches the binary in workingDir and waits for it.
//
// ErrStartFailure is returned when the process is not running within
// startTimeout. ErrTimeout is returned when it has not exited within
// finishTimeout, in which case it has been killed and reaped. A non-zero
// exit produces *ExitError. On success Stdout has its trailing newline removed.
//
// Cancelling ctx does not stop a running process: killing git mid-write
// leaves index.lock behind. The two timeouts are the only bound.
func (e *ProcessExecutor) Run(_ context.Context, workingDir string, args []string, startTimeout, finishTimeout time.Duration) (CommandResult, error) {
	var result CommandResult
	if startTimeout <= 0 {
		startTimeout = DefaultStartTimeout
	}
	if finishTimeout <= 0 {
		finishTimeout = DefaultFinishTimeout
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(e.Binary, args...)
	cmd.Dir = workingDir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = pipeDrainDelay

	begin := time.Now()
	log := e.log.WithValues("args", args, "dir", workingDir)

	started := make(chan error, 1)
	go func() { started <- cmd.Start() }()

	startTimer := time.NewTimer(startTimeout)
	defer startTimer.Stop()

	select {
	case err := <-started:
		if err != nil {
			log.V(1).Info("process failed to start", "error", err.Error())
			return result, fmt.Errorf("%w: %s: %v", ErrStartFailure, e.Binary, err)
		}
	case <-startTimer.C:
		go reapLate(cmd, started)
		log.V(1).Info("process start timed out", "timeout", startTimeout.String())
		return result, fmt.Errorf("%w: %s did not start within %s", ErrStartFailure, e.Binary, startTimeout)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	finishTimer := time.NewTimer(finishTimeout)
	defer finishTimer.Stop()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-finishTimer.C:
		_ = cmd.Process.Kill()
		<-done
		log.Info("process killed after timeout", "timeout", finishTimeout.String())
		return result, fmt.Errorf("%w: %s %s exceeded %s", ErrTimeout, e.Binary, strings.Join(args, " "), finishTimeout)
	}

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	log.V(1).Info("process finished", "exitCode", result.ExitCode, "duration", time.Since(begin).String())

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) && result.ExitCode == 0 {
			return result, fmt.Errorf("waiting for %s: %w", e.Binary, waitErr)
		}
	}
	if result.ExitCode != 0 {
		return result, &ExitError{
			Args:     args,
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
	}

	result.Stdout = strings.TrimRight(result.Stdout, "\r\n")
	return result, nil
}

// reapLate kills and waits for a process whose Start returned after the
// caller had already given up on it.
func reapLate(cmd *exec.Cmd, started <-chan error) {
	if err := <-started; err == nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
}
