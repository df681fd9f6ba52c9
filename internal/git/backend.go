package git

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/pders01/checkpoint/internal/models"
)

// Backend is the set of repository capabilities the snapshot manager relies on.
// The CLI type is the subprocess implementation; tests substitute fakes.
type Backend interface {
	Path() string
	IsInitialized() bool
	Init(ctx context.Context) error
	CommitAll(ctx context.Context, message string) error
	CommitEmpty(ctx context.Context, message string) error
	History(ctx context.Context, limit int) ([]models.Snapshot, error)
	Checkout(ctx context.Context, revisionID string) error
	HasUncommittedChanges(ctx context.Context) (bool, error)
	RepositorySizeEstimate(ctx context.Context) (int64, error)
	ChangedFiles(ctx context.Context, revisionID string) ([]FileChange, error)
	Head(ctx context.Context) (models.Snapshot, error)
	IsDetached(ctx context.Context) (bool, error)
}

// Handle identifies one managed project: its working directory and the
// backend executable that operates on it.
type Handle struct {
	Dir        string
	Executable string
}

// Options tunes a CLI backend
type Options struct {
	DefaultBranch string
	AuthorName    string
	AuthorEmail   string
	StartTimeout  time.Duration
	FinishTimeout time.Duration
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		DefaultBranch: "main",
		AuthorName:    "Checkpoint User",
		AuthorEmail:   "checkpoint@local",
		StartTimeout:  DefaultStartTimeout,
		FinishTimeout: DefaultFinishTimeout,
	}
}

// FileChange is one entry of a revision diff
type FileChange struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

// CLI drives the git command line for a single working directory
type CLI struct {
	handle   Handle
	executor Executor
	opts     Options
	log      logr.Logger
}

var _ Backend = (*CLI)(nil)

// NewCLI creates a backend that spawns handle.Executable for each operation
func NewCLI(handle Handle, opts Options, log logr.Logger) *CLI {
	return NewCLIWithExecutor(handle, NewProcessExecutor(handle.Executable, log), opts, log)
}

// NewCLIWithExecutor creates a backend that runs its commands through executor
func NewCLIWithExecutor(handle Handle, executor Executor, opts Options, log logr.Logger) *CLI {
	defaults := DefaultOptions()
	if opts.DefaultBranch == "" {
		opts.DefaultBranch = defaults.DefaultBranch
	}
	if opts.AuthorName == "" {
		opts.AuthorName = defaults.AuthorName
	}
	if opts.AuthorEmail == "" {
		opts.AuthorEmail = defaults.AuthorEmail
	}
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = defaults.StartTimeout
	}
	if opts.FinishTimeout <= 0 {
		opts.FinishTimeout = defaults.FinishTimeout
	}
	return &CLI{
		handle:   handle,
		executor: executor,
		opts:     opts,
		log:      log.WithName("git"),
	}
}

// Path returns the working directory
func (c *CLI) Path() string {
	return c.handle.Dir
}

// Executable returns the backend binary this CLI spawns
func (c *CLI) Executable() string {
	return c.handle.Executable
}

func (c *CLI) run(ctx context.Context, args ...string) (CommandResult, error) {
	return c.executor.Run(ctx, c.handle.Dir, args, c.opts.StartTimeout, c.opts.FinishTimeout)
}
