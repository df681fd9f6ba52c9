package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pders01/checkpoint/internal/models"
)

// IsInitialized checks if the working directory already holds a repository
func (c *CLI) IsInitialized() bool {
	info, err := os.Stat(filepath.Join(c.handle.Dir, ".git"))
	return err == nil && info.IsDir()
}

// Init creates the repository on the default branch and sets the commit identity.
// The first failing step aborts; earlier steps are not rolled back.
func (c *CLI) Init(ctx context.Context) error {
	steps := [][]string{
		{"init", "-b", c.opts.DefaultBranch},
		{"config", "user.name", c.opts.AuthorName},
		{"config", "user.email", c.opts.AuthorEmail},
	}
	for _, args := range steps {
		if _, err := c.run(ctx, args...); err != nil {
			return newCommandError(strings.Join(args[:2], " "), err)
		}
	}
	c.log.V(1).Info("initialized repository", "branch", c.opts.DefaultBranch)
	return nil
}

// CommitAll stages every file in the working tree and commits it with message.
// A failed commit after a successful stage leaves the files staged.
func (c *CLI) CommitAll(ctx context.Context, message string) error {
	if _, err := c.run(ctx, "add", "--all"); err != nil {
		return newCommandError("add", err)
	}
	return c.commit(ctx, "-m", message)
}

// CommitEmpty records a revision without any file changes
func (c *CLI) CommitEmpty(ctx context.Context, message string) error {
	return c.commit(ctx, "--allow-empty", "-m", message)
}

func (c *CLI) commit(ctx context.Context, args ...string) error {
	args = append([]string{"commit", "--no-verify"}, args...)
	if _, err := c.run(ctx, args...); err != nil {
		if isNothingToCommit(err) {
			return newCommandError("commit", fmt.Errorf("%w: %w", ErrNothingToCommit, err))
		}
		return newCommandError("commit", err)
	}
	return nil
}

func isNothingToCommit(err error) bool {
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	out := exitErr.Stdout + exitErr.Stderr
	return strings.Contains(out, "nothing to commit") ||
		strings.Contains(out, "no changes added to commit")
}

// History returns up to limit snapshots, newest first, with the bootstrap
// revision excluded. The default branch is checked out first so the log
// always starts from its tip.
func (c *CLI) History(ctx context.Context, limit int) ([]models.Snapshot, error) {
	if limit <= 0 {
		limit = 1
	}
	if _, err := c.run(ctx, "checkout", c.opts.DefaultBranch); err != nil {
		return nil, newCommandError("checkout", err)
	}

	res, err := c.run(ctx, "log", "--pretty=format:"+HistoryFormat, fmt.Sprintf("-n%d", limit))
	if err != nil {
		return nil, newCommandError("log", err)
	}

	snapshots, parseErrs := ParseHistory(res.Stdout)
	for _, perr := range parseErrs {
		c.log.Info("skipping unparseable history line", "line", perr.Line, "reason", perr.Reason)
	}
	return snapshots, nil
}

// Checkout switches the working tree to revisionID, overwriting local files.
// Callers are responsible for backing up uncommitted work first.
func (c *CLI) Checkout(ctx context.Context, revisionID string) error {
	if _, err := c.run(ctx, "checkout", revisionID); err != nil {
		if isUnknownRevision(err) {
			return newCommandError("checkout", fmt.Errorf("%w: revision %s: %w", ErrNotFound, revisionID, err))
		}
		return newCommandError("checkout", err)
	}
	return nil
}

func isUnknownRevision(err error) bool {
	stderr := Stderr(err)
	return strings.Contains(stderr, "did not match") ||
		strings.Contains(stderr, "unknown revision") ||
		strings.Contains(stderr, "not a tree") ||
		strings.Contains(stderr, "bad revision")
}

// HasUncommittedChanges checks for pending modifications, including untracked files
func (c *CLI) HasUncommittedChanges(ctx context.Context) (bool, error) {
	res, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, newCommandError("status", err)
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// RepositorySizeEstimate reports the object store size in bytes.
// Output that cannot be parsed yields 0 rather than an error.
func (c *CLI) RepositorySizeEstimate(ctx context.Context) (int64, error) {
	res, err := c.run(ctx, "count-objects", "-v")
	if err != nil {
		return 0, newCommandError("count-objects", err)
	}
	return ParseCountObjects(res.Stdout), nil
}

// ChangedFiles lists the files that differ between revisionID and the working tree
func (c *CLI) ChangedFiles(ctx context.Context, revisionID string) ([]FileChange, error) {
	res, err := c.run(ctx, "diff", "--name-status", revisionID, "--")
	if err != nil {
		if isUnknownRevision(err) {
			return nil, newCommandError("diff", fmt.Errorf("%w: revision %s: %w", ErrNotFound, revisionID, err))
		}
		return nil, newCommandError("diff", err)
	}
	return ParseNameStatus(res.Stdout), nil
}

// Head describes the revision currently checked out, without switching branches
func (c *CLI) Head(ctx context.Context) (models.Snapshot, error) {
	res, err := c.run(ctx, "log", "-1", "--pretty=format:"+HistoryFormat, "HEAD")
	if err != nil {
		return models.Snapshot{}, newCommandError("log", err)
	}
	snapshot, perr := parseHistoryLine(strings.TrimSpace(res.Stdout))
	if perr != nil {
		return models.Snapshot{}, newCommandError("log", perr)
	}
	return snapshot, nil
}

// IsDetached reports whether HEAD points at a revision instead of a branch,
// which is the state a restore leaves behind.
func (c *CLI) IsDetached(ctx context.Context) (bool, error) {
	_, err := c.run(ctx, "symbolic-ref", "-q", "HEAD")
	if err == nil {
		return false, nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode == 1 {
		return true, nil
	}
	return false, newCommandError("symbolic-ref", err)
}
