package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/checkpoint/internal/config"
	"github.com/pders01/checkpoint/internal/git"
	"github.com/pders01/checkpoint/internal/models"
	"github.com/pders01/checkpoint/internal/snapshot"
)

// commandContext tolerates a nil command so run functions can be called directly
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// resolveProjectDir returns the absolute game directory the command works on
func resolveProjectDir() (string, error) {
	dir := projectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid directory %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot open directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// locateGit resolves the backend executable from config, PATH and fallbacks
func locateGit() string {
	return git.NewLocator(config.GitPath(), config.GitCandidates()).Locate()
}

// openProject builds the backend and manager for the current directory
func openProject(observer snapshot.Observer) (*snapshot.Manager, *git.CLI, error) {
	dir, err := resolveProjectDir()
	if err != nil {
		return nil, nil, err
	}
	handle := git.Handle{Dir: dir, Executable: locateGit()}
	backend := git.NewCLI(handle, config.BackendOptions(), appLog)
	appLog.V(1).Info("opening project", "dir", backend.Path(), "git", backend.Executable())
	m := snapshot.NewManager(backend, appLog,
		snapshot.WithObserver(observer),
		snapshot.WithHistoryLimit(config.HistoryLimit()),
	)
	return m, backend, nil
}

// openInitializedProject is openProject for commands that need existing snapshots
func openInitializedProject(observer snapshot.Observer) (*snapshot.Manager, *git.CLI, error) {
	m, backend, err := openProject(observer)
	if err != nil {
		return nil, nil, err
	}
	if !backend.IsInitialized() {
		return nil, nil, fmt.Errorf("%w: %s (run 'checkpoint init' or 'checkpoint save' first)", git.ErrNotInitialized, backend.Path())
	}
	return m, backend, nil
}

// progressPrinter shows progress events on stdout
func progressPrinter() snapshot.Observer {
	return snapshot.ObserverFuncs{
		OnProgress: func(e models.ProgressEvent) {
			if verbose {
				fmt.Printf("  [%3d%%] %s\n", e.Percentage, e.Status)
			}
		},
	}
}

// describeError adds a hint for the failures users can act on
func describeError(err error) error {
	switch {
	case errors.Is(err, git.ErrStartFailure):
		return fmt.Errorf("%w\n  git could not be started; install git or set git.path in the config (see 'checkpoint doctor')", err)
	case errors.Is(err, git.ErrTimeout):
		return fmt.Errorf("%w\n  git took too long; raise git.finish_timeout for large game directories", err)
	default:
		return err
	}
}
