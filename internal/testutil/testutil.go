package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TempProject is a temporary game directory for tests that drive real git.
// It starts without a repository.
type TempProject struct {
	Path string
	T    *testing.T
}

// RequireGit skips the test when no git binary is on PATH
func RequireGit(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git not available on PATH")
	}
	return path
}

// NewTempProject creates a new temporary project directory
func NewTempProject(t *testing.T) *TempProject {
	t.Helper()
	RequireGit(t)

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	return &TempProject{Path: dir, T: t}
}

// NewTempRepo creates a project with its own repository and identity,
// bypassing the code under test.
func NewTempRepo(t *testing.T) *TempProject {
	t.Helper()
	p := NewTempProject(t)
	p.Git("init", "-b", "main")
	p.Git("config", "user.name", "Test User")
	p.Git("config", "user.email", "test@example.com")
	return p
}

// CreateFile creates a file in the project
func (p *TempProject) CreateFile(name, content string) {
	p.T.Helper()
	path := filepath.Join(p.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		p.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		p.T.Fatalf("failed to create file: %v", err)
	}
}

// ReadFile returns the current content of a project file
func (p *TempProject) ReadFile(name string) string {
	p.T.Helper()
	data, err := os.ReadFile(filepath.Join(p.Path, name))
	if err != nil {
		p.T.Fatalf("failed to read file: %v", err)
	}
	return string(data)
}

// FileExists checks if a file exists in the working tree
func (p *TempProject) FileExists(name string) bool {
	_, err := os.Stat(filepath.Join(p.Path, name))
	return err == nil
}

// Git runs a git command in the project and returns its trimmed stdout
func (p *TempProject) Git(args ...string) string {
	p.T.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = p.Path
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	output, err := cmd.CombinedOutput()
	if err != nil {
		p.T.Fatalf("git %s failed: %v: %s", strings.Join(args, " "), err, output)
	}
	return strings.TrimSpace(string(output))
}

// Commit stages and commits all changes
func (p *TempProject) Commit(message string) {
	p.T.Helper()
	p.Git("add", "--all")
	p.Git("commit", "-m", message)
}

// Subjects returns the commit subjects reachable from ref, newest first
func (p *TempProject) Subjects(ref string) []string {
	p.T.Helper()
	out := p.Git("log", "--pretty=format:%s", ref)
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Head returns the revision currently checked out
func (p *TempProject) Head() string {
	p.T.Helper()
	return p.Git("rev-parse", "HEAD")
}
