package git

import (
	"os"
	"os/exec"
)

// BinaryName is the name looked up on PATH
const BinaryName = "git"

// DefaultCandidates are well-known install locations checked after PATH.
// The list is plain data so callers and tests can replace it.
var DefaultCandidates = []string{
	"C:/Program Files/Git/bin/git.exe",
	"C:/Program Files (x86)/Git/bin/git.exe",
	"/usr/bin/git",
	"/usr/local/bin/git",
	"/opt/homebrew/bin/git",
}

// Locator resolves the path of the backend executable
type Locator struct {
	// Override, when set, is returned as-is
	Override   string
	Candidates []string

	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
}

// NewLocator returns a Locator using the given override and candidate list.
// A nil candidate list means DefaultCandidates.
func NewLocator(override string, candidates []string) *Locator {
	if candidates == nil {
		candidates = DefaultCandidates
	}
	return &Locator{
		Override:   override,
		Candidates: candidates,
		lookPath:   exec.LookPath,
		stat:       os.Stat,
	}
}

// Locate never fails. If nothing is found the bare binary name is returned
// and a missing executable surfaces later as ErrStartFailure.
func (l *Locator) Locate() string {
	if l.Override != "" {
		return l.Override
	}
	if path, err := l.lookPath(BinaryName); err == nil && path != "" {
		return path
	}
	for _, candidate := range l.Candidates {
		info, err := l.stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate
		}
	}
	return BinaryName
}
