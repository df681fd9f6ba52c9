package git

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MinVersion is the oldest git accepted without a warning; "init -b" needs 2.28.
var MinVersion = Version{Major: 2, Minor: 28}

// Version is a parsed "git --version" number
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v is older than other
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// ParseVersion understands the vendor variants of "git --version", e.g.
// "git version 2.39.3 (Apple Git-146)" or "git version 2.39.3.windows.1".
func ParseVersion(out string) (Version, bool) {
	s := strings.TrimSpace(out)
	if idx := strings.Index(s, "git version"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("git version"):])
	}
	start := strings.IndexAny(s, "0123456789")
	if start < 0 {
		return Version{}, false
	}
	s = s[start:]
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	parts := strings.Split(strings.Trim(s[:end], "."), ".")
	if len(parts) < 2 {
		return Version{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, false
	}
	v := Version{Major: major, Minor: minor}
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			v.Patch = p
		}
	}
	return v, true
}

// ProbeVersion runs "<binary> --version" and returns the raw output with
// its parsed number.
func ProbeVersion(ctx context.Context, executor Executor) (string, Version, error) {
	dir, err := os.Getwd()
	if err != nil {
		dir = os.TempDir()
	}
	res, err := executor.Run(ctx, dir, []string{"--version"}, DefaultStartTimeout, DefaultFinishTimeout)
	if err != nil {
		return "", Version{}, fmt.Errorf("git --version: %w", err)
	}
	v, ok := ParseVersion(res.Stdout)
	if !ok {
		return res.Stdout, Version{}, fmt.Errorf("unable to parse git version output: %q", res.Stdout)
	}
	return res.Stdout, v, nil
}
