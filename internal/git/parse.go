package git

import (
	"strconv"
	"strings"
	"time"

	"github.com/pders01/checkpoint/internal/models"
)

// HistoryFormat is the pretty format requested from log: id|author|unix time|subject
const HistoryFormat = "%H|%an|%at|%s"

const historyFields = 4

// ParseHistory converts log output into snapshots, newest first.
//
// When more than one line is present the last one is the bootstrap revision
// and is dropped. A single line is always kept. Malformed lines are skipped
// and returned as parse errors so the caller can report them.
func ParseHistory(output string) ([]models.Snapshot, []*ParseError) {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}

	snapshots := make([]models.Snapshot, 0, len(lines))
	var errs []*ParseError
	for _, line := range lines {
		snapshot, err := parseHistoryLine(line)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, errs
}

// parseHistoryLine keeps any '|' inside the subject by splitting at most
// three times.
func parseHistoryLine(line string) (models.Snapshot, *ParseError) {
	parts := strings.SplitN(line, "|", historyFields)
	if len(parts) < historyFields {
		return models.Snapshot{}, &ParseError{Line: line, Reason: "expected 4 fields"}
	}
	seconds, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil {
		return models.Snapshot{}, &ParseError{Line: line, Reason: "invalid timestamp"}
	}
	subject := parts[3]
	return models.Snapshot{
		ID:          strings.TrimSpace(parts[0]),
		Author:      parts[1],
		Timestamp:   time.Unix(seconds, 0),
		Description: subject,
		SizeBytes:   models.UnknownSize,
		IsAutomatic: models.IsAutomaticDescription(subject),
	}, nil
}

// ParseCountObjects sums the loose and packed sizes reported by
// "count-objects -v". Both are in KiB. Anything unrecognized counts as 0.
func ParseCountObjects(output string) int64 {
	var kib int64
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "size", "size-pack":
			n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err == nil && n > 0 {
				kib += n
			}
		}
	}
	return kib * 1024
}

// ParseNameStatus parses "diff --name-status" output. Renames and copies
// report the destination path.
func ParseNameStatus(output string) []FileChange {
	var changes []FileChange
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		if status != "" {
			status = status[:1]
		}
		changes = append(changes, FileChange{
			Status: status,
			Path:   fields[len(fields)-1],
		})
	}
	return changes
}
