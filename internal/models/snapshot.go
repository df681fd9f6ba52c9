package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// AutoMarker prefixes the description of every snapshot taken without
	// an explicit user request.
	AutoMarker = "[AUTO]"

	// SafetyBackupDescription is committed right before a restore whenever
	// the working tree has pending changes.
	SafetyBackupDescription = AutoMarker + " Safety backup before restore"

	// BootstrapDescription is the message of the empty revision created
	// during repository initialization. It is never listed as a snapshot.
	BootstrapDescription = "Initialize checkpoint repository"

	// DisplayLayout is the local timestamp layout used in descriptions and listings.
	DisplayLayout = "2006-01-02 15:04"

	// UnknownSize marks a snapshot whose size was not computed.
	UnknownSize int64 = -1
)

// Snapshot is one committed state of the tracked files
type Snapshot struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Author      string    `json:"author"`
	SizeBytes   int64     `json:"size_bytes"`
	IsAutomatic bool      `json:"is_automatic"`
}

// IsAutomaticDescription reports whether description carries the reserved marker
func IsAutomaticDescription(description string) bool {
	return strings.HasPrefix(description, AutoMarker)
}

// DefaultDescription generates the description used when the user gives none
// Format: Snapshot - YYYY-MM-DD HH:MM
func DefaultDescription(now time.Time) string {
	return fmt.Sprintf("Snapshot - %s", now.Local().Format(DisplayLayout))
}

// AutosaveDescription generates the description of an autosave snapshot
func AutosaveDescription(now time.Time) string {
	return fmt.Sprintf("%s Autosave - %s", AutoMarker, now.Local().Format(DisplayLayout))
}

// DisplayText formats the snapshot for listings: "YYYY-MM-DD HH:MM - description"
func (s Snapshot) DisplayText() string {
	return fmt.Sprintf("%s - %s", s.Timestamp.Local().Format(DisplayLayout), s.Description)
}

// ShortID returns the abbreviated revision identifier
func (s Snapshot) ShortID() string {
	if len(s.ID) > 8 {
		return s.ID[:8]
	}
	return s.ID
}

// ProgressEvent reports the progress of a multi-step operation
type ProgressEvent struct {
	Percentage int    `json:"percentage"`
	Status     string `json:"status"`
}
