package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/pders01/checkpoint/internal/git"
	"github.com/pders01/checkpoint/internal/models"
)

// RestoreState is a step of the restore flow
type RestoreState int

const (
	RestoreIdle RestoreState = iota
	RestoreCheckingForChanges
	RestoreSafetyBackupInFlight
	RestoreCheckingOut
	RestoreDone
	RestoreFailed
)

func (s RestoreState) String() string {
	switch s {
	case RestoreIdle:
		return "Idle"
	case RestoreCheckingForChanges:
		return "CheckingForChanges"
	case RestoreSafetyBackupInFlight:
		return "SafetyBackupInFlight"
	case RestoreCheckingOut:
		return "CheckingOut"
	case RestoreDone:
		return "Done"
	case RestoreFailed:
		return "Failed"
	default:
		return fmt.Sprintf("RestoreState(%d)", int(s))
	}
}

// RestoreOutcome describes how a restore went.
// BackupErr is set when a safety backup was attempted and failed; the
// restore itself may still have succeeded.
type RestoreOutcome struct {
	RevisionID  string
	State       RestoreState
	Trail       []RestoreState
	BackedUp    bool
	BackupErr   error
	ChangesSeen bool
}

type restoreRun struct {
	m       *Manager
	log     logr.Logger
	outcome RestoreOutcome
}

func (r *restoreRun) enter(state RestoreState) {
	r.outcome.State = state
	r.outcome.Trail = append(r.outcome.Trail, state)
	r.log.V(1).Info("restore state", "state", state.String())
}

// run executes the restore flow. The caller holds the repository lock.
func (r *restoreRun) run(ctx context.Context, revisionID string) (RestoreOutcome, error) {
	r.outcome.RevisionID = revisionID
	r.enter(RestoreIdle)

	r.enter(RestoreCheckingForChanges)
	r.m.progress(10, "Checking for uncommitted changes...")
	dirty, err := r.m.backend.HasUncommittedChanges(ctx)
	if err != nil {
		// Unknown state is treated as dirty so pending work still gets a backup attempt.
		r.log.Error(err, "could not check for uncommitted changes")
		dirty = true
	}
	r.outcome.ChangesSeen = dirty

	if dirty {
		r.enter(RestoreSafetyBackupInFlight)
		r.m.progress(20, "Creating safety backup...")
		if err := r.m.backend.CommitAll(ctx, models.SafetyBackupDescription); err != nil {
			if !errors.Is(err, git.ErrNothingToCommit) {
				r.outcome.BackupErr = err
			}
			r.log.Error(err, "safety backup failed, continuing with restore")
		} else {
			r.outcome.BackedUp = true
			r.log.Info("safety backup created")
		}
	} else {
		r.m.progress(20, "No uncommitted changes")
	}

	r.enter(RestoreCheckingOut)
	r.m.progress(50, "Restoring snapshot...")
	if err := r.m.backend.Checkout(ctx, revisionID); err != nil {
		r.enter(RestoreFailed)
		return r.outcome, fmt.Errorf("failed to restore snapshot %s: %w", revisionID, err)
	}

	r.enter(RestoreDone)
	r.m.progress(100, "Snapshot restored")
	r.m.observer.SnapshotRestored(revisionID)
	r.log.Info("snapshot restored", "revision", revisionID)
	return r.outcome, nil
}
