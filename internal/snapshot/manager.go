package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/pders01/checkpoint/internal/git"
	"github.com/pders01/checkpoint/internal/models"
)

// DefaultHistoryLimit is the number of snapshots a listing requests
const DefaultHistoryLimit = 50

// Manager turns backend operations into user-level snapshot actions.
// Every action runs in the background and returns a Task. Actions that
// touch the repository are serialized per working directory.
type Manager struct {
	backend      git.Backend
	observer     Observer
	log          logr.Logger
	historyLimit int
	now          func() time.Time
	lock         *sync.Mutex
}

// Option configures a Manager
type Option func(*Manager)

// WithObserver registers the receiver of progress and completion events
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithHistoryLimit sets how many revisions ListSnapshots asks for
func WithHistoryLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.historyLimit = n
		}
	}
}

// WithClock replaces the clock used for generated descriptions
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager for backend
func NewManager(backend git.Backend, log logr.Logger, opts ...Option) *Manager {
	m := &Manager{
		backend:      backend,
		observer:     NopObserver{},
		log:          log.WithName("snapshot"),
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
		lock:         lockFor(backend.Path()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Backend returns the repository backend the manager drives
func (m *Manager) Backend() git.Backend {
	return m.backend
}

func (m *Manager) progress(percentage int, status string) {
	m.observer.Progress(models.ProgressEvent{Percentage: percentage, Status: status})
}

func (m *Manager) opLogger(op string) logr.Logger {
	return m.log.WithValues("op", op, "opID", uuid.NewString(), "dir", m.backend.Path())
}

// locked runs fn in the background while holding the repository lock
func locked[T any](m *Manager, fn func() (T, error)) *Task[T] {
	return start(func() (T, error) {
		m.lock.Lock()
		defer m.lock.Unlock()
		return fn()
	})
}

// Initialize creates the repository with its bootstrap revision and writes
// the default project config. An existing repository is left untouched and
// only a missing config is written.
func (m *Manager) Initialize(ctx context.Context, cfg models.ProjectConfig) *Task[struct{}] {
	log := m.opLogger("initialize")
	return locked(m, func() (struct{}, error) {
		dir := m.backend.Path()
		if !m.backend.IsInitialized() {
			if err := m.backend.Init(ctx); err != nil {
				return struct{}{}, fmt.Errorf("failed to initialize repository: %w", err)
			}
			if err := m.backend.CommitEmpty(ctx, models.BootstrapDescription); err != nil {
				return struct{}{}, fmt.Errorf("failed to create bootstrap revision: %w", err)
			}
			log.Info("repository initialized")
		}
		if _, err := os.Stat(models.ProjectConfigPath(dir)); errors.Is(err, os.ErrNotExist) {
			if err := cfg.Save(dir); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
}

// CreateSnapshot commits the whole working tree. An empty description is
// replaced by "Snapshot - YYYY-MM-DD HH:MM" in local time.
//
// The returned snapshot is the newest history entry after the commit. If
// that lookup fails the commit still stands and a zero Snapshot is returned.
func (m *Manager) CreateSnapshot(ctx context.Context, description string) *Task[models.Snapshot] {
	log := m.opLogger("create")
	return locked(m, func() (models.Snapshot, error) {
		return m.create(ctx, log, description)
	})
}

func (m *Manager) create(ctx context.Context, log logr.Logger, description string) (models.Snapshot, error) {
	if description == "" {
		description = models.DefaultDescription(m.now())
	}

	m.progress(25, "Preparing snapshot...")
	m.progress(50, "Creating snapshot...")
	if err := m.backend.CommitAll(ctx, description); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to create snapshot: %w", err)
	}
	m.progress(100, "Snapshot created")
	log.Info("snapshot committed", "description", description)

	// Read HEAD before History, whose checkout of the default branch moves
	// away from a commit made on a detached HEAD.
	head, headErr := m.backend.Head(ctx)
	if headErr != nil {
		log.Error(headErr, "could not read the new revision")
	}

	latest, err := m.backend.History(ctx, 1)
	var created models.Snapshot
	switch {
	case err == nil && len(latest) > 0 && (headErr != nil || latest[0].ID == head.ID):
		created = latest[0]
	case headErr == nil:
		log.Info("created snapshot is not on the default branch", "revision", head.ID)
		created = head
	default:
		log.Error(err, "could not read back created snapshot")
		return models.Snapshot{}, nil
	}
	m.observer.SnapshotCreated(created)
	return created, nil
}

// ListSnapshots returns the history, newest first, without the bootstrap revision
func (m *Manager) ListSnapshots(ctx context.Context) *Task[[]models.Snapshot] {
	return locked(m, func() ([]models.Snapshot, error) {
		return m.backend.History(ctx, m.historyLimit)
	})
}

// RestoreSnapshot switches the working tree to revisionID. Pending changes
// are first committed as a safety backup; a failed backup does not stop
// the restore.
func (m *Manager) RestoreSnapshot(ctx context.Context, revisionID string) *Task[RestoreOutcome] {
	log := m.opLogger("restore")
	return locked(m, func() (RestoreOutcome, error) {
		r := &restoreRun{m: m, log: log}
		return r.run(ctx, revisionID)
	})
}

// RestoreLatest restores the newest snapshot. ErrNotFound is returned when
// there is none.
func (m *Manager) RestoreLatest(ctx context.Context) *Task[RestoreOutcome] {
	log := m.opLogger("restore-latest")
	return locked(m, func() (RestoreOutcome, error) {
		snapshots, err := m.backend.History(ctx, 1)
		if err != nil {
			return RestoreOutcome{}, err
		}
		if len(snapshots) == 0 {
			return RestoreOutcome{}, fmt.Errorf("no snapshot to restore: %w", git.ErrNotFound)
		}
		r := &restoreRun{m: m, log: log}
		return r.run(ctx, snapshots[0].ID)
	})
}

// DeleteSnapshot is permanently unsupported and never touches the backend
func (m *Manager) DeleteSnapshot(_ context.Context, revisionID string) *Task[struct{}] {
	return Resolved(struct{}{}, fmt.Errorf("deleting snapshot %s: %w", revisionID, git.ErrNotImplemented))
}

// IsDetached reports whether a restored snapshot is checked out instead of
// the default branch
func (m *Manager) IsDetached(ctx context.Context) *Task[bool] {
	return locked(m, func() (bool, error) {
		return m.backend.IsDetached(ctx)
	})
}

// HasUncommittedChanges reports whether the working tree differs from the last snapshot
func (m *Manager) HasUncommittedChanges(ctx context.Context) *Task[bool] {
	return locked(m, func() (bool, error) {
		return m.backend.HasUncommittedChanges(ctx)
	})
}

// ChangedFiles lists what restoring revisionID would change in the working tree
func (m *Manager) ChangedFiles(ctx context.Context, revisionID string) *Task[[]git.FileChange] {
	return locked(m, func() ([]git.FileChange, error) {
		return m.backend.ChangedFiles(ctx, revisionID)
	})
}

// AutosaveOutcome reports whether an autosave produced a snapshot
type AutosaveOutcome struct {
	Created  bool
	Snapshot models.Snapshot
}

// Autosave creates an automatic snapshot when the working tree has
// pending changes, and does nothing otherwise.
func (m *Manager) Autosave(ctx context.Context) *Task[AutosaveOutcome] {
	log := m.opLogger("autosave")
	return locked(m, func() (AutosaveOutcome, error) {
		dirty, err := m.backend.HasUncommittedChanges(ctx)
		if err != nil {
			return AutosaveOutcome{}, err
		}
		if !dirty {
			log.V(1).Info("no changes, autosave skipped")
			return AutosaveOutcome{}, nil
		}
		snapshot, err := m.create(ctx, log, models.AutosaveDescription(m.now()))
		if errors.Is(err, git.ErrNothingToCommit) {
			return AutosaveOutcome{}, nil
		}
		if err != nil {
			return AutosaveOutcome{}, err
		}
		return AutosaveOutcome{Created: true, Snapshot: snapshot}, nil
	})
}
