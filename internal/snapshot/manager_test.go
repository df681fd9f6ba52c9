package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/checkpoint/internal/git"
	"github.com/pders01/checkpoint/internal/models"
)

// call is one recorded backend invocation
type call struct {
	Op  string
	Arg string
}

// fakeBackend scripts backend answers and records every call
type fakeBackend struct {
	mu    sync.Mutex
	dir   string
	calls []call

	initialized bool
	dirty       bool
	dirtyErr    error
	commitErr   error
	initErr     error
	checkoutErr error
	historyErr  error
	history     []models.Snapshot
	head        *models.Snapshot
	headErr     error
	detached    bool
	size        int64
	sizeErr     error

	// commitGate, when set, blocks CommitAll until it is closed
	commitGate chan struct{}
	// commitStarted is signalled when CommitAll begins
	commitStarted chan struct{}
}

var _ git.Backend = (*fakeBackend)(nil)

func newFakeBackend(t *testing.T) *fakeBackend {
	return &fakeBackend{dir: t.TempDir()}
}

func (f *fakeBackend) record(op, arg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Op: op, Arg: arg})
}

func (f *fakeBackend) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeBackend) ops() []string {
	var ops []string
	for _, c := range f.recorded() {
		ops = append(ops, c.Op)
	}
	return ops
}

func (f *fakeBackend) Path() string { return f.dir }

func (f *fakeBackend) IsInitialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialized
}

func (f *fakeBackend) Init(context.Context) error {
	f.record("init", "")
	if f.initErr != nil {
		return f.initErr
	}
	f.mu.Lock()
	f.initialized = true
	f.mu.Unlock()
	return os.MkdirAll(filepath.Join(f.dir, ".git"), 0755)
}

func (f *fakeBackend) CommitAll(_ context.Context, message string) error {
	f.record("commitAll", message)
	if f.commitStarted != nil {
		f.commitStarted <- struct{}{}
	}
	if f.commitGate != nil {
		<-f.commitGate
	}
	return f.commitErr
}

func (f *fakeBackend) CommitEmpty(_ context.Context, message string) error {
	f.record("commitEmpty", message)
	return nil
}

func (f *fakeBackend) History(_ context.Context, limit int) ([]models.Snapshot, error) {
	f.record("history", "")
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	if limit < len(f.history) {
		return f.history[:limit], nil
	}
	return f.history, nil
}

// Head returns the scripted head, or the newest history entry
func (f *fakeBackend) Head(context.Context) (models.Snapshot, error) {
	f.record("head", "")
	if f.headErr != nil {
		return models.Snapshot{}, f.headErr
	}
	if f.head != nil {
		return *f.head, nil
	}
	if len(f.history) > 0 {
		return f.history[0], nil
	}
	return models.Snapshot{}, errors.New("fatal: bad revision 'HEAD'")
}

func (f *fakeBackend) IsDetached(context.Context) (bool, error) {
	f.record("detached", "")
	return f.detached, nil
}

func (f *fakeBackend) Checkout(_ context.Context, revisionID string) error {
	f.record("checkout", revisionID)
	return f.checkoutErr
}

func (f *fakeBackend) HasUncommittedChanges(context.Context) (bool, error) {
	f.record("status", "")
	return f.dirty, f.dirtyErr
}

func (f *fakeBackend) RepositorySizeEstimate(context.Context) (int64, error) {
	f.record("size", "")
	return f.size, f.sizeErr
}

func (f *fakeBackend) ChangedFiles(_ context.Context, revisionID string) ([]git.FileChange, error) {
	f.record("diff", revisionID)
	return []git.FileChange{{Status: "M", Path: "save.dat"}}, nil
}

// recorder collects observer notifications
type recorder struct {
	mu       sync.Mutex
	progress []models.ProgressEvent
	created  []models.Snapshot
	restored []string
}

func (r *recorder) Progress(e models.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, e)
}

func (r *recorder) SnapshotCreated(s models.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, s)
}

func (r *recorder) SnapshotRestored(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restored = append(r.restored, id)
}

func (r *recorder) percentages() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, e := range r.progress {
		out = append(out, e.Percentage)
	}
	return out
}

func assertMonotonic(t *testing.T, values []int) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1], "progress went backwards: %v", values)
	}
}

var fixedNow = func() time.Time {
	return time.Date(2024, 6, 1, 14, 30, 0, 0, time.Local)
}

func newTestManager(b *fakeBackend, obs Observer) *Manager {
	return NewManager(b, logr.Discard(), WithObserver(obs), WithClock(fixedNow), WithHistoryLimit(20))
}

func TestCreateSnapshotDefaultDescription(t *testing.T) {
	b := newFakeBackend(t)
	b.history = []models.Snapshot{{ID: "new", Description: "Snapshot - 2024-06-01 14:30"}}
	obs := &recorder{}
	m := newTestManager(b, obs)

	s, err := m.CreateSnapshot(context.Background(), "").Wait()
	require.NoError(t, err)
	assert.Equal(t, "new", s.ID)

	assert.Equal(t, []call{
		{Op: "commitAll", Arg: "Snapshot - 2024-06-01 14:30"},
		{Op: "head"},
		{Op: "history"},
	}, b.recorded())
	assert.Equal(t, []int{25, 50, 100}, obs.percentages())
	require.Len(t, obs.created, 1)
	assert.Equal(t, "new", obs.created[0].ID)
}

func TestCreateSnapshotKeepsDescription(t *testing.T) {
	b := newFakeBackend(t)
	b.history = []models.Snapshot{{ID: "x"}}
	m := newTestManager(b, nil)

	_, err := m.CreateSnapshot(context.Background(), "Before mods").Wait()
	require.NoError(t, err)
	assert.Equal(t, "Before mods", b.recorded()[0].Arg)
}

func TestCreateSnapshotCommitFailure(t *testing.T) {
	b := newFakeBackend(t)
	b.commitErr = &git.ExitError{ExitCode: 128, Stderr: "fatal: index.lock exists"}
	obs := &recorder{}
	m := newTestManager(b, obs)

	_, err := m.CreateSnapshot(context.Background(), "x").Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.lock")
	assert.Equal(t, []string{"commitAll"}, b.ops())
	assert.Empty(t, obs.created)
	assert.NotContains(t, obs.percentages(), 100)
}

func TestCreateSnapshotHistoryFailureIsNotFatal(t *testing.T) {
	b := newFakeBackend(t)
	b.historyErr = git.ErrTimeout
	obs := &recorder{}
	m := newTestManager(b, obs)

	s, err := m.CreateSnapshot(context.Background(), "x").Wait()
	require.NoError(t, err)
	assert.Empty(t, s.ID)
	assert.Empty(t, obs.created)
	assert.Equal(t, []string{"commitAll", "head", "history"}, b.ops())
}

func TestCreateSnapshotOnDetachedHeadReportsNewCommit(t *testing.T) {
	b := newFakeBackend(t)
	b.history = []models.Snapshot{{ID: "tip", Description: "B"}}
	b.head = &models.Snapshot{ID: "fresh", Description: "C"}
	obs := &recorder{}
	m := newTestManager(b, obs)

	s, err := m.CreateSnapshot(context.Background(), "C").Wait()
	require.NoError(t, err)
	assert.Equal(t, "fresh", s.ID)
	require.Len(t, obs.created, 1)
	assert.Equal(t, "fresh", obs.created[0].ID)
}

func TestCreateSnapshotHeadFailureFallsBackToHistory(t *testing.T) {
	b := newFakeBackend(t)
	b.history = []models.Snapshot{{ID: "new"}}
	b.headErr = git.ErrTimeout
	m := newTestManager(b, nil)

	s, err := m.CreateSnapshot(context.Background(), "x").Wait()
	require.NoError(t, err)
	assert.Equal(t, "new", s.ID)
	assert.Equal(t, []string{"commitAll", "head", "history"}, b.ops())
}

func TestIsDetached(t *testing.T) {
	b := newFakeBackend(t)
	b.detached = true
	m := newTestManager(b, nil)

	detached, err := m.IsDetached(context.Background()).Wait()
	require.NoError(t, err)
	assert.True(t, detached)
	assert.Equal(t, []string{"detached"}, b.ops())
}

func TestRestoreWithChangesBacksUpFirst(t *testing.T) {
	b := newFakeBackend(t)
	b.dirty = true
	obs := &recorder{}
	m := newTestManager(b, obs)

	outcome, err := m.RestoreSnapshot(context.Background(), "abc").Wait()
	require.NoError(t, err)

	assert.Equal(t, []call{
		{Op: "status"},
		{Op: "commitAll", Arg: models.SafetyBackupDescription},
		{Op: "checkout", Arg: "abc"},
	}, b.recorded())
	assert.True(t, outcome.BackedUp)
	assert.Equal(t, RestoreDone, outcome.State)
	assert.Equal(t, []RestoreState{
		RestoreIdle, RestoreCheckingForChanges, RestoreSafetyBackupInFlight, RestoreCheckingOut, RestoreDone,
	}, outcome.Trail)
	assert.Equal(t, []string{"abc"}, obs.restored)

	pct := obs.percentages()
	assertMonotonic(t, pct)
	assert.Equal(t, 100, pct[len(pct)-1])
}

func TestRestoreBackupFailureDoesNotBlock(t *testing.T) {
	b := newFakeBackend(t)
	b.dirty = true
	b.commitErr = errors.New("disk full")
	obs := &recorder{}
	m := newTestManager(b, obs)

	outcome, err := m.RestoreSnapshot(context.Background(), "abc").Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{"status", "commitAll", "checkout"}, b.ops())
	assert.False(t, outcome.BackedUp)
	assert.EqualError(t, outcome.BackupErr, "disk full")
	assert.Equal(t, []string{"abc"}, obs.restored)
}

func TestRestoreWithoutChangesSkipsBackup(t *testing.T) {
	b := newFakeBackend(t)
	m := newTestManager(b, nil)

	outcome, err := m.RestoreSnapshot(context.Background(), "abc").Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{"status", "checkout"}, b.ops())
	assert.NotContains(t, outcome.Trail, RestoreSafetyBackupInFlight)
}

func TestRestoreStatusErrorStillAttemptsBackup(t *testing.T) {
	b := newFakeBackend(t)
	b.dirtyErr = git.ErrTimeout
	m := newTestManager(b, nil)

	_, err := m.RestoreSnapshot(context.Background(), "abc").Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{"status", "commitAll", "checkout"}, b.ops())
}

func TestRestoreCheckoutFailureIsFatal(t *testing.T) {
	b := newFakeBackend(t)
	b.checkoutErr = git.ErrNotFound
	obs := &recorder{}
	m := newTestManager(b, obs)

	outcome, err := m.RestoreSnapshot(context.Background(), "missing").Wait()
	assert.ErrorIs(t, err, git.ErrNotFound)
	assert.Equal(t, RestoreFailed, outcome.State)
	assert.Empty(t, obs.restored)
	assert.NotContains(t, obs.percentages(), 100)
}

func TestRestoreLatest(t *testing.T) {
	b := newFakeBackend(t)
	b.history = []models.Snapshot{{ID: "newest"}, {ID: "older"}}
	m := newTestManager(b, nil)

	outcome, err := m.RestoreLatest(context.Background()).Wait()
	require.NoError(t, err)
	assert.Equal(t, "newest", outcome.RevisionID)
	assert.Equal(t, []string{"history", "status", "checkout"}, b.ops())
}

func TestRestoreLatestWithoutSnapshots(t *testing.T) {
	b := newFakeBackend(t)
	m := newTestManager(b, nil)

	_, err := m.RestoreLatest(context.Background()).Wait()
	assert.ErrorIs(t, err, git.ErrNotFound)
	assert.Equal(t, []string{"history"}, b.ops())
}

func TestDeleteSnapshotNeverTouchesBackend(t *testing.T) {
	b := newFakeBackend(t)
	m := newTestManager(b, nil)

	for _, id := range []string{"", "abc", "HEAD"} {
		_, err := m.DeleteSnapshot(context.Background(), id).Wait()
		assert.ErrorIs(t, err, git.ErrNotImplemented)
	}
	assert.Empty(t, b.recorded())
}

func TestListSnapshotsDelegates(t *testing.T) {
	b := newFakeBackend(t)
	b.history = []models.Snapshot{{ID: "a"}, {ID: "b"}}
	m := newTestManager(b, nil)

	list, err := m.ListSnapshots(context.Background()).Wait()
	require.NoError(t, err)
	assert.Equal(t, b.history, list)
	assert.Equal(t, []string{"history"}, b.ops())
}

func TestInitializeCreatesBootstrapAndConfig(t *testing.T) {
	b := newFakeBackend(t)
	m := newTestManager(b, nil)

	cfg := models.DefaultProjectConfig()
	cfg.GameName = "Stardew Valley"
	_, err := m.Initialize(context.Background(), cfg).Wait()
	require.NoError(t, err)

	assert.Equal(t, []call{
		{Op: "init"},
		{Op: "commitEmpty", Arg: models.BootstrapDescription},
	}, b.recorded())

	loaded, err := models.LoadProjectConfig(b.dir)
	require.NoError(t, err)
	assert.Equal(t, "Stardew Valley", loaded.GameName)

	// Second run keeps the repository and the existing config
	cfg.GameName = "Other"
	_, err = m.Initialize(context.Background(), cfg).Wait()
	require.NoError(t, err)
	assert.Len(t, b.recorded(), 2)
	loaded, err = models.LoadProjectConfig(b.dir)
	require.NoError(t, err)
	assert.Equal(t, "Stardew Valley", loaded.GameName)
}

func TestInitializeFailureStops(t *testing.T) {
	b := newFakeBackend(t)
	b.initErr = git.ErrStartFailure
	m := newTestManager(b, nil)

	_, err := m.Initialize(context.Background(), models.DefaultProjectConfig()).Wait()
	assert.ErrorIs(t, err, git.ErrStartFailure)
	assert.Equal(t, []string{"init"}, b.ops())
}

func TestAutosave(t *testing.T) {
	b := newFakeBackend(t)
	m := newTestManager(b, nil)

	outcome, err := m.Autosave(context.Background()).Wait()
	require.NoError(t, err)
	assert.False(t, outcome.Created)
	assert.Equal(t, []string{"status"}, b.ops())

	b.dirty = true
	b.history = []models.Snapshot{{ID: "auto", IsAutomatic: true}}
	outcome, err = m.Autosave(context.Background()).Wait()
	require.NoError(t, err)
	assert.True(t, outcome.Created)
	assert.Equal(t, "auto", outcome.Snapshot.ID)

	calls := b.recorded()
	assert.Equal(t, call{Op: "commitAll", Arg: "[AUTO] Autosave - 2024-06-01 14:30"}, calls[2])
}

func TestOperationsOnSameDirectoryAreSerialized(t *testing.T) {
	b := newFakeBackend(t)
	b.commitGate = make(chan struct{})
	b.commitStarted = make(chan struct{}, 1)

	first := newTestManager(b, nil)
	second := newTestManager(b, nil)

	create := first.CreateSnapshot(context.Background(), "slow")
	<-b.commitStarted

	list := second.ListSnapshots(context.Background())
	select {
	case <-list.Done():
		t.Fatal("list finished while create held the repository")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, []string{"commitAll"}, b.ops())

	close(b.commitGate)
	_, err := create.Wait()
	require.NoError(t, err)
	_, err = list.Wait()
	require.NoError(t, err)
	assert.Equal(t, []string{"commitAll", "head", "history", "history"}, b.ops())
}

func TestTaskRecoversPanic(t *testing.T) {
	task := start(func() (int, error) {
		panic("boom")
	})
	_, err := task.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestTaskAwaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	task := start(func() (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := task.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRestoreStateString(t *testing.T) {
	assert.Equal(t, "SafetyBackupInFlight", RestoreSafetyBackupInFlight.String())
	assert.Equal(t, "RestoreState(42)", RestoreState(42).String())
}
