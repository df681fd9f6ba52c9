package snapshot

import "github.com/pders01/checkpoint/internal/models"

// Observer receives the notifications of a Manager. Calls are made from
// the goroutine of the running operation, in step order.
type Observer interface {
	Progress(event models.ProgressEvent)
	SnapshotCreated(snapshot models.Snapshot)
	SnapshotRestored(revisionID string)
}

// NopObserver ignores every notification
type NopObserver struct{}

func (NopObserver) Progress(models.ProgressEvent)   {}
func (NopObserver) SnapshotCreated(models.Snapshot) {}
func (NopObserver) SnapshotRestored(string)         {}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnProgress func(models.ProgressEvent)
	OnCreated  func(models.Snapshot)
	OnRestored func(string)
}

func (o ObserverFuncs) Progress(event models.ProgressEvent) {
	if o.OnProgress != nil {
		o.OnProgress(event)
	}
}

func (o ObserverFuncs) SnapshotCreated(snapshot models.Snapshot) {
	if o.OnCreated != nil {
		o.OnCreated(snapshot)
	}
}

func (o ObserverFuncs) SnapshotRestored(revisionID string) {
	if o.OnRestored != nil {
		o.OnRestored(revisionID)
	}
}
