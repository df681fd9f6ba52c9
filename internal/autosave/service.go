package autosave

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/sourcegraph/conc/pool"

	"github.com/pders01/checkpoint/internal/snapshot"
)

// Saver creates automatic snapshots
type Saver interface {
	Autosave(ctx context.Context) *snapshot.Task[snapshot.AutosaveOutcome]
}

// Options of an autosave session
type Options struct {
	// Debounce is the quiet period after file changes; zero disables watching
	Debounce time.Duration
	// Schedule is a cron expression for periodic autosaves; empty disables it
	Schedule string
	// SaveOnClose takes one last autosave when the session ends
	SaveOnClose bool
	// Notify receives every autosave result
	Notify func(outcome snapshot.AutosaveOutcome, err error)
}

// Service drives a Saver from file changes and a schedule
type Service struct {
	root  string
	saver Saver
	opts  Options
	log   logr.Logger
}

func NewService(root string, saver Saver, opts Options, log logr.Logger) *Service {
	if opts.Notify == nil {
		opts.Notify = func(snapshot.AutosaveOutcome, error) {}
	}
	return &Service{root: root, saver: saver, opts: opts, log: log.WithName("autosave")}
}

// Run blocks until ctx is done or the watcher fails
func (s *Service) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	save := func() {
		outcome, err := s.saver.Autosave(runCtx).Wait()
		if err != nil {
			s.log.Error(err, "autosave failed")
		} else if outcome.Created {
			s.log.Info("autosave created", "revision", outcome.Snapshot.ID)
		}
		s.opts.Notify(outcome, err)
	}

	if s.opts.Schedule != "" {
		sched, err := NewScheduler(s.opts.Schedule, func(context.Context) { save() }, s.log)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	p := pool.New().WithContext(runCtx).WithCancelOnError()
	if s.opts.Debounce > 0 {
		w := NewWatcher(s.root, s.opts.Debounce, save, s.log)
		p.Go(w.Run)
	}
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	err := p.Wait()

	if s.opts.SaveOnClose {
		// The session context is already cancelled at this point
		outcome, closeErr := s.saver.Autosave(context.WithoutCancel(ctx)).Wait()
		if closeErr != nil {
			s.log.Error(closeErr, "final autosave failed")
		}
		s.opts.Notify(outcome, closeErr)
	}
	return err
}
