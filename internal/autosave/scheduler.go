package autosave

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a cron schedule. Standard five-field expressions
// and descriptors such as "@every 15m" are accepted.
type Scheduler struct {
	cron *cron.Cron
	spec string
	log  logr.Logger
}

// NewScheduler parses spec and registers fn. Overlapping runs are skipped.
func NewScheduler(spec string, fn func(ctx context.Context), log logr.Logger) (*Scheduler, error) {
	log = log.WithName("scheduler")
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		log.V(1).Info("running schedule", "cron", spec)
		fn(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("cannot set schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, spec: spec, log: log}, nil
}

// Start begins firing the schedule in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.V(1).Info("schedule started", "cron", s.spec)
}

// Stop halts the schedule and waits for a running job to return
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
