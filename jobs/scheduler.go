// Package jobs runs the periodic maintenance tasks.
package jobs

import (
	"context"
	"time"

	"app-registry-cms/services"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler rebuilds the search indices and recounts the cached counters on
// cron schedules. An empty spec disables its job.
type Scheduler struct {
	cron     *cron.Cron
	search   services.SearchService
	counters services.CounterService
	timeout  time.Duration
	log      logrus.FieldLogger
}

func New(search services.SearchService, counters services.CounterService, timeout time.Duration, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		search:   search,
		counters: counters,
		timeout:  timeout,
		log:      log.WithField("component", "scheduler"),
	}
}

func (s *Scheduler) Start(reindexSpec, counterSpec string) error {
	if reindexSpec != "" {
		if _, err := s.cron.AddFunc(reindexSpec, s.Reindex); err != nil {
			return err
		}
	}
	if counterSpec != "" {
		if _, err := s.cron.AddFunc(counterSpec, s.RefreshCounters); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.log.WithField("jobs", len(s.cron.Entries())).Info("Scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) Reindex() {
	ctx, cancel := s.context()
	defer cancel()

	start := time.Now()
	if err := s.search.ReindexAll(ctx); err != nil {
		s.log.WithError(err).Error("Scheduled reindex failed")
		return
	}
	s.log.WithField("duration", time.Since(start).String()).Info("Scheduled reindex finished")
}

func (s *Scheduler) RefreshCounters() {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.counters.RefreshAll(ctx); err != nil {
		s.log.WithError(err).Error("Scheduled counter refresh failed")
		return
	}
	s.log.Info("Scheduled counter refresh finished")
}

func (s *Scheduler) context() (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.timeout)
}
