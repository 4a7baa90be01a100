/**
 * @description
 * Cron scheduler for the payment reconciliation job.
 */
package app

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the service's background cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	service  *Service
	schedule string
	lookback time.Duration
}

// NewScheduler creates a scheduler that runs payment reconciliation on the
// given cron schedule, scanning the provider event log over the lookback
// window.
func NewScheduler(service *Service, schedule string, lookback time.Duration) *Scheduler {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return &Scheduler{
		cron:     c,
		service:  service,
		schedule: schedule,
		lookback: lookback,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.runReconcile); err != nil {
		log.Printf("level=error component=scheduler msg=\"failed to schedule reconciliation job\" schedule=%s err=%v", s.schedule, err)
	} else {
		log.Printf("level=info component=scheduler msg=\"scheduled reconciliation job\" schedule=%s lookback=%s", s.schedule, s.lookback)
	}
	s.cron.Start()
}

// Stop gracefully stops the cron scheduler and returns a context that is done
// once running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.service.ReconcilePayments(ctx, s.lookback); err != nil {
		log.Printf("level=error component=scheduler msg=\"reconciliation run failed\" err=%v", err)
	}
}
