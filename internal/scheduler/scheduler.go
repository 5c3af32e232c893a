// Package scheduler runs background jobs on cron schedules, used for the
// periodic bulk valuation of all funds.
package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
}

// New creates a new scheduler
func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

// AddJob registers a job with a cron schedule.
// Schedule examples:
//   - "@hourly"         - Every hour
//   - "@every 15m"      - Every 15 minutes
//   - "0 18 * * MON-FRI" - 6 PM on weekdays
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := job.Run(); err != nil {
			log.Printf("Job %s failed: %v", job.Name(), err)
			return
		}
		log.Printf("Job %s completed", job.Name())
	})
	if err != nil {
		return err
	}

	log.Printf("Job %s registered with schedule %q", job.Name(), schedule)
	return nil
}
