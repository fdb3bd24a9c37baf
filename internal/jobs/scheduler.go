package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is a scheduled maintenance task.
type Job interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
}

// Scheduler drives registered jobs on their cron schedules. A failed or
// panicking run is logged and never prevents the next scheduled run.
type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

func (s *Scheduler) Register(job Job) error {
	_, err := s.cron.AddFunc(job.Schedule(), func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[%s] job panicked: %v", job.Name(), r)
			}
		}()

		log.Printf("[%s] starting scheduled run", job.Name())
		if err := job.Run(context.Background()); err != nil {
			log.Printf("[%s] run failed: %v", job.Name(), err)
			return
		}
		log.Printf("[%s] run completed", job.Name())
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule(), job.Name(), err)
	}

	s.jobs = append(s.jobs, job)
	log.Printf("[%s] scheduled with cron: %s", job.Name(), job.Schedule())
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("Scheduler started with %d registered jobs", len(s.jobs))
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}

// FuncJob adapts a plain function into a Job.
type FuncJob struct {
	name     string
	schedule string
	fn       func(ctx context.Context) error
}

func NewFuncJob(name, schedule string, fn func(ctx context.Context) error) *FuncJob {
	return &FuncJob{name: name, schedule: schedule, fn: fn}
}

func (j *FuncJob) Name() string                  { return j.name }
func (j *FuncJob) Schedule() string              { return j.schedule }
func (j *FuncJob) Run(ctx context.Context) error { return j.fn(ctx) }
