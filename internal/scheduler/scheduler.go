package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// JobStatus represents the status of a job.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusScheduled JobStatus = "scheduled"
)

// JobInfo describes a scheduled job and its run history.
type JobInfo struct {
	ID          string
	Name        string
	Description string
	Status      JobStatus
	Every       time.Duration
	LastRun     time.Time
	RunCount    int
	ErrorCount  int
	LastError   string
}

// JobFunc represents a function that can be scheduled.
type JobFunc func(ctx context.Context) error

type job struct {
	info   JobInfo
	gocron gocron.Job
}

// Scheduler runs maintenance jobs at fixed intervals.
type Scheduler struct {
	gocron gocron.Scheduler
	log    *log.Logger

	mu   sync.Mutex
	jobs map[string]*job

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new scheduler.
func New() (*Scheduler, error) {
	l := log.Default().WithPrefix("scheduler")
	gocronScheduler, err := gocron.NewScheduler(gocron.WithLogger(newLogger(l)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		gocron: gocronScheduler,
		log:    l,
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.gocron.Start()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("Job scheduler started", "jobs", len(s.jobs))
}

// Stop stops the scheduler and cancels running jobs.
func (s *Scheduler) Stop() error {
	s.log.Info("Stopping job scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// AddSingletonJob schedules jobFunc every interval. A run that is still busy
// when the next one is due causes that run to be skipped.
func (s *Scheduler) AddSingletonJob(id, name, description string, every time.Duration, jobFunc JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job %s already exists", id)
	}

	j := &job{info: JobInfo{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      JobStatusScheduled,
		Every:       every,
	}}

	gj, err := s.gocron.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(s.wrapJobFunc(j, jobFunc)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", id, err)
	}
	j.gocron = gj

	s.jobs[id] = j
	s.log.Info("Added job to scheduler", "id", id, "name", name, "every", every)
	return nil
}

// RunJobNow manually triggers a job to run immediately.
func (s *Scheduler) RunJobNow(id string) error {
	s.mu.Lock()
	j, exists := s.jobs[id]
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("job %s not found", id)
	}

	if err := j.gocron.RunNow(); err != nil {
		return fmt.Errorf("failed to trigger job %s: %w", id, err)
	}
	return nil
}

// GetJob returns a snapshot of a job's information.
func (s *Scheduler) GetJob(id string) (JobInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, exists := s.jobs[id]
	if !exists {
		return JobInfo{}, false
	}
	return j.info, true
}

// wrapJobFunc wraps a job function to update job statistics.
func (s *Scheduler) wrapJobFunc(j *job, jobFunc JobFunc) func() {
	return func() {
		s.mu.Lock()
		j.info.Status = JobStatusRunning
		j.info.LastRun = time.Now()
		j.info.RunCount++
		s.mu.Unlock()

		s.log.Debug("Starting job", "id", j.info.ID)
		err := jobFunc(s.ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.log.Error("Job failed", "id", j.info.ID, "error", err)
			j.info.Status = JobStatusFailed
			j.info.ErrorCount++
			j.info.LastError = err.Error()
			return
		}
		s.log.Debug("Job completed", "id", j.info.ID)
		j.info.Status = JobStatusCompleted
		j.info.LastError = ""
	}
}
