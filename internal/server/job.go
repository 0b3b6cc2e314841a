package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agallais/Quantum-aqora/internal/config"
)

// JobState is the lifecycle state of an optimization job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
)

// JobRequest is what clients submit: the geometry text plus run settings.
type JobRequest struct {
	Geometry string           `json:"geometry"`
	Config   config.RunConfig `json:"config"`
}

// Job tracks one optimization run through the server.
type Job struct {
	ID         string     `json:"id"`
	State      JobState   `json:"state"`
	Request    JobRequest `json:"request"`
	Formula    string     `json:"formula,omitempty"`
	Params     []float64  `json:"params,omitempty"`
	Energy     float64    `json:"energy"`
	Iterations int        `json:"iterations"`
	Converged  bool       `json:"converged"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// JobManager owns job lifecycle state. All access is mutex-guarded; jobs
// handed out by Get/List are snapshot copies, so callers never race with
// the worker.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	broadcaster *EventBroadcaster
}

// NewJobManager creates an empty manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob registers a pending job for the request.
func (jm *JobManager) CreateJob(req JobRequest) Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Request:   req,
		StartTime: time.Now(),
	}
	jm.jobs[job.ID] = job
	return *job
}

// GetJob returns a copy of the job, if it exists.
func (jm *JobManager) GetJob(id string) (Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, ok := jm.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// ListJobs returns copies of all jobs.
func (jm *JobManager) ListJobs() []Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// UpdateJob atomically mutates a job under the manager's lock.
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, ok := jm.jobs[id]
	if !ok {
		return fmt.Errorf("job not found: %s", id)
	}
	updateFn(job)
	return nil
}
