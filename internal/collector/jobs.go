package collector

import (
	"context"
	"sync"
	"time"

	"github.com/eusougabrielgadelha/charbot/internal/logging"
)

// JobStatus tracks where a room download is in its lifecycle.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobError   JobStatus = "error"
)

// Job is one room download managed by the pool.
type Job struct {
	Room   Room
	Status JobStatus
	Output string
	Err    error
}

// JobFunc performs the actual download for a room, returning the output
// path.
type JobFunc func(ctx context.Context, room Room) (string, error)

// Pool runs room downloads with a bounded number of active workers,
// refilling slots from the queue as downloads finish.
type Pool struct {
	maxActive int
	run       JobFunc
	logger    logging.Logger

	mu   sync.Mutex
	jobs []*Job
}

// NewPool builds a pool with at least one worker slot.
func NewPool(maxActive int, run JobFunc, logger logging.Logger) *Pool {
	if maxActive < 1 {
		maxActive = 1
	}
	return &Pool{maxActive: maxActive, run: run, logger: logger}
}

// statusInterval is how often the pool logs a queue summary while running.
const statusInterval = 5 * time.Second

// Run downloads all rooms and blocks until every job finished or the
// context was cancelled. Returns the final job list.
func (p *Pool) Run(ctx context.Context, rooms []Room) []*Job {
	p.mu.Lock()
	p.jobs = make([]*Job, len(rooms))
	for i, room := range rooms {
		p.jobs[i] = &Job{Room: room, Status: JobQueued}
	}
	p.mu.Unlock()

	queue := make(chan *Job)
	go func() {
		defer close(queue)
		for _, job := range p.jobs {
			select {
			case queue <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.maxActive; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				p.runJob(ctx, job)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			p.logSummary()
			return p.Jobs()
		case <-ticker.C:
			p.logSummary()
		}
	}
}

func (p *Pool) runJob(ctx context.Context, job *Job) {
	if ctx.Err() != nil {
		return
	}

	p.setStatus(job, JobRunning)
	p.logger.Info("Recording started", "room", job.Room.Username)

	out, err := p.run(ctx, job.Room)

	p.mu.Lock()
	job.Output = out
	job.Err = err
	if err != nil {
		job.Status = JobError
	} else {
		job.Status = JobDone
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("Recording ended with error", "room", job.Room.Username, "error", err)
	} else {
		p.logger.Info("Recording finished", "room", job.Room.Username, "file", out)
	}
}

func (p *Pool) setStatus(job *Job, status JobStatus) {
	p.mu.Lock()
	job.Status = status
	p.mu.Unlock()
}

// Jobs returns a snapshot of the job list.
func (p *Pool) Jobs() []*Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Job, len(p.jobs))
	copy(out, p.jobs)
	return out
}

func (p *Pool) logSummary() {
	counts := make(map[JobStatus]int)
	p.mu.Lock()
	for _, job := range p.jobs {
		counts[job.Status]++
	}
	p.mu.Unlock()

	p.logger.Info("Download pool",
		"queued", counts[JobQueued],
		"running", counts[JobRunning],
		"done", counts[JobDone],
		"errors", counts[JobError])
}
