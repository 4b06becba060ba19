// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tasks runs thumbnail acquisitions in the background when the
// server is in async mode. Tasks live in memory only; a restart forgets
// them, along with any work that had not started.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidshelf/internal/metrics"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

var (
	// ErrClosed is returned by Submit after Shutdown has started.
	ErrClosed = errors.New("tasks: runner is shut down")
	// ErrQueueFull is returned by Submit when the backlog is at capacity.
	ErrQueueFull = errors.New("tasks: queue is full")
)

// Func does the work of a task and returns the id of the created video.
type Func func(ctx context.Context) (videoID int64, err error)

// Task is a snapshot of a submitted task.
type Task struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Status     Status     `json:"status"`
	VideoID    int64      `json:"video_id,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Options configures a Runner.
type Options struct {
	Workers   int           // concurrent tasks, at least 1
	QueueSize int           // pending backlog; defaults to 64
	Retention time.Duration // how long finished tasks stay queryable; defaults to 1h
	Metrics   *metrics.Metrics
}

type job struct {
	id string
	fn Func
}

// Runner executes submitted tasks on a fixed set of workers.
type Runner struct {
	mu        sync.RWMutex
	tasks     map[string]*Task
	closed    bool
	retention time.Duration
	metrics   *metrics.Metrics

	jobs   chan job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRunner starts the workers.
func NewRunner(opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	if opts.Retention <= 0 {
		opts.Retention = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		tasks:     make(map[string]*Task),
		retention: opts.Retention,
		metrics:   opts.Metrics,
		jobs:      make(chan job, opts.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < opts.Workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
	return r
}

// Submit queues fn and returns the new task.
func (r *Runner) Submit(kind string, fn Func) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Task{}, ErrClosed
	}
	r.pruneLocked(time.Now())

	t := &Task{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case r.jobs <- job{id: t.ID, fn: fn}:
	default:
		return Task{}, ErrQueueFull
	}

	r.tasks[t.ID] = t
	r.metrics.TaskStarted()
	slog.Debug("task queued", "task_id", t.ID, "kind", kind)
	return *t, nil
}

// Get returns a snapshot of the task with the given id.
func (r *Runner) Get(id string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// Shutdown stops accepting tasks and waits for queued and running tasks to
// finish. If ctx expires first, running tasks are cancelled and ctx.Err()
// is returned once the workers exit.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		return ctx.Err()
	}
}

func (r *Runner) work() {
	defer r.wg.Done()
	for j := range r.jobs {
		r.run(j)
	}
}

func (r *Runner) run(j job) {
	r.setStatus(j.id, StatusRunning, 0, nil)

	videoID, err := r.safeCall(j)
	if err != nil {
		slog.Warn("task failed", "task_id", j.id, "error", err)
		r.setStatus(j.id, StatusFailed, 0, err)
	} else {
		slog.Info("task done", "task_id", j.id, "video_id", videoID)
		r.setStatus(j.id, StatusDone, videoID, nil)
	}
	r.metrics.TaskFinished()
}

func (r *Runner) safeCall(j job) (videoID int64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("task panic recovered", "task_id", j.id, "error", rec)
			err = errors.New("internal error")
		}
	}()
	return j.fn(r.ctx)
}

func (r *Runner) setStatus(id string, s Status, videoID int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return
	}
	t.Status = s
	if videoID != 0 {
		t.VideoID = videoID
	}
	if err != nil {
		t.Error = err.Error()
	}
	if s == StatusDone || s == StatusFailed {
		now := time.Now().UTC()
		t.FinishedAt = &now
	}
}

// pruneLocked forgets finished tasks older than the retention period.
func (r *Runner) pruneLocked(now time.Time) {
	cutoff := now.Add(-r.retention)
	for id, t := range r.tasks {
		if t.FinishedAt != nil && t.FinishedAt.Before(cutoff) {
			delete(r.tasks, id)
		}
	}
}
