// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"vidshelf/internal/metrics"
)

// waitFor polls until the task reaches a final state.
func waitFor(t *testing.T, r *Runner, id string) Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task, ok := r.Get(id)
		if !ok {
			t.Fatalf("task %s disappeared", id)
		}
		if task.Status == StatusDone || task.Status == StatusFailed {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s did not finish", id)
	return Task{}
}

func TestRunnerLifecycle(t *testing.T) {
	m := metrics.New()
	r := NewRunner(Options{Workers: 2, Metrics: m})
	defer r.Shutdown(context.Background())

	release := make(chan struct{})
	task, err := r.Submit("local", func(ctx context.Context) (int64, error) {
		<-release
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected task id")
	}
	if task.Status != StatusPending {
		t.Errorf("initial status: got %s, want pending", task.Status)
	}

	close(release)
	done := waitFor(t, r, task.ID)
	if done.Status != StatusDone || done.VideoID != 42 {
		t.Errorf("got %+v, want done with video 42", done)
	}
	if done.FinishedAt == nil {
		t.Error("FinishedAt should be set")
	}
	if got := testutil.ToFloat64(m.TasksInFlight); got != 0 {
		t.Errorf("in flight: got %v, want 0", got)
	}
}

func TestRunnerFailureAndPanic(t *testing.T) {
	r := NewRunner(Options{Workers: 1})
	defer r.Shutdown(context.Background())

	failed, _ := r.Submit("remote", func(ctx context.Context) (int64, error) {
		return 0, errors.New("thumbnail acquisition failed")
	})
	panicked, _ := r.Submit("remote", func(ctx context.Context) (int64, error) {
		panic("boom")
	})

	if got := waitFor(t, r, failed.ID); got.Status != StatusFailed || got.Error != "thumbnail acquisition failed" {
		t.Errorf("failed task: got %+v", got)
	}
	if got := waitFor(t, r, panicked.ID); got.Status != StatusFailed {
		t.Errorf("panicked task: got %+v", got)
	}
}

func TestRunnerGetUnknown(t *testing.T) {
	r := NewRunner(Options{})
	defer r.Shutdown(context.Background())
	if _, ok := r.Get("nope"); ok {
		t.Error("unknown id should not be found")
	}
}

func TestRunnerShutdownDrains(t *testing.T) {
	r := NewRunner(Options{Workers: 1})

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		if _, err := r.Submit("local", func(ctx context.Context) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			ran.Add(1)
			return 1, nil
		}); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got := ran.Load(); got != 5 {
		t.Errorf("ran: got %d, want 5", got)
	}

	if _, err := r.Submit("local", func(ctx context.Context) (int64, error) { return 0, nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit after shutdown: got %v, want ErrClosed", err)
	}
	// A second shutdown is harmless.
	if err := r.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}

func TestRunnerShutdownDeadlineCancelsRunning(t *testing.T) {
	r := NewRunner(Options{Workers: 1})

	started := make(chan struct{})
	task, _ := r.Submit("remote", func(ctx context.Context) (int64, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown: got %v, want deadline exceeded", err)
	}
	if got, _ := r.Get(task.ID); got.Status != StatusFailed {
		t.Errorf("status: got %s, want failed", got.Status)
	}
}

func TestRunnerQueueFull(t *testing.T) {
	r := NewRunner(Options{Workers: 1, QueueSize: 1})
	release := make(chan struct{})
	defer func() {
		close(release)
		r.Shutdown(context.Background())
	}()

	block := func(ctx context.Context) (int64, error) {
		<-release
		return 1, nil
	}

	started := make(chan struct{})
	if _, err := r.Submit("local", func(ctx context.Context) (int64, error) {
		close(started)
		<-release
		return 1, nil
	}); err != nil {
		t.Fatal(err)
	}
	<-started // worker busy, queue empty

	if _, err := r.Submit("local", block); err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if _, err := r.Submit("local", block); !errors.Is(err, ErrQueueFull) {
		t.Errorf("third Submit: got %v, want ErrQueueFull", err)
	}
}
