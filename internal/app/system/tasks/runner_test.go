package tasks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunner_RunsAndStops(t *testing.T) {
	var runs atomic.Int64
	job := Job{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	}

	r := NewRunner(zap.NewNop(), job)
	r.Start()
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	got := runs.Load()
	if got == 0 {
		t.Fatal("job never ran")
	}

	// No further runs after Stop.
	time.Sleep(50 * time.Millisecond)
	if runs.Load() != got {
		t.Error("job ran after Stop")
	}
}

func TestRunner_FailingJobKeepsRunning(t *testing.T) {
	var runs atomic.Int64
	job := Job{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return context.DeadlineExceeded
		},
	}

	r := NewRunner(zap.NewNop(), job)
	r.Start()
	time.Sleep(100 * time.Millisecond)
	r.Stop()

	if runs.Load() < 2 {
		t.Errorf("failing job should keep being retried, ran %d times", runs.Load())
	}
}
