// internal/app/system/saga/saga.go

// Package saga runs an ordered sequence of steps whose writes target
// independent collaborators with no shared transaction boundary. Each step
// pairs an action with a compensating action; on failure the completed steps
// are unwound in reverse order.
//
// Compensation failures are logged and reported, never retried: the caller is
// expected to surface them for manual intervention.
package saga

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Step is one (action, compensating-action) pair.
type Step struct {
	// Name identifies the step in logs and error messages.
	Name string
	// Run performs the step's write.
	Run func(ctx context.Context) error
	// Compensate undoes the step's write. May be nil for steps that need no
	// compensation.
	Compensate func(ctx context.Context) error
}

// Saga executes steps in order.
type Saga struct {
	name  string
	steps []Step
	log   *zap.Logger
}

// New creates a saga. The name appears in every log line the saga emits.
func New(name string, log *zap.Logger) *Saga {
	if log == nil {
		log = zap.NewNop()
	}
	return &Saga{name: name, log: log}
}

// AddStep appends a step; steps run in insertion order.
func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the steps in order. If a step fails, the compensations of all
// previously completed steps run in reverse order and the step's error is
// returned wrapped with the step name. Compensation errors are logged but do
// not mask the original failure.
func (s *Saga) Execute(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.Run(ctx); err != nil {
			s.log.Warn("saga step failed; unwinding",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err))
			s.unwind(ctx, i-1)
			return fmt.Errorf("%s: %s: %w", s.name, step.Name, err)
		}
	}
	return nil
}

// unwind compensates steps[0..last] in reverse order.
func (s *Saga) unwind(ctx context.Context, last int) {
	for i := last; i >= 0; i-- {
		step := s.steps[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			// The unwound write is now orphaned; record enough to fix by hand.
			s.log.Error("saga compensation failed; manual intervention required",
				zap.String("saga", s.name),
				zap.String("step", step.Name),
				zap.Error(err))
		}
	}
}
