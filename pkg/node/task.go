package node

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/diag"
)

// Task names.
const (
	TaskIndicator = "indicator"
	TaskSampler   = "sampler"
	TaskReporter  = "reporter"
)

// TaskSpec declares how a periodic task is scheduled. On the Go runtime
// Priority, Core and StackWords are advisory: they are validated and recorded
// but every task simply runs in its own goroutine.
type TaskSpec struct {
	Name       string
	Priority   int
	Core       int
	StackWords int
}

// SpecFrom builds a TaskSpec from task configuration.
func SpecFrom(name string, tc config.TaskConfig) TaskSpec {
	return TaskSpec{
		Name:       name,
		Priority:   tc.Priority,
		Core:       tc.Core,
		StackWords: tc.StackWords,
	}
}

// Validate checks the scheduling parameters.
func (s TaskSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if s.Priority < 0 {
		return fmt.Errorf("task %s: priority must be >= 0, got %d", s.Name, s.Priority)
	}
	if s.Core < 0 {
		return fmt.Errorf("task %s: core must be >= 0, got %d", s.Name, s.Core)
	}
	if s.StackWords <= 0 {
		return fmt.Errorf("task %s: stack words must be > 0, got %d", s.Name, s.StackWords)
	}
	return nil
}

// Spawner starts tasks and waits for them to exit.
type Spawner interface {
	Spawn(ctx context.Context, spec TaskSpec, run func(context.Context)) error
	Wait()
}

// Ensure Scheduler implements Spawner.
var _ Spawner = (*Scheduler)(nil)

// Scheduler runs each task in its own goroutine.
type Scheduler struct {
	logger *slog.Logger

	mu    sync.Mutex
	tasks []TaskSpec
	wg    sync.WaitGroup
}

// NewScheduler creates an empty scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{logger: diag.OrDiscard(logger)}
}

// Spawn validates spec and starts run with ctx. Task names must be unique.
func (s *Scheduler) Spawn(ctx context.Context, spec TaskSpec, run func(context.Context)) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	for _, t := range s.tasks {
		if t.Name == spec.Name {
			s.mu.Unlock()
			return fmt.Errorf("task %s already spawned", spec.Name)
		}
	}
	s.tasks = append(s.tasks, spec)
	s.mu.Unlock()

	s.logger.Info("Task started",
		slog.String("task", spec.Name),
		slog.Int("priority", spec.Priority),
		slog.Int("core", spec.Core),
		slog.Int("stack_words", spec.StackWords))

	s.wg.Go(func() {
		run(ctx)
		s.logger.Debug("Task stopped", slog.String("task", spec.Name))
	})
	return nil
}

// Tasks returns the specs of all spawned tasks in spawn order.
func (s *Scheduler) Tasks() []TaskSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TaskSpec(nil), s.tasks...)
}

// Wait blocks until every spawned task has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
