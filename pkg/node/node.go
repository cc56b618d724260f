package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/diag"
	"github.com/itohio/sensornode/pkg/network"
	"github.com/itohio/sensornode/pkg/report"
	"github.com/itohio/sensornode/pkg/state"
)

// idlePeriod is the bootstrap idle loop interval once tasks are running.
const idlePeriod = time.Second

// Deps are the collaborators a node runs against.
type Deps struct {
	Climate   ClimateSensor
	Motion    MotionSensor
	Indicator Output
	Link      network.Link
	Submitter report.Submitter
	Spawner   Spawner // Defaults to a Scheduler
}

// Node bootstraps the link and the periodic tasks.
type Node struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger

	observers []func(Report)
}

// New creates a node. Every dependency except the spawner is required.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Node, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	switch {
	case deps.Climate == nil:
		return nil, errors.New("climate sensor is required")
	case deps.Motion == nil:
		return nil, errors.New("motion sensor is required")
	case deps.Indicator == nil:
		return nil, errors.New("indicator output is required")
	case deps.Link == nil:
		return nil, errors.New("network link is required")
	case deps.Submitter == nil:
		return nil, errors.New("submitter is required")
	}

	logger = diag.OrDiscard(logger)
	if deps.Spawner == nil {
		deps.Spawner = NewScheduler(logger)
	}

	// The caller may keep editing its config; the node works from a snapshot.
	snapshot := *cfg
	return &Node{
		cfg:    &snapshot,
		deps:   deps,
		logger: logger,
	}, nil
}

// OnReport registers fn with the reporter. Register before Boot.
func (n *Node) OnReport(fn func(Report)) {
	n.observers = append(n.observers, fn)
}

// Boot associates with the network, creates the shared reading state and
// spawns the tasks. It retries association until the link is connected or
// ctx is done; no task is spawned before that.
func (n *Node) Boot(ctx context.Context) error {
	n.logger.Info("Booting", slog.String("node", n.cfg.Node.ID))

	if err := n.associate(ctx); err != nil {
		return err
	}
	n.logger.Info("Network connected")

	w, r := state.New(n.cfg.Sampling.LockTimeout)

	indicator := NewIndicator(n.deps.Indicator, n.cfg.Indicator.HalfPeriod, n.taskLogger(TaskIndicator))
	sampler := NewSampler(n.deps.Climate, n.deps.Motion, w, n.cfg.Sampling.Period, n.taskLogger(TaskSampler))
	reporter := NewReporter(r, n.deps.Link, n.deps.Submitter,
		n.cfg.Report.Period, n.cfg.Report.NetworkPoll, n.taskLogger(TaskReporter))
	for _, fn := range n.observers {
		reporter.OnReport(fn)
	}

	tasks := []struct {
		spec TaskSpec
		run  func(context.Context)
	}{
		{SpecFrom(TaskIndicator, n.cfg.Tasks.Indicator), indicator.Run},
		{SpecFrom(TaskSampler, n.cfg.Tasks.Sampler), sampler.Run},
		{SpecFrom(TaskReporter, n.cfg.Tasks.Reporter), reporter.Run},
	}
	for _, t := range tasks {
		if err := n.deps.Spawner.Spawn(ctx, t.spec, t.run); err != nil {
			return fmt.Errorf("failed to spawn task: %w", err)
		}
	}
	return nil
}

// Run boots the node and idles until ctx is done, then waits for the tasks.
func (n *Node) Run(ctx context.Context) error {
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := n.Boot(ctx); err != nil {
		cancel()
		n.deps.Spawner.Wait()
		if parent.Err() != nil {
			return nil
		}
		return err
	}

	ticker := time.NewTicker(idlePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			n.deps.Spawner.Wait()
			n.logger.Info("Stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (n *Node) associate(ctx context.Context) error {
	ticker := time.NewTicker(n.cfg.Network.AssociationPoll)
	defer ticker.Stop()

	begun := false
	for {
		if !begun {
			if err := n.deps.Link.Begin(n.cfg.Network.SSID, n.cfg.Network.Password); err != nil {
				n.logger.Error("Failed to begin association", slog.Any("error", err))
			} else {
				begun = true
			}
		}
		if begun && n.deps.Link.Status() == network.Connected {
			return nil
		}
		n.logger.Debug("Waiting for association", slog.String("ssid", n.cfg.Network.SSID))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (n *Node) taskLogger(name string) *slog.Logger {
	return n.logger.With(slog.String("task", name))
}
