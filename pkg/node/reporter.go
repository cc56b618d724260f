package node

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/itohio/sensornode/pkg/diag"
	"github.com/itohio/sensornode/pkg/network"
	"github.com/itohio/sensornode/pkg/reading"
	"github.com/itohio/sensornode/pkg/report"
	"github.com/itohio/sensornode/pkg/state"
)

// Report is the outcome of one reporting cycle.
type Report struct {
	At        time.Time
	Reading   reading.Reading
	Outcome   state.Outcome // Whether Reading is fresh from the state or the previous copy
	Connected bool
	Payload   []byte
	Response  report.Response
	Err       error
}

// Submitted reports whether the submission completed with a status code.
func (r Report) Submitted() bool {
	return r.Response.StatusCode > 0
}

// Reporter periodically submits the latest reading while the link is up.
type Reporter struct {
	state     *state.Reader
	link      network.Link
	submitter report.Submitter
	period    time.Duration
	poll      time.Duration
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.RWMutex
	observers []func(Report)
}

// NewReporter creates a reporter reading r every period. poll is the link
// status interval used by WaitForNetwork.
func NewReporter(r *state.Reader, link network.Link, submitter report.Submitter, period, poll time.Duration, logger *slog.Logger) *Reporter {
	return &Reporter{
		state:     r,
		link:      link,
		submitter: submitter,
		period:    period,
		poll:      poll,
		logger:    diag.OrDiscard(logger),
		now:       time.Now,
	}
}

// OnReport registers fn to receive every cycle's Report. fn runs on the
// reporter goroutine and must not block.
func (r *Reporter) OnReport(fn func(Report)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Run waits for the link and then reports once per period until ctx is done.
func (r *Reporter) Run(ctx context.Context) {
	if err := r.WaitForNetwork(ctx); err != nil {
		return
	}

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		r.Cycle(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// WaitForNetwork polls the link until it is connected or ctx is done.
func (r *Reporter) WaitForNetwork(ctx context.Context) error {
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for r.link.Status() != network.Connected {
		r.logger.LogAttrs(ctx, slog.LevelInfo, "Waiting for network")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Cycle performs one reporting cycle. Nothing is submitted while the link is
// down, and a failed submission is not retried.
func (r *Reporter) Cycle(ctx context.Context) Report {
	latest, outcome := r.state.Read()
	rep := Report{
		At:      r.now(),
		Reading: latest,
		Outcome: outcome,
	}
	defer func() { r.notify(rep) }()

	if outcome == state.TimedOut {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "Reading state busy, reporting previous reading")
	}

	if r.link.Status() != network.Connected {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "Network disconnected")
		return rep
	}
	rep.Connected = true

	payload, err := report.Encode(latest)
	if err != nil {
		rep.Err = err
		r.logger.LogAttrs(ctx, slog.LevelError, "Failed to encode reading", slog.Any("error", err))
		return rep
	}
	rep.Payload = payload
	r.logger.LogAttrs(ctx, slog.LevelInfo, "Posting reading", slog.String("payload", string(payload)))

	rep.Response, rep.Err = r.submitter.Submit(ctx, payload)
	switch {
	case rep.Submitted():
		r.logger.LogAttrs(ctx, slog.LevelInfo, "Response",
			slog.Int("status", rep.Response.StatusCode),
			slog.String("body", rep.Response.Body))
		if rep.Response.Truncated {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "Response body truncated", slog.Int("kept", len(rep.Response.Body)))
		}
		if rep.Err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "Incomplete response", slog.Any("error", rep.Err))
		}
	default:
		r.logger.LogAttrs(ctx, slog.LevelError, "Failed to post reading",
			slog.Int("code", report.TransportErrorCode),
			slog.Any("error", rep.Err))
	}
	return rep
}

func (r *Reporter) notify(rep Report) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fn := range r.observers {
		fn(rep)
	}
}
