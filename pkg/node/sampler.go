package node

import (
	"context"
	"log/slog"
	"time"

	"github.com/itohio/sensornode/pkg/diag"
	"github.com/itohio/sensornode/pkg/state"
)

// Sampler periodically reads the sensors and publishes valid readings to the
// shared state.
type Sampler struct {
	climate ClimateSensor
	motion  MotionSensor
	state   *state.Writer
	period  time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewSampler creates a sampler writing to w every period.
func NewSampler(climate ClimateSensor, motion MotionSensor, w *state.Writer, period time.Duration, logger *slog.Logger) *Sampler {
	return &Sampler{
		climate: climate,
		motion:  motion,
		state:   w,
		period:  period,
		logger:  diag.OrDiscard(logger),
		now:     time.Now,
	}
}

// Run samples immediately and then once per period until ctx is done.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		s.Sample(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Sample performs one cycle and reports whether the shared state was updated.
// A failed climate read leaves the state untouched; motion is read regardless.
func (s *Sampler) Sample(ctx context.Context) bool {
	climate := s.climate.ReadClimate()
	motion := s.motion.MotionDetected()

	if !climate.Valid() {
		s.logger.LogAttrs(ctx, slog.LevelError, "Failed to read climate sensor",
			slog.Bool("motion", motion))
		return false
	}

	r := climate.With(motion, s.now())
	if s.state.Write(r) == state.TimedOut {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Reading state busy, sample dropped",
			slog.Duration("timeout", s.state.Timeout()))
		return false
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, r.String(),
		slog.Float64("temp", float64(r.Temperature)),
		slog.Float64("humid", float64(r.Humidity)),
		slog.Bool("motion", motion))
	return true
}
