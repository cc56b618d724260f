package node

import (
	"context"
	"log/slog"
	"time"

	"github.com/itohio/sensornode/pkg/diag"
)

// Indicator blinks an output with a fixed half period.
type Indicator struct {
	out        Output
	halfPeriod time.Duration
	logger     *slog.Logger
}

// NewIndicator creates a blinker for out.
func NewIndicator(out Output, halfPeriod time.Duration, logger *slog.Logger) *Indicator {
	return &Indicator{
		out:        out,
		halfPeriod: halfPeriod,
		logger:     diag.OrDiscard(logger),
	}
}

// Run drives the output high, then inverts it every half period until ctx is
// done. Output errors are logged and the blinking continues.
func (i *Indicator) Run(ctx context.Context) {
	ticker := time.NewTicker(i.halfPeriod)
	defer ticker.Stop()

	level := true
	for {
		if err := i.out.Set(level); err != nil {
			i.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to set indicator",
				slog.Bool("level", level), slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			level = !level
		}
	}
}
