// Package report submits encoded readings to a remote collector.
package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/itohio/sensornode/pkg/config"
)

// TransportErrorCode is the code logged when a submission does not complete.
const TransportErrorCode = -1

// Response is the outcome of a completed submission.
type Response struct {
	StatusCode int    // Positive on completion
	Body       string // Verbatim response body, possibly cut short
	Truncated  bool   // Body exceeded the kept size
}

// Submitter delivers one encoded payload. An error means the submission did
// not complete; no retry is attempted by callers.
type Submitter interface {
	Submit(ctx context.Context, payload []byte) (Response, error)
	Close() error
}

// Ensure HTTP implements Submitter.
var _ Submitter = (*HTTP)(nil)

// Ensure MQTT implements Submitter.
var _ Submitter = (*MQTT)(nil)

// New creates the submitter selected by the report configuration.
func New(cfg config.ReportConfig, nodeID string, logger *slog.Logger) (Submitter, error) {
	switch cfg.Transport {
	case config.TransportHTTP, "":
		return NewHTTP(cfg.URL, cfg.Timeout), nil
	case config.TransportMQTT:
		return NewMQTT(cfg.MQTT, nodeID, logger)
	default:
		return nil, fmt.Errorf("unknown report transport: %q", cfg.Transport)
	}
}
