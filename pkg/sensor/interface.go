// Package sensor provides the climate and motion sensor drivers used by the node.
package sensor

import "github.com/itohio/sensornode/pkg/reading"

// Device defines the interface for sensor devices (real or mocked).
type Device interface {
	Connect() error
	Close() error
	// ReadClimate returns the latest climate sample. Both fields are NaN when
	// the read failed.
	ReadClimate() reading.Climate
	MotionDetected() bool
	SetIndicator(on bool) error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
