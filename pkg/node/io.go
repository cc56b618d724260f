// Package node runs the sensor node: bootstrap, the shared reading state and
// the three periodic tasks (indicator, sampler, reporter).
package node

import "github.com/itohio/sensornode/pkg/reading"

// Output is a digital output pin.
type Output interface {
	Set(on bool) error
}

// OutputFunc adapts a function to an Output.
type OutputFunc func(on bool) error

// Set calls f(on).
func (f OutputFunc) Set(on bool) error {
	return f(on)
}

// ClimateSensor returns temperature and humidity. Both are NaN on failure.
type ClimateSensor interface {
	ReadClimate() reading.Climate
}

// MotionSensor returns the PIR state. The read never fails.
type MotionSensor interface {
	MotionDetected() bool
}
