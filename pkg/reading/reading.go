// Package reading defines the sensor reading exchanged between the sampling
// and reporting tasks.
package reading

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
)

// Reading is the latest temperature, humidity and motion triple.
type Reading struct {
	Temperature float32   // °C
	Humidity    float32   // %RH
	Motion      bool      // PIR output
	Timestamp   time.Time // When the triple was sampled (zero before the first sample)
}

// Climate is a temperature/humidity pair returned by a climate sensor driver.
// A failed read is reported as NaN in both fields.
type Climate struct {
	Temperature float32
	Humidity    float32
}

// InvalidClimate returns the pair a driver reports when a read fails.
func InvalidClimate() Climate {
	return Climate{Temperature: math32.NaN(), Humidity: math32.NaN()}
}

// Valid reports whether both fields hold a number.
func (c Climate) Valid() bool {
	return !math32.IsNaN(c.Temperature) && !math32.IsNaN(c.Humidity) &&
		!math32.IsInf(c.Temperature, 0) && !math32.IsInf(c.Humidity, 0)
}

// With combines the climate pair with a motion state into a Reading.
func (c Climate) With(motion bool, at time.Time) Reading {
	return Reading{
		Temperature: c.Temperature,
		Humidity:    c.Humidity,
		Motion:      motion,
		Timestamp:   at,
	}
}

// Age returns how long ago the reading was sampled.
func (r Reading) Age(now time.Time) time.Duration {
	if r.Timestamp.IsZero() {
		return 0
	}
	return now.Sub(r.Timestamp)
}

// MotionState returns the human-readable motion state.
func (r Reading) MotionState() string {
	if r.Motion {
		return "DETECTED"
	}
	return "NONE"
}

func (r Reading) String() string {
	return fmt.Sprintf("Temp: %.1f°C | Humidity: %.1f%% | Motion: %s",
		r.Temperature, r.Humidity, r.MotionState())
}
