package reading

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestClimate_Valid(t *testing.T) {
	tests := []struct {
		name    string
		climate Climate
		want    bool
	}{
		{name: "both numeric", climate: Climate{Temperature: 21.5, Humidity: 48}, want: true},
		{name: "zero is a number", climate: Climate{}, want: true},
		{name: "failed read", climate: InvalidClimate(), want: false},
		{name: "temperature NaN", climate: Climate{Temperature: math32.NaN(), Humidity: 40}, want: false},
		{name: "humidity NaN", climate: Climate{Temperature: 20, Humidity: math32.NaN()}, want: false},
		{name: "infinite", climate: Climate{Temperature: math32.Inf(1), Humidity: 40}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.climate.Valid())
		})
	}
}

func TestClimate_With(t *testing.T) {
	at := time.Date(2024, time.March, 3, 10, 0, 0, 0, time.UTC)
	r := Climate{Temperature: 21.5, Humidity: 48}.With(true, at)

	assert.Equal(t, Reading{Temperature: 21.5, Humidity: 48, Motion: true, Timestamp: at}, r)
	assert.Equal(t, "DETECTED", r.MotionState())
	assert.Equal(t, 5*time.Second, r.Age(at.Add(5*time.Second)))
}

func TestReading_ZeroValue(t *testing.T) {
	var r Reading

	assert.Equal(t, time.Duration(0), r.Age(time.Now()))
	assert.Equal(t, "NONE", r.MotionState())
	assert.Equal(t, "Temp: 0.0°C | Humidity: 0.0% | Motion: NONE", r.String())
}
