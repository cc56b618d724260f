package node

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/sensornode/pkg/reading"
	"github.com/itohio/sensornode/pkg/state"
)

func TestSampler_WritesValidReading(t *testing.T) {
	sensor := &fakeClimate{motion: true}
	sensor.push(reading.Climate{Temperature: 21.5, Humidity: 48})
	w, r := state.New(state.DefaultTimeout)
	logger, logs := newTestLogger()

	s := NewSampler(sensor, sensor, w, time.Second, logger)
	at := time.Unix(100, 0)
	s.now = func() time.Time { return at }

	require.True(t, s.Sample(context.Background()))

	got, outcome := r.Read()
	assert.Equal(t, state.Acquired, outcome)
	assert.Equal(t, reading.Reading{Temperature: 21.5, Humidity: 48, Motion: true, Timestamp: at}, got)
	assert.Contains(t, logs.String(), "Temp: 21.5°C | Humidity: 48.0% | Motion: DETECTED")
}

func TestSampler_FailSkip(t *testing.T) {
	const failures = 5

	sensor := &fakeClimate{}
	sensor.push(reading.Climate{Temperature: 20, Humidity: 40})
	for range failures {
		sensor.push(reading.InvalidClimate())
	}
	sensor.push(reading.Climate{Temperature: 25, Humidity: 50})

	w, r := state.New(state.DefaultTimeout)
	logger, logs := newTestLogger()
	s := NewSampler(sensor, sensor, w, time.Second, logger)
	ctx := context.Background()

	require.True(t, s.Sample(ctx))
	first, _ := r.Read()

	for i := range failures {
		assert.False(t, s.Sample(ctx), "cycle %d", i)
		got, _ := r.Read()
		assert.Equal(t, first, got, "state is unchanged by a failed read")
	}
	assert.Equal(t, failures, logs.Count("Failed to read climate sensor"))

	require.True(t, s.Sample(ctx), "recovers on the next good read")
	got, _ := r.Read()
	assert.Equal(t, float32(25), got.Temperature)
	assert.Equal(t, failures+2, sensor.Reads(), "no early retries")
}

func TestSampler_MotionLoggedOnFailure(t *testing.T) {
	sensor := &fakeClimate{motion: true}
	sensor.push(reading.InvalidClimate())
	w, _ := state.New(state.DefaultTimeout)
	logger, logs := newTestLogger()

	assert.False(t, NewSampler(sensor, sensor, w, time.Second, logger).Sample(context.Background()))
	assert.Contains(t, logs.String(), "motion=true")
}

func TestSampler_StateBusy(t *testing.T) {
	sensor := &fakeClimate{}
	sensor.push(reading.Climate{Temperature: 20, Humidity: 40})
	sensor.push(reading.Climate{Temperature: 30, Humidity: 60})

	w, r := state.New(5 * time.Millisecond)
	logger, logs := newTestLogger()
	s := NewSampler(sensor, sensor, w, time.Second, logger)
	ctx := context.Background()

	require.True(t, s.Sample(ctx))
	first, _ := r.Read()

	release, outcome := w.Hold()
	require.Equal(t, state.Acquired, outcome)
	assert.False(t, s.Sample(ctx), "a sample taken while the state is held is dropped")
	release()

	assert.Equal(t, 1, logs.Count("Reading state busy, sample dropped"))
	assert.Contains(t, logs.String(), "timeout=5ms")
	got, outcome := r.Read()
	assert.Equal(t, state.Acquired, outcome)
	assert.Equal(t, first, got)
}

func TestSampler_Run(t *testing.T) {
	sensor := &fakeClimate{}
	sensor.push(reading.Climate{Temperature: 20, Humidity: 40})
	w, _ := state.New(state.DefaultTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		NewSampler(sensor, sensor, w, time.Hour, nil).Run(ctx)
	}()

	assert.Eventually(t, func() bool { return sensor.Reads() == 1 }, time.Second, time.Millisecond,
		"first sample is taken immediately")

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSampler_Staleness(t *testing.T) {
	const (
		samplePeriod = 20 * time.Millisecond
		reportPeriod = 30 * time.Millisecond
	)

	sensor := &fakeClimate{}
	sensor.push(reading.Climate{Temperature: 20, Humidity: 40})
	w, r := state.New(state.DefaultTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewSampler(sensor, sensor, w, samplePeriod, nil).Run(ctx)

	require.Eventually(t, func() bool {
		got, _ := r.Read()
		return !got.Timestamp.IsZero()
	}, time.Second, time.Millisecond)

	for range 10 {
		time.Sleep(reportPeriod)
		got, _ := r.Read()
		assert.LessOrEqual(t, got.Age(time.Now()), samplePeriod+reportPeriod)
	}
}
