package sensor

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/reading"
)

// Mock simulates the sensor board for testing and development.
type Mock struct {
	cfg config.MockConfig
	now func() time.Time

	mu        sync.Mutex
	rng       *rand.Rand
	connected bool
	startTime time.Time
	reads     int
	failNext  int
	motion    *bool // Forced motion state, nil when random
	indicator bool
}

// NewMock creates a simulated device. A nil cfg uses the compiled-in defaults.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	seed := uint64(time.Now().UnixNano())
	return &Mock{
		cfg: *cfg,
		now: time.Now,
		rng: rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

// Connect starts the simulation clock.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}
	m.connected = true
	m.startTime = m.now()
	m.reads = 0
	return nil
}

// Close stops the simulated device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.indicator = false
	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// ReadClimate returns a simulated diurnal temperature and humidity pair.
// Humidity moves opposite to temperature over the cycle.
func (m *Mock) ReadClimate() reading.Climate {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return reading.InvalidClimate()
	}

	m.reads++
	if m.failNext > 0 {
		m.failNext--
		return reading.InvalidClimate()
	}
	if m.cfg.FailEvery > 0 && m.reads%m.cfg.FailEvery == 0 {
		return reading.InvalidClimate()
	}

	phase := float32(0)
	if m.cfg.Cycle > 0 {
		elapsed := m.now().Sub(m.startTime)
		phase = 2 * math32.Pi * float32(elapsed%m.cfg.Cycle) / float32(m.cfg.Cycle)
	}
	wave := math32.Sin(phase)

	return reading.Climate{
		Temperature: m.cfg.BaseTemperature + m.cfg.TemperatureSwing*wave + m.noise(),
		Humidity:    clamp(m.cfg.BaseHumidity-m.cfg.HumiditySwing*wave+m.noise(), 0, 100),
	}
}

// MotionDetected returns the forced motion state, or a random one drawn with
// the configured probability.
func (m *Mock) MotionDetected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.motion != nil {
		return *m.motion
	}
	return m.rng.Float64() < m.cfg.MotionProbability
}

// SetIndicator records the indicator state.
func (m *Mock) SetIndicator(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	m.indicator = on
	return nil
}

// Indicator returns the last indicator state.
func (m *Mock) Indicator() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indicator
}

// FailNext makes the next n climate reads fail.
func (m *Mock) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = max(n, 0)
}

// SetMotion forces the motion state.
func (m *Mock) SetMotion(detected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.motion = &detected
}

// ReleaseMotion returns motion to random simulation.
func (m *Mock) ReleaseMotion() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.motion = nil
}

func (m *Mock) noise() float32 {
	if m.cfg.NoiseLevel == 0 {
		return 0
	}
	return (m.rng.Float32()*2 - 1) * m.cfg.NoiseLevel
}

func clamp(v, lo, hi float32) float32 {
	return math32.Min(math32.Max(v, lo), hi)
}
