package network

import (
	"sync"
	"time"
)

// Simulated is a Link that associates after a fixed delay. The connection can
// be dropped and restored with SetConnected.
type Simulated struct {
	delay time.Duration
	now   func() time.Time

	mu       sync.RWMutex
	begunAt  time.Time
	begun    bool
	override *bool
}

// NewSimulated creates a simulated link that connects delay after Begin.
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{
		delay: delay,
		now:   time.Now,
	}
}

// Begin starts the simulated association.
func (s *Simulated) Begin(ssid, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.begun {
		s.begun = true
		s.begunAt = s.now()
	}
	return nil
}

// Status reports the simulated state.
func (s *Simulated) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.override != nil {
		if *s.override {
			return Connected
		}
		if s.begun {
			return Disconnected
		}
		return Idle
	}
	if !s.begun {
		return Idle
	}
	if s.now().Sub(s.begunAt) < s.delay {
		return Connecting
	}
	return Connected
}

// SetConnected forces the link up or down, overriding the association delay.
func (s *Simulated) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.override = &connected
}
