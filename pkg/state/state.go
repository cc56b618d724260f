// Package state holds the reading shared between the sampling task (sole
// writer) and the reporting task (sole reader).
//
// Both sides acquire the lock with a bounded wait. When the wait expires the
// access is skipped: the writer drops its update and the reader keeps its
// previous copy. Neither case is an error.
package state

import (
	"sync"
	"time"

	"github.com/itohio/sensornode/pkg/reading"
)

// DefaultTimeout is the bounded wait used when New is given a non-positive timeout.
const DefaultTimeout = 10 * time.Millisecond

// Outcome tells whether an access acquired the lock.
type Outcome int

const (
	Acquired Outcome = iota
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Acquired:
		return "acquired"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// cell is the reading plus its lock. The lock is a one-slot semaphore so that
// acquisition can give up after a timeout.
type cell struct {
	sem     chan struct{}
	timeout time.Duration
	value   reading.Reading
}

// Writer is the write-only handle held by the sampling task.
type Writer struct {
	c *cell
}

// Reader is the read-only handle held by the reporting task.
type Reader struct {
	c    *cell
	last reading.Reading
}

// New creates the shared reading state and returns its only two handles.
func New(timeout time.Duration) (*Writer, *Reader) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &cell{
		sem:     make(chan struct{}, 1),
		timeout: timeout,
	}
	return &Writer{c: c}, &Reader{c: c}
}

// Write overwrites all fields at once. If the lock cannot be acquired within
// the bound the update is dropped and TimedOut is returned.
func (w *Writer) Write(r reading.Reading) Outcome {
	if !w.c.acquire() {
		return TimedOut
	}
	w.c.value = r
	w.c.release()
	return Acquired
}

// Read copies all fields at once. If the lock cannot be acquired within the
// bound the reader's previous copy is returned with TimedOut.
func (r *Reader) Read() (reading.Reading, Outcome) {
	if !r.c.acquire() {
		return r.last, TimedOut
	}
	r.last = r.c.value
	r.c.release()
	return r.last, Acquired
}

// Last returns the reader's most recent copy without touching the lock.
func (r *Reader) Last() reading.Reading {
	return r.last
}

// Hold takes the lock with the same bounded wait and keeps it until release
// is called. Accesses from either handle time out while it is held. release
// is safe to call more than once and is a no-op when the outcome is TimedOut.
func (w *Writer) Hold() (release func(), o Outcome) {
	if !w.c.acquire() {
		return func() {}, TimedOut
	}
	var once sync.Once
	return func() { once.Do(w.c.release) }, Acquired
}

// Timeout returns the bounded wait.
func (w *Writer) Timeout() time.Duration {
	return w.c.timeout
}

func (c *cell) acquire() bool {
	// Fast path: uncontended
	select {
	case c.sem <- struct{}{}:
		return true
	default:
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case c.sem <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

func (c *cell) release() {
	<-c.sem
}
