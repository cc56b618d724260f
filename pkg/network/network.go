// Package network provides the connectivity links the node waits on before
// reporting.
package network

// Status is the association state of a link.
type Status int

const (
	Idle Status = iota
	Connecting
	Connected
	Disconnected
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Link associates with a wireless network and reports connectivity.
// Begin starts association and returns immediately; callers poll Status.
type Link interface {
	Begin(ssid, password string) error
	Status() Status
}

// Ensure Interface implements Link.
var _ Link = (*Interface)(nil)

// Ensure Simulated implements Link.
var _ Link = (*Simulated)(nil)
