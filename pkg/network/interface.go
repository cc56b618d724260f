package network

import (
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/itohio/sensornode/pkg/diag"
)

// Interface is a Link backed by a host network interface. Association itself
// is handled by the operating system; the link reports Connected while the
// interface is up and has a unicast address.
type Interface struct {
	name   string
	logger *slog.Logger
	lookup func(name string) (bool, error)

	mu        sync.Mutex
	begun     bool
	connected bool // Seen connected at least once
}

// NewInterface creates a link watching the named host interface.
func NewInterface(name string, logger *slog.Logger) *Interface {
	logger = diag.OrDiscard(logger)
	return &Interface{
		name:   name,
		logger: logger,
		lookup: interfaceUp,
	}
}

// Begin records the association request. The SSID is only logged: the host
// network manager owns the actual association.
func (i *Interface) Begin(ssid, password string) error {
	if i.name == "" {
		return fmt.Errorf("no interface configured")
	}
	i.mu.Lock()
	i.begun = true
	i.mu.Unlock()

	i.logger.Info("Connecting to network",
		slog.String("ssid", ssid),
		slog.String("interface", i.name),
		slog.Bool("credential", password != ""))
	return nil
}

// Status reports the interface state.
func (i *Interface) Status() Status {
	up, err := i.lookup(i.name)

	i.mu.Lock()
	defer i.mu.Unlock()

	switch {
	case err == nil && up:
		i.connected = true
		return Connected
	case i.connected:
		return Disconnected
	case i.begun:
		return Connecting
	default:
		return Idle
	}
}

// interfaceUp reports whether the interface is up with a non-loopback unicast address.
func interfaceUp(name string) (bool, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return false, err
	}
	if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagRunning == 0 {
		return false, nil
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return false, err
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ipNet.IP.IsGlobalUnicast() || ipNet.IP.IsLinkLocalUnicast() {
			return true, nil
		}
	}
	return false, nil
}
