package node

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/diag"
	"github.com/itohio/sensornode/pkg/network"
	"github.com/itohio/sensornode/pkg/report"
	"github.com/itohio/sensornode/pkg/sensor"
)

// Hardware bundles the drivers built from configuration.
type Hardware struct {
	Device    sensor.Device
	Link      network.Link
	Submitter report.Submitter
}

// NewHardware connects the sensor device (the simulated one when mock is set)
// and creates the link and submitter selected by cfg.
func NewHardware(cfg *config.Config, mock bool, logger *slog.Logger) (*Hardware, error) {
	logger = diag.OrDiscard(logger)

	var dev sensor.Device
	if mock {
		dev = sensor.NewMock(&cfg.Mock)
	} else {
		dev = sensor.NewSerial(cfg.Serial, cfg.Calibration, logger.With(slog.String("device", cfg.Serial.Port)))
	}
	if err := dev.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect sensor device: %w", err)
	}

	var link network.Link
	if cfg.Network.Simulated {
		link = network.NewSimulated(cfg.Network.AssociationDelay)
	} else {
		link = network.NewInterface(cfg.Network.Interface, logger)
	}

	sub, err := report.New(cfg.Report, cfg.Node.ID, logger)
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("failed to create submitter: %w", err)
	}

	return &Hardware{
		Device:    dev,
		Link:      link,
		Submitter: sub,
	}, nil
}

// Deps returns node dependencies backed by the hardware.
func (h *Hardware) Deps() Deps {
	return Deps{
		Climate:   h.Device,
		Motion:    h.Device,
		Indicator: OutputFunc(h.Device.SetIndicator),
		Link:      h.Link,
		Submitter: h.Submitter,
	}
}

// Close releases the device and the submitter.
func (h *Hardware) Close() error {
	return errors.Join(h.Submitter.Close(), h.Device.Close())
}
