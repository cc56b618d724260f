package main

import (
	"math"

	"fyne.io/fyne/v2/widget"

	"github.com/itohio/sensornode/pkg/network"
	"github.com/itohio/sensornode/pkg/sensor"
)

// simulatedLink returns the running simulated link, if any.
func simulatedLink(state *appState) *network.Simulated {
	if state.hw == nil {
		return nil
	}
	link, _ := state.hw.Link.(*network.Simulated)
	return link
}

// mockDevice returns the running simulated sensor, if any.
func mockDevice(state *appState) *sensor.Mock {
	if state.hw == nil {
		return nil
	}
	dev, _ := state.hw.Device.(*sensor.Mock)
	return dev
}

// handleLinkToggle drops or restores the simulated network link.
func handleLinkToggle(state *appState) {
	link := simulatedLink(state)
	if link == nil {
		return
	}
	state.linkDown = !state.linkDown
	link.SetConnected(!state.linkDown)
	updateToggles(state)
}

// handleMotionToggle forces the simulated PIR high, or releases it back to
// random motion.
func handleMotionToggle(state *appState) {
	dev := mockDevice(state)
	if dev == nil {
		return
	}
	state.motionOn = !state.motionOn
	if state.motionOn {
		dev.SetMotion(true)
	} else {
		dev.ReleaseMotion()
	}
	updateToggles(state)
}

// handleFaultToggle makes every simulated climate read fail until toggled off.
func handleFaultToggle(state *appState) {
	dev := mockDevice(state)
	if dev == nil {
		return
	}
	state.faultOn = !state.faultOn
	if state.faultOn {
		dev.FailNext(math.MaxInt32)
	} else {
		dev.FailNext(0)
	}
	updateToggles(state)
}

// updateToggles enables the toggles the running hardware supports and shows
// their state.
func updateToggles(state *appState) {
	enable(state.linkBtn, simulatedLink(state) != nil)
	enable(state.motionBtn, mockDevice(state) != nil)
	enable(state.faultBtn, mockDevice(state) != nil)

	updateToggleButton(state.linkBtn, state.linkDown)
	updateToggleButton(state.motionBtn, state.motionOn)
	updateToggleButton(state.faultBtn, state.faultOn)
}

func enable(btn *widget.Button, on bool) {
	if on {
		btn.Enable()
	} else {
		btn.Disable()
	}
}

// updateToggleButton updates a single toggle button's visual state.
func updateToggleButton(btn *widget.Button, isOn bool) {
	if isOn {
		btn.Importance = widget.HighImportance
	} else {
		btn.Importance = widget.MediumImportance
	}
	btn.Refresh()
}
