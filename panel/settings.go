package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/sensor"
)

// showSettingsDialog displays a settings dialog with tabs for the configuration.
// Changes apply the next time the node is started.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createNetworkTab(state),
		createReportTab(state),
		createSerialTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 450))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 450))
	d.Show()
}

// saveConfig validates and saves the configuration, reverting to prev on error.
func saveConfig(state *appState, prev config.Config) {
	if err := state.cfg.Validate(); err != nil {
		*state.cfg = prev
		dialog.ShowError(fmt.Errorf("invalid settings: %w", err), state.window)
		return
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

func durationEntry(d time.Duration) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(d.String())
	return e
}

func floatEntry(v float32, format string) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(fmt.Sprintf(format, v))
	return e
}

// createNetworkTab creates the Network configuration tab.
func createNetworkTab(state *appState) *container.TabItem {
	ssidEntry := widget.NewEntry()
	ssidEntry.SetText(state.cfg.Network.SSID)

	passwordEntry := widget.NewPasswordEntry()
	passwordEntry.SetText(state.cfg.Network.Password)

	interfaceEntry := widget.NewEntry()
	interfaceEntry.SetText(state.cfg.Network.Interface)

	simulatedCheck := widget.NewCheck("", nil)
	simulatedCheck.SetChecked(state.cfg.Network.Simulated)

	delayEntry := durationEntry(state.cfg.Network.AssociationDelay)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "SSID", Widget: ssidEntry},
			{Text: "Password", Widget: passwordEntry},
			{Text: "Interface", Widget: interfaceEntry},
			{Text: "Simulated link", Widget: simulatedCheck},
			{Text: "Association delay", Widget: delayEntry},
		},
		OnSubmit: func() {
			prev := *state.cfg
			state.cfg.Network.SSID = ssidEntry.Text
			state.cfg.Network.Password = passwordEntry.Text
			state.cfg.Network.Interface = interfaceEntry.Text
			state.cfg.Network.Simulated = simulatedCheck.Checked
			if d, err := time.ParseDuration(delayEntry.Text); err == nil {
				state.cfg.Network.AssociationDelay = d
			}
			saveConfig(state, prev)
		},
	}

	return container.NewTabItem("Network", form)
}

// createReportTab creates the Reporting configuration tab.
func createReportTab(state *appState) *container.TabItem {
	transportSelect := widget.NewSelect([]string{config.TransportHTTP, config.TransportMQTT}, nil)
	transportSelect.SetSelected(state.cfg.Report.Transport)

	urlEntry := widget.NewEntry()
	urlEntry.SetText(state.cfg.Report.URL)

	brokerEntry := widget.NewEntry()
	brokerEntry.SetText(state.cfg.Report.MQTT.Broker)

	topicEntry := widget.NewEntry()
	topicEntry.SetText(state.cfg.Report.MQTT.Topic)

	periodEntry := durationEntry(state.cfg.Report.Period)
	samplingEntry := durationEntry(state.cfg.Sampling.Period)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Transport", Widget: transportSelect},
			{Text: "URL", Widget: urlEntry},
			{Text: "MQTT broker", Widget: brokerEntry},
			{Text: "MQTT topic", Widget: topicEntry},
			{Text: "Report period", Widget: periodEntry},
			{Text: "Sampling period", Widget: samplingEntry},
		},
		OnSubmit: func() {
			prev := *state.cfg
			state.cfg.Report.Transport = transportSelect.Selected
			state.cfg.Report.URL = urlEntry.Text
			state.cfg.Report.MQTT.Broker = brokerEntry.Text
			state.cfg.Report.MQTT.Topic = topicEntry.Text
			if d, err := time.ParseDuration(periodEntry.Text); err == nil {
				state.cfg.Report.Period = d
			}
			if d, err := time.ParseDuration(samplingEntry.Text); err == nil {
				state.cfg.Sampling.Period = d
			}
			saveConfig(state, prev)
		},
	}

	return container.NewTabItem("Reporting", form)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := sensor.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	vrefEntry := floatEntry(state.cfg.Calibration.VRef, "%.2f")
	tempScaleEntry := floatEntry(state.cfg.Calibration.Temperature.Scale, "%.3f")
	tempOffsetEntry := floatEntry(state.cfg.Calibration.Temperature.Offset, "%.3f")
	humidScaleEntry := floatEntry(state.cfg.Calibration.Humidity.Scale, "%.3f")
	humidOffsetEntry := floatEntry(state.cfg.Calibration.Humidity.Offset, "%.3f")

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "VRef (V)", Widget: vrefEntry},
			{Text: "Temperature scale (°C/V)", Widget: tempScaleEntry},
			{Text: "Temperature offset (°C)", Widget: tempOffsetEntry},
			{Text: "Humidity scale (%/V)", Widget: humidScaleEntry},
			{Text: "Humidity offset (%)", Widget: humidOffsetEntry},
		},
		OnSubmit: func() {
			prev := *state.cfg
			if portSelect.Selected != "" {
				state.cfg.Serial.Port = portSelect.Selected
			}
			setFloat(&state.cfg.Calibration.VRef, vrefEntry.Text)
			setFloat(&state.cfg.Calibration.Temperature.Scale, tempScaleEntry.Text)
			setFloat(&state.cfg.Calibration.Temperature.Offset, tempOffsetEntry.Text)
			setFloat(&state.cfg.Calibration.Humidity.Scale, humidScaleEntry.Text)
			setFloat(&state.cfg.Calibration.Humidity.Offset, humidOffsetEntry.Text)
			saveConfig(state, prev)
		},
	}

	return container.NewTabItem("Sensor board", form)
}

// createMockTab creates the simulated sensor configuration tab.
func createMockTab(state *appState) *container.TabItem {
	baseTempEntry := floatEntry(state.cfg.Mock.BaseTemperature, "%.1f")
	tempSwingEntry := floatEntry(state.cfg.Mock.TemperatureSwing, "%.1f")
	baseHumidEntry := floatEntry(state.cfg.Mock.BaseHumidity, "%.1f")
	humidSwingEntry := floatEntry(state.cfg.Mock.HumiditySwing, "%.1f")
	cycleEntry := durationEntry(state.cfg.Mock.Cycle)
	noiseEntry := floatEntry(state.cfg.Mock.NoiseLevel, "%.2f")

	motionEntry := widget.NewEntry()
	motionEntry.SetText(strconv.FormatFloat(state.cfg.Mock.MotionProbability, 'f', 2, 64))

	failEveryEntry := widget.NewEntry()
	failEveryEntry.SetText(strconv.Itoa(state.cfg.Mock.FailEvery))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Base temperature (°C)", Widget: baseTempEntry},
			{Text: "Temperature swing (°C)", Widget: tempSwingEntry},
			{Text: "Base humidity (%)", Widget: baseHumidEntry},
			{Text: "Humidity swing (%)", Widget: humidSwingEntry},
			{Text: "Cycle", Widget: cycleEntry},
			{Text: "Noise level", Widget: noiseEntry},
			{Text: "Motion probability", Widget: motionEntry},
			{Text: "Fail every Nth read (0=never)", Widget: failEveryEntry},
		},
		OnSubmit: func() {
			prev := *state.cfg
			setFloat(&state.cfg.Mock.BaseTemperature, baseTempEntry.Text)
			setFloat(&state.cfg.Mock.TemperatureSwing, tempSwingEntry.Text)
			setFloat(&state.cfg.Mock.BaseHumidity, baseHumidEntry.Text)
			setFloat(&state.cfg.Mock.HumiditySwing, humidSwingEntry.Text)
			if d, err := time.ParseDuration(cycleEntry.Text); err == nil {
				state.cfg.Mock.Cycle = d
			}
			setFloat(&state.cfg.Mock.NoiseLevel, noiseEntry.Text)
			if p, err := strconv.ParseFloat(motionEntry.Text, 64); err == nil {
				state.cfg.Mock.MotionProbability = p
			}
			if n, err := strconv.Atoi(failEveryEntry.Text); err == nil {
				state.cfg.Mock.FailEvery = n
			}
			saveConfig(state, prev)
		},
	}

	return container.NewTabItem("Mock", form)
}

// setFloat parses s into dst, leaving dst unchanged on a parse error.
func setFloat(dst *float32, s string) {
	if v, err := strconv.ParseFloat(s, 32); err == nil {
		*dst = float32(v)
	}
}
