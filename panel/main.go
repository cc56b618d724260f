package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/diag"
	"github.com/itohio/sensornode/pkg/node"
	"github.com/itohio/sensornode/pkg/trend"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated sensors instead of the serial sensor board")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	logger, err := diag.New(os.Stderr, cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	application := app.NewWithID("com.itohio.sensornode")

	window := application.NewWindow("Sensor Node")
	window.Resize(fyne.NewSize(1000, 650))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		logger:     logger,
		window:     window,
		useMock:    *mockFlag,
		history:    trend.NewHistory(trend.DefaultCapacity),
	}

	toolbar := createToolbar(state)
	state.trendWidget = trend.New(10 * cfg.Report.Period)

	content := container.NewBorder(
		toolbar,
		nil,
		createReadingsPanel(state),
		nil,
		state.trendWidget,
	)

	window.SetContent(content)
	window.SetOnClosed(func() { stopNode(state) })
	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	window     fyne.Window
	useMock    bool

	hw     *node.Hardware
	cancel context.CancelFunc
	done   chan struct{}

	history     *trend.History
	points      []trend.Point // Reused for trend updates
	trendWidget *trend.Widget

	// Widgets
	connectBtn  *widget.Button
	linkBtn     *widget.Button
	motionBtn   *widget.Button
	faultBtn    *widget.Button
	led         *canvas.Circle
	tempLabel   *widget.Label
	humidLabel  *widget.Label
	motionLabel *widget.Label
	statusLabel *widget.Label
	reportLabel *widget.Label

	// Toggle states
	linkDown bool
	motionOn bool
	faultOn  bool
}

// createToolbar creates the toolbar with Connect, Settings and the fault
// injection toggles.
func createToolbar(state *appState) fyne.CanvasObject {
	state.connectBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		handleConnect(state)
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.linkBtn = widget.NewButtonWithIcon("Link down", theme.CancelIcon(), func() {
		handleLinkToggle(state)
	})
	state.motionBtn = widget.NewButtonWithIcon("Motion", theme.VisibilityIcon(), func() {
		handleMotionToggle(state)
	})
	state.faultBtn = widget.NewButtonWithIcon("Sensor fault", theme.WarningIcon(), func() {
		handleFaultToggle(state)
	})
	updateToggles(state)

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(state.connectBtn, settingsBtn),
		container.NewHBox(state.linkBtn, state.motionBtn, state.faultBtn),
		nil,
	)
}

// createReadingsPanel creates the LED and latest reading labels.
func createReadingsPanel(state *appState) fyne.CanvasObject {
	state.led = canvas.NewCircle(ledOff)
	ledBox := container.NewGridWrap(fyne.NewSize(24, 24), state.led)

	state.tempLabel = widget.NewLabel("--")
	state.humidLabel = widget.NewLabel("--")
	state.motionLabel = widget.NewLabel("--")
	state.statusLabel = widget.NewLabel("stopped")
	state.reportLabel = widget.NewLabel("")
	state.reportLabel.Wrapping = fyne.TextWrapWord

	form := widget.NewForm(
		widget.NewFormItem("Indicator", ledBox),
		widget.NewFormItem("Temperature", state.tempLabel),
		widget.NewFormItem("Humidity", state.humidLabel),
		widget.NewFormItem("Motion", state.motionLabel),
		widget.NewFormItem("Network", state.statusLabel),
	)

	return container.NewGridWrap(fyne.NewSize(260, 400), container.NewVBox(form, state.reportLabel))
}

var (
	ledOn  = color.RGBA{R: 0, G: 220, B: 80, A: 255}
	ledOff = color.RGBA{R: 40, G: 60, B: 40, A: 255}
)

// handleConnect starts or stops the node.
func handleConnect(state *appState) {
	if state.hw != nil {
		stopNode(state)
		return
	}
	if err := startNode(state); err != nil {
		dialog.ShowError(err, state.window)
	}
}

// startNode builds the hardware and runs the node in the background.
func startNode(state *appState) error {
	cfg := *state.cfg
	hw, err := node.NewHardware(&cfg, state.useMock, state.logger)
	if err != nil {
		return err
	}

	deps := hw.Deps()
	pin := deps.Indicator
	deps.Indicator = node.OutputFunc(func(on bool) error {
		fyne.Do(func() { setLED(state, on) })
		return pin.Set(on)
	})

	n, err := node.New(&cfg, deps, state.logger)
	if err != nil {
		hw.Close()
		return err
	}
	n.OnReport(func(r node.Report) {
		state.history.Add(trend.PointFrom(r.Reading, r.At))
		fyne.Do(func() { showReport(state, r) })
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := n.Run(ctx); err != nil {
			state.logger.Error("Node stopped", slog.Any("error", err))
		}
	}()

	state.hw = hw
	state.cancel = cancel
	state.done = done
	state.linkDown, state.motionOn, state.faultOn = false, false, false

	state.connectBtn.SetIcon(theme.MediaStopIcon())
	state.statusLabel.SetText("associating")
	updateToggles(state)
	return nil
}

// stopNode cancels the node, waits for its tasks and releases the hardware.
func stopNode(state *appState) {
	if state.hw == nil {
		return
	}
	state.cancel()
	select {
	case <-state.done:
	case <-time.After(5 * time.Second):
		state.logger.Warn("Node did not stop in time")
	}
	if err := state.hw.Close(); err != nil {
		state.logger.Warn("Failed to release hardware", slog.Any("error", err))
	}
	state.hw = nil

	state.connectBtn.SetIcon(theme.MediaPlayIcon())
	state.statusLabel.SetText("stopped")
	setLED(state, false)
	updateToggles(state)
}

// showReport updates the labels and the trend chart from a reporting cycle.
// Runs on the Fyne goroutine.
func showReport(state *appState, r node.Report) {
	state.tempLabel.SetText(fmt.Sprintf("%.1f °C", r.Reading.Temperature))
	state.humidLabel.SetText(fmt.Sprintf("%.1f %%", r.Reading.Humidity))
	state.motionLabel.SetText(r.Reading.MotionState())

	switch {
	case !r.Connected:
		state.statusLabel.SetText("disconnected")
		state.reportLabel.SetText("not submitted")
	case r.Submitted():
		state.statusLabel.SetText("connected")
		state.reportLabel.SetText(fmt.Sprintf("%s\n→ %d %s", r.Payload, r.Response.StatusCode, r.Response.Body))
	default:
		state.statusLabel.SetText("connected")
		state.reportLabel.SetText(fmt.Sprintf("%s\n→ failed: %v", r.Payload, r.Err))
	}

	state.points = state.history.Points(state.points)
	state.trendWidget.UpdateData(state.points)
}

func setLED(state *appState, on bool) {
	if on {
		state.led.FillColor = ledOn
	} else {
		state.led.FillColor = ledOff
	}
	state.led.Refresh()
}
