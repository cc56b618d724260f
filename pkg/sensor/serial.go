package sensor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"go.bug.st/serial"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/diag"
	"github.com/itohio/sensornode/pkg/reading"
)

const (
	// DefaultBaudRate is the sensor board UART rate.
	DefaultBaudRate = 115200
	// DefaultMaxFrameAge is how long a frame stays usable.
	DefaultMaxFrameAge = 2 * time.Second

	adcMax = 4095
)

// Frame is one sensor board measurement line.
type Frame struct {
	Timestamp   time.Time // Board clock
	Temperature uint16    // 12-bit ADC
	Humidity    uint16    // 12-bit ADC
	Motion      bool
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads frames streamed by the sensor board and drives its indicator.
type Serial struct {
	port     string
	baudRate int
	maxAge   time.Duration
	cal      config.CalibrationConfig
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	conn      io.ReadWriteCloser
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
	latest    Frame
	received  time.Time // Host time of latest; zero until the first frame
}

// NewSerial creates a sensor board driver from the serial and calibration settings.
func NewSerial(cfg config.SerialConfig, cal config.CalibrationConfig, logger *slog.Logger) *Serial {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.MaxFrameAge <= 0 {
		cfg.MaxFrameAge = DefaultMaxFrameAge
	}
	return &Serial{
		port:     cfg.Port,
		baudRate: cfg.BaudRate,
		maxAge:   cfg.MaxFrameAge,
		cal:      cal,
		logger:   diag.OrDiscard(logger),
		now:      time.Now,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}
	return result, nil
}

// Connect opens the serial port and starts reading frames.
func (d *Serial) Connect() error {
	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}
	if err := d.attach(port); err != nil {
		port.Close()
		return err
	}
	d.logger.Info("sensor board connected", slog.String("port", d.port), slog.Int("baud", d.baudRate))
	return nil
}

// attach starts reading frames from conn.
func (d *Serial) attach(conn io.ReadWriteCloser) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	d.conn = conn
	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.done = make(chan struct{})
	d.connected = true
	d.received = time.Time{}

	go d.readFrames(d.ctx, conn, d.done)
	return nil
}

// Close closes the port and waits for the reader to stop.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}
	d.cancel()
	var err error
	if d.conn != nil {
		err = d.conn.Close()
		d.conn = nil
	}
	d.connected = false
	done := d.done
	d.mu.Unlock()

	<-done
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// IsConnected returns whether the port is open.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Latest returns the most recent frame and whether one has been received.
func (d *Serial) Latest() (Frame, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.latest, !d.received.IsZero()
}

// ReadClimate converts the latest frame. Missing or stale frames and ADC
// readings pinned to a rail read as a failed sample.
func (d *Serial) ReadClimate() reading.Climate {
	d.mu.RLock()
	frame := d.latest
	received := d.received
	d.mu.RUnlock()

	if received.IsZero() || d.now().Sub(received) > d.maxAge {
		return reading.InvalidClimate()
	}

	temp := convert(frame.Temperature, d.cal.VRef, d.cal.Temperature)
	humid := convert(frame.Humidity, d.cal.VRef, d.cal.Humidity)
	if math32.IsNaN(temp) || math32.IsNaN(humid) {
		return reading.InvalidClimate()
	}
	return reading.Climate{Temperature: temp, Humidity: humid}
}

// MotionDetected returns the PIR state of the latest frame.
func (d *Serial) MotionDetected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.latest.Motion
}

// SetIndicator sends the indicator command to the board.
func (d *Serial) SetIndicator(on bool) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	cmd := []byte("0\n")
	if on {
		cmd[0] = '1'
	}
	if _, err := d.conn.Write(cmd); err != nil {
		return fmt.Errorf("failed to send indicator command: %w", err)
	}
	return nil
}

func (d *Serial) readFrames(ctx context.Context, conn io.Reader, done chan<- struct{}) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic in frame reader", slog.Any("panic", r))
		}
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		frame, err := parseLine(line)
		if err != nil {
			d.logger.Warn("failed to parse frame", slog.String("line", line), slog.Any("error", err))
			continue
		}

		d.mu.Lock()
		d.latest = frame
		d.received = d.now()
		d.mu.Unlock()
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		d.logger.Error("failed to read from serial port", slog.Any("error", err))
	}
}

// parseLine parses a board frame.
// Format: unix_micros,temp_adc,humid_adc,motion
// Example: 1234567890123,2048,1024,1
func parseLine(line string) (Frame, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return Frame{}, fmt.Errorf("invalid line format: expected 4 comma-separated values, got %d", len(parts))
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	temp, err := parseADC(parts[1])
	if err != nil {
		return Frame{}, fmt.Errorf("invalid temperature: %w", err)
	}

	humid, err := parseADC(parts[2])
	if err != nil {
		return Frame{}, fmt.Errorf("invalid humidity: %w", err)
	}

	var motion bool
	switch parts[3] {
	case "0":
	case "1":
		motion = true
	default:
		return Frame{}, fmt.Errorf("invalid motion state: %q", parts[3])
	}

	return Frame{
		Timestamp:   time.UnixMicro(micros),
		Temperature: temp,
		Humidity:    humid,
		Motion:      motion,
	}, nil
}

func parseADC(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	if v > adcMax {
		return 0, fmt.Errorf("out of range: %d (max %d)", v, adcMax)
	}
	return uint16(v), nil
}

// convert maps a 12-bit ADC reading through the linear calibration. A reading
// at either rail means an open or shorted sensor and yields NaN.
func convert(adc uint16, vref float32, scale config.LinearScale) float32 {
	if adc == 0 || adc == adcMax {
		return math32.NaN()
	}
	volts := float32(adc) / adcMax * vref
	return volts*scale.Scale + scale.Offset
}
