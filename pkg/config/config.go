package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets loaded from the YAML file.
const (
	EnvNetworkPassword = "SENSORNODE_NETWORK_PASSWORD"
	EnvReportURL       = "SENSORNODE_REPORT_URL"
	EnvMQTTPassword    = "SENSORNODE_MQTT_PASSWORD"
)

// Report transports.
const (
	TransportHTTP = "http"
	TransportMQTT = "mqtt"
)

// Config represents the node configuration.
type Config struct {
	Node        NodeConfig        `yaml:"node"`
	Network     NetworkConfig     `yaml:"network"`
	Sampling    SamplingConfig    `yaml:"sampling"`
	Report      ReportConfig      `yaml:"report"`
	Indicator   IndicatorConfig   `yaml:"indicator"`
	Tasks       TasksConfig       `yaml:"tasks"`
	Serial      SerialConfig      `yaml:"serial"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Mock        MockConfig        `yaml:"mock"`
	Log         LogConfig         `yaml:"log"`
}

// NodeConfig identifies the node.
type NodeConfig struct {
	ID string `yaml:"id"` // Generated at startup when empty
}

// NetworkConfig contains wireless association parameters.
type NetworkConfig struct {
	SSID             string        `yaml:"ssid"`
	Password         string        `yaml:"password"`
	Interface        string        `yaml:"interface"`         // Host interface watched for connectivity
	Simulated        bool          `yaml:"simulated"`         // Use a simulated link instead of a host interface
	AssociationPoll  time.Duration `yaml:"association_poll"`  // Delay between status polls during bootstrap
	AssociationDelay time.Duration `yaml:"association_delay"` // Simulated link only
}

// SamplingConfig contains sampling task parameters.
type SamplingConfig struct {
	Period      time.Duration `yaml:"period"`
	LockTimeout time.Duration `yaml:"lock_timeout"` // Bounded wait for the shared reading state
}

// ReportConfig contains reporting task parameters.
type ReportConfig struct {
	Transport   string        `yaml:"transport"` // "http" or "mqtt"
	URL         string        `yaml:"url"`
	Timeout     time.Duration `yaml:"timeout"` // 0 leaves the transport default
	Period      time.Duration `yaml:"period"`
	NetworkPoll time.Duration `yaml:"network_poll"` // Poll interval while waiting for the link
	MQTT        MQTTConfig    `yaml:"mqtt"`
}

// MQTTConfig contains MQTT transport parameters.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"` // {node_id} is replaced with the node ID
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
}

// IndicatorConfig contains indicator task parameters.
type IndicatorConfig struct {
	HalfPeriod time.Duration `yaml:"half_period"`
}

// TasksConfig contains scheduling parameters for each periodic task.
type TasksConfig struct {
	Indicator TaskConfig `yaml:"indicator"`
	Sampler   TaskConfig `yaml:"sampler"`
	Reporter  TaskConfig `yaml:"reporter"`
}

// TaskConfig contains scheduling parameters of a single task.
type TaskConfig struct {
	Priority   int `yaml:"priority"`
	Core       int `yaml:"core"`
	StackWords int `yaml:"stack_words"`
}

// SerialConfig contains sensor board serial port configuration.
type SerialConfig struct {
	Port        string        `yaml:"port"`
	BaudRate    int           `yaml:"baud_rate"`
	MaxFrameAge time.Duration `yaml:"max_frame_age"` // Older frames read as a failed climate sample
}

// CalibrationConfig converts sensor board ADC readings to physical values.
type CalibrationConfig struct {
	VRef        float32     `yaml:"vref"`
	Temperature LinearScale `yaml:"temperature"`
	Humidity    LinearScale `yaml:"humidity"`
}

// LinearScale maps a voltage to a value: value = volts*Scale + Offset.
type LinearScale struct {
	Scale  float32 `yaml:"scale"`
	Offset float32 `yaml:"offset"`
}

// MockConfig contains simulated sensor configuration.
type MockConfig struct {
	BaseTemperature   float32       `yaml:"base_temperature"`   // °C
	TemperatureSwing  float32       `yaml:"temperature_swing"`  // °C amplitude over one cycle
	BaseHumidity      float32       `yaml:"base_humidity"`      // %RH
	HumiditySwing     float32       `yaml:"humidity_swing"`     // %RH amplitude over one cycle
	Cycle             time.Duration `yaml:"cycle"`              // Simulated day length
	NoiseLevel        float32       `yaml:"noise_level"`        // Peak noise added to both channels
	MotionProbability float64       `yaml:"motion_probability"` // Chance a motion read reports movement
	FailEvery         int           `yaml:"fail_every"`         // Every Nth climate read fails (0 = never)
}

// LogConfig contains diagnostic output configuration.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			SSID:             "Wokwi-GUEST",
			Password:         "",
			Interface:        "wlan0",
			Simulated:        false,
			AssociationPoll:  100 * time.Millisecond,
			AssociationDelay: 2 * time.Second,
		},
		Sampling: SamplingConfig{
			Period:      5 * time.Second,
			LockTimeout: 10 * time.Millisecond, // 10 ticks at 1 kHz
		},
		Report: ReportConfig{
			Transport:   TransportHTTP,
			URL:         "https://postman-echo.com/post",
			Timeout:     5 * time.Second,
			Period:      3 * time.Second,
			NetworkPoll: 500 * time.Millisecond,
			MQTT: MQTTConfig{
				Broker: "tcp://localhost:1883",
				Topic:  "sensornode/{node_id}/reading",
				QoS:    0,
			},
		},
		Indicator: IndicatorConfig{
			HalfPeriod: 500 * time.Millisecond,
		},
		Tasks: TasksConfig{
			Indicator: TaskConfig{Priority: 1, Core: 1, StackWords: 1024},
			Sampler:   TaskConfig{Priority: 2, Core: 1, StackWords: 2048},
			Reporter:  TaskConfig{Priority: 1, Core: 1, StackWords: 8192}, // Network stack and encoder need the most
		},
		Serial: SerialConfig{
			Port:        "/dev/ttyACM0",
			BaudRate:    115200,
			MaxFrameAge: 2 * time.Second,
		},
		Calibration: CalibrationConfig{
			VRef: 3.3,
			// TMP36: 10 mV/°C with 500 mV offset
			Temperature: LinearScale{Scale: 100, Offset: -50},
			// Ratiometric humidity sensor spanning 0..VRef
			Humidity: LinearScale{Scale: 100 / 3.3, Offset: 0},
		},
		Mock: MockConfig{
			BaseTemperature:   22.0,
			TemperatureSwing:  3.0,
			BaseHumidity:      45.0,
			HumiditySwing:     10.0,
			Cycle:             10 * time.Minute,
			NoiseLevel:        0.2,
			MotionProbability: 0.2,
			FailEvery:         0,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values. Secrets found in the environment
// (or a .env file in the working directory) override the file.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// File doesn't exist, keep defaults
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// .env is optional; variables already present in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration can drive a node.
func (c *Config) Validate() error {
	if c.Sampling.Period <= 0 {
		return fmt.Errorf("sampling period must be positive, got %s", c.Sampling.Period)
	}
	if c.Sampling.LockTimeout <= 0 {
		return fmt.Errorf("lock timeout must be positive, got %s", c.Sampling.LockTimeout)
	}
	if c.Report.Period <= 0 {
		return fmt.Errorf("report period must be positive, got %s", c.Report.Period)
	}
	if c.Indicator.HalfPeriod <= 0 {
		return fmt.Errorf("indicator half period must be positive, got %s", c.Indicator.HalfPeriod)
	}
	if c.Network.AssociationPoll <= 0 || c.Report.NetworkPoll <= 0 {
		return fmt.Errorf("network poll intervals must be positive")
	}
	if c.Mock.FailEvery < 0 {
		return fmt.Errorf("mock fail_every must be >= 0, got %d", c.Mock.FailEvery)
	}
	if c.Mock.MotionProbability < 0 || c.Mock.MotionProbability > 1 {
		return fmt.Errorf("mock motion probability must be within [0, 1], got %g", c.Mock.MotionProbability)
	}
	switch c.Report.Transport {
	case TransportHTTP:
		if c.Report.URL == "" {
			return fmt.Errorf("report url is required for http transport")
		}
	case TransportMQTT:
		if c.Report.MQTT.Broker == "" {
			return fmt.Errorf("mqtt broker is required for mqtt transport")
		}
		if c.Report.MQTT.QoS > 2 {
			return fmt.Errorf("invalid mqtt qos: %d", c.Report.MQTT.QoS)
		}
	default:
		return fmt.Errorf("unknown report transport: %q", c.Report.Transport)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", c.Log.Format)
	}
	return nil
}

// applyEnv overrides secrets from environment variables.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvNetworkPassword); ok {
		c.Network.Password = v
	}
	if v := os.Getenv(EnvReportURL); v != "" {
		c.Report.URL = v
	}
	if v, ok := os.LookupEnv(EnvMQTTPassword); ok {
		c.Report.MQTT.Password = v
	}
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Node.ID == "" {
		c.Node.ID = uuid.NewString()
	}

	if c.Network.SSID == "" {
		c.Network.SSID = def.Network.SSID
	}
	if c.Network.Interface == "" {
		c.Network.Interface = def.Network.Interface
	}
	if c.Network.AssociationPoll == 0 {
		c.Network.AssociationPoll = def.Network.AssociationPoll
	}
	if c.Network.AssociationDelay == 0 {
		c.Network.AssociationDelay = def.Network.AssociationDelay
	}

	if c.Sampling.Period == 0 {
		c.Sampling.Period = def.Sampling.Period
	}
	if c.Sampling.LockTimeout == 0 {
		c.Sampling.LockTimeout = def.Sampling.LockTimeout
	}

	if c.Report.Transport == "" {
		c.Report.Transport = def.Report.Transport
	}
	if c.Report.Period == 0 {
		c.Report.Period = def.Report.Period
	}
	if c.Report.NetworkPoll == 0 {
		c.Report.NetworkPoll = def.Report.NetworkPoll
	}
	if c.Report.MQTT.Topic == "" {
		c.Report.MQTT.Topic = def.Report.MQTT.Topic
	}

	if c.Indicator.HalfPeriod == 0 {
		c.Indicator.HalfPeriod = def.Indicator.HalfPeriod
	}

	if c.Tasks.Indicator.StackWords == 0 {
		c.Tasks.Indicator.StackWords = def.Tasks.Indicator.StackWords
	}
	if c.Tasks.Sampler.StackWords == 0 {
		c.Tasks.Sampler.StackWords = def.Tasks.Sampler.StackWords
	}
	if c.Tasks.Reporter.StackWords == 0 {
		c.Tasks.Reporter.StackWords = def.Tasks.Reporter.StackWords
	}

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}
	if c.Serial.MaxFrameAge == 0 {
		c.Serial.MaxFrameAge = def.Serial.MaxFrameAge
	}

	if c.Calibration.VRef == 0 {
		c.Calibration.VRef = def.Calibration.VRef
	}
	if c.Calibration.Temperature.Scale == 0 {
		c.Calibration.Temperature = def.Calibration.Temperature
	}
	if c.Calibration.Humidity.Scale == 0 {
		c.Calibration.Humidity = def.Calibration.Humidity
	}

	if c.Mock.Cycle == 0 {
		c.Mock.Cycle = def.Mock.Cycle
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}
