package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "Wokwi-GUEST", cfg.Network.SSID)
	assert.Equal(t, 5*time.Second, cfg.Sampling.Period)
	assert.Equal(t, 10*time.Millisecond, cfg.Sampling.LockTimeout)
	assert.Equal(t, 3*time.Second, cfg.Report.Period)
	assert.Equal(t, 500*time.Millisecond, cfg.Report.NetworkPoll)
	assert.Equal(t, 500*time.Millisecond, cfg.Indicator.HalfPeriod)
	assert.Equal(t, TransportHTTP, cfg.Report.Transport)
	assert.Equal(t, "https://postman-echo.com/post", cfg.Report.URL)
	assert.Equal(t, TaskConfig{Priority: 1, Core: 1, StackWords: 1024}, cfg.Tasks.Indicator)
	assert.Equal(t, TaskConfig{Priority: 2, Core: 1, StackWords: 2048}, cfg.Tasks.Sampler)
	assert.Equal(t, TaskConfig{Priority: 1, Core: 1, StackWords: 8192}, cfg.Tasks.Reporter)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileNotExists(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "Wokwi-GUEST", cfg.Network.SSID)
	assert.NotEmpty(t, cfg.Node.ID, "node ID should be generated")
}

func TestLoad_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	filename := filepath.Join(dir, "config.yaml")

	yamlContent := `
node:
  id: "greenhouse-1"

network:
  ssid: "farm"
  password: "s3cret"
  simulated: true

sampling:
  period: 2s
  lock_timeout: 20ms

report:
  transport: mqtt
  period: 1s
  mqtt:
    broker: "tcp://broker:1883"
    topic: "farm/{node_id}"
    qos: 1

tasks:
  reporter:
    priority: 3
    core: 0
    stack_words: 4096

calibration:
  vref: 5.0
  temperature:
    scale: 50
    offset: -10

log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filename, []byte(yamlContent), 0644))

	cfg, err := Load(filename)
	require.NoError(t, err)

	assert.Equal(t, "greenhouse-1", cfg.Node.ID)
	assert.Equal(t, "farm", cfg.Network.SSID)
	assert.Equal(t, "s3cret", cfg.Network.Password)
	assert.True(t, cfg.Network.Simulated)
	assert.Equal(t, 2*time.Second, cfg.Sampling.Period)
	assert.Equal(t, 20*time.Millisecond, cfg.Sampling.LockTimeout)
	assert.Equal(t, TransportMQTT, cfg.Report.Transport)
	assert.Equal(t, time.Second, cfg.Report.Period)
	assert.Equal(t, "tcp://broker:1883", cfg.Report.MQTT.Broker)
	assert.Equal(t, "farm/{node_id}", cfg.Report.MQTT.Topic)
	assert.Equal(t, byte(1), cfg.Report.MQTT.QoS)
	assert.Equal(t, TaskConfig{Priority: 3, Core: 0, StackWords: 4096}, cfg.Tasks.Reporter)
	assert.Equal(t, float32(5.0), cfg.Calibration.VRef)
	assert.Equal(t, LinearScale{Scale: 50, Offset: -10}, cfg.Calibration.Temperature)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// Untouched sections keep defaults
	assert.Equal(t, TaskConfig{Priority: 2, Core: 1, StackWords: 2048}, cfg.Tasks.Sampler)
	assert.Equal(t, 500*time.Millisecond, cfg.Indicator.HalfPeriod)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Chdir(t.TempDir())

	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "negative sampling period", yaml: "sampling:\n  period: -1s\n"},
		{name: "unknown transport", yaml: "report:\n  transport: carrier-pigeon\n"},
		{name: "bad log level", yaml: "log:\n  level: loud\n"},
		{name: "bad log format", yaml: "log:\n  format: xml\n"},
		{name: "bad qos", yaml: "report:\n  transport: mqtt\n  mqtt:\n    qos: 3\n"},
		{name: "negative network poll", yaml: "report:\n  network_poll: -1s\n"},
		{name: "motion probability above one", yaml: "mock:\n  motion_probability: 1.5\n"},
		{name: "negative fail_every", yaml: "mock:\n  fail_every: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			filename := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(filename, []byte(tt.yaml), 0644))

			cfg, err := Load(filename)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_PartialYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	filename := filepath.Join(dir, "config.yaml")

	yamlContent := `
serial:
  port: "/dev/ttyUSB1"
sampling:
  period: 0s
`
	require.NoError(t, os.WriteFile(filename, []byte(yamlContent), 0644))

	cfg, err := Load(filename)
	require.NoError(t, err)

	// Should use defaults for missing or zeroed fields
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 5*time.Second, cfg.Sampling.Period)
}

func TestLoad_TaskStackDefaulted(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	filename := filepath.Join(dir, "config.yaml")

	yamlContent := `
tasks:
  reporter:
    priority: 3
    core: 0
    stack_words: 0
`
	require.NoError(t, os.WriteFile(filename, []byte(yamlContent), 0644))

	cfg, err := Load(filename)
	require.NoError(t, err)

	// Only the missing stack size falls back; explicit priority and core stay
	assert.Equal(t, TaskConfig{Priority: 3, Core: 0, StackWords: 8192}, cfg.Tasks.Reporter)
	assert.Equal(t, Default().Tasks.Sampler, cfg.Tasks.Sampler)
}

func TestLoad_MalformedDotenv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	dotenv := EnvNetworkPassword + "=\"unterminated\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0644))

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".env")
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Setenv(EnvNetworkPassword, "from-env")
	t.Setenv(EnvReportURL, "http://collector.local/ingest")

	// .env values never override variables already present in the environment
	dotenv := EnvNetworkPassword + "=from-dotenv\n" + EnvMQTTPassword + "=mqtt-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0644))
	t.Cleanup(func() { os.Unsetenv(EnvMQTTPassword) })

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Network.Password)
	assert.Equal(t, "http://collector.local/ingest", cfg.Report.URL)
	assert.Equal(t, "mqtt-dotenv", cfg.Report.MQTT.Password)
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	filename := filepath.Join(dir, "saved.yaml")

	cfg := Default()
	cfg.Node.ID = "node-7"
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Sampling.Period = 15 * time.Second

	err := cfg.Save(filename)
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(filename)
	require.NoError(t, err)
	assert.Equal(t, "node-7", loaded.Node.ID)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 15*time.Second, loaded.Sampling.Period)
}
