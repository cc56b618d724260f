package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/itohio/sensornode/pkg/config"
	"github.com/itohio/sensornode/pkg/diag"
)

// MQTTDelivered is the status code reported for a publish the client completed.
const MQTTDelivered = 1

// MQTT publishes payloads to a broker topic.
type MQTT struct {
	client mqtt.Client
	topic  string
	qos    byte
	logger *slog.Logger
}

// NewMQTT creates an MQTT submitter. The broker connection is established in
// the background and re-established automatically; publishing while it is down
// fails like any other transport error.
func NewMQTT(cfg config.MQTTConfig, nodeID string, logger *slog.Logger) (*MQTT, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}
	logger = diag.OrDiscard(logger)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID("sensornode-" + nodeID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info("MQTT connection established", slog.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	})

	client := mqtt.NewClient(opts)
	// With ConnectRetry the token only completes once connected; don't wait on it
	client.Connect()

	return newMQTTWithClient(client, cfg, nodeID, logger), nil
}

func newMQTTWithClient(client mqtt.Client, cfg config.MQTTConfig, nodeID string, logger *slog.Logger) *MQTT {
	return &MQTT{
		client: client,
		topic:  FormatTopic(cfg.Topic, nodeID),
		qos:    cfg.QoS,
		logger: logger,
	}
}

// Submit publishes the payload and waits for the client to complete it.
func (m *MQTT) Submit(ctx context.Context, payload []byte) (Response, error) {
	if !m.client.IsConnectionOpen() {
		return Response{StatusCode: TransportErrorCode}, fmt.Errorf("mqtt broker not connected")
	}

	token := m.client.Publish(m.topic, m.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return Response{StatusCode: TransportErrorCode}, ctx.Err()
	}
	if err := token.Error(); err != nil {
		return Response{StatusCode: TransportErrorCode}, fmt.Errorf("failed to publish payload: %w", err)
	}

	return Response{StatusCode: MQTTDelivered, Body: m.topic}, nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}

// FormatTopic replaces the {node_id} placeholder with the node ID.
func FormatTopic(pattern, nodeID string) string {
	return strings.ReplaceAll(pattern, "{node_id}", nodeID)
}
