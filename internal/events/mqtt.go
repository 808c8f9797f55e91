package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"soilwater/internal/types"
)

const (
	profileQoS     = 1
	connectRetries = 5
	disconnectWait = 250
)

// MQTTConfig locates the broker.
type MQTTConfig struct {
	BrokerURL      string
	ClientID       string
	Username       string
	Password       types.SecretString
	TopicPrefix    string
	ConnectTimeout time.Duration
}

// mqttClient is the part of mqtt.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes each event as a retained message on the field's
// topic, so a controller subscribing later still receives the latest profile.
type MQTTPublisher struct {
	client  mqttClient
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

func newMQTTPublisher(client mqttClient, prefix string, timeout time.Duration, logger *slog.Logger) *MQTTPublisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTTPublisher{client: client, prefix: prefix, timeout: timeout, logger: logger}
}

// DialMQTT connects with exponential backoff and returns a publisher. The
// connection is closed when ctx is done or Close is called.
func DialMQTT(ctx context.Context, cfg MQTTConfig, logger *slog.Logger) (*MQTTPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := clientOptions(cfg, logger)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		token := client.Connect()
		if !token.WaitTimeout(opts.ConnectTimeout) {
			return fmt.Errorf("connect to %s timed out", cfg.BrokerURL)
		}
		if err := token.Error(); err != nil {
			logger.Warn("mqtt connect failed", "broker", cfg.BrokerURL, "error", err)
			return err
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, connectRetries-1), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not connect to mqtt broker after retries: %w", err)
	}

	logger.Info("connected to mqtt broker", "broker", cfg.BrokerURL, "client_id", cfg.ClientID)
	p := newMQTTPublisher(client, cfg.TopicPrefix, cfg.ConnectTimeout, logger)

	go func() {
		<-ctx.Done()
		p.Close()
	}()
	return p, nil
}

func clientOptions(cfg MQTTConfig, logger *slog.Logger) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password.Unmask())
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "broker", cfg.BrokerURL, "error", err)
	})
	return opts
}

// Publish sends e at QoS 1 and waits for the broker's acknowledgement.
func (p *MQTTPublisher) Publish(ctx context.Context, e types.AnalysisEvent) error {
	payload, err := encode(e)
	if err != nil {
		return err
	}

	topic := Topic(p.prefix, e)
	token := p.client.Publish(topic, profileQoS, true, payload)

	wait := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		wait = min(wait, time.Until(deadline))
	}
	if !token.WaitTimeout(wait) {
		return fmt.Errorf("publish to %s: timed out after %s", topic, wait)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}

	p.logger.Debug("analysis event published", "topic", topic, "analysis_id", e.AnalysisID)
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(disconnectWait)
}
