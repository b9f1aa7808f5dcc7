package events

import (
	"context"
	"encoding/json"
	"net"
	"net/url"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/tphakala/vocab-manager/internal/errors"
	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/observability/metrics"
	"github.com/tphakala/vocab-manager/internal/privacy"
)

// MQTTConfig configures the MQTT publisher.
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	Topic          string // prefix for resource/action topics
	Retain         bool
	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

const (
	defaultConnectTimeout = 30 * time.Second
	defaultPublishTimeout = 10 * time.Second
	disconnectQuiesceMS   = 250
	publishQoS            = 1
)

// MQTTPublisher is a Consumer that publishes each event as JSON to
// <topic>/<resource>/<action>.
type MQTTPublisher struct {
	config  MQTTConfig
	metrics *metrics.MQTTMetrics
	log     logger.Logger

	// newClient builds the paho client; replaced in tests
	newClient func(*mqtt.ClientOptions) mqtt.Client

	mu     sync.Mutex
	client mqtt.Client
}

// NewMQTTPublisher creates an unconnected publisher. m may be nil.
func NewMQTTPublisher(cfg MQTTConfig, m *metrics.MQTTMetrics, log logger.Logger) *MQTTPublisher {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if log == nil {
		log = logger.Global("events")
	}
	return &MQTTPublisher{
		config:    cfg,
		metrics:   m,
		log:       log.Module("mqtt").With(logger.String("broker", cfg.Broker)),
		newClient: mqtt.NewClient,
	}
}

// Name implements Consumer.
func (p *MQTTPublisher) Name() string { return "mqtt" }

// Connect resolves the broker host and connects. paho reconnects on its
// own after a successful first connection.
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	u, err := url.Parse(p.config.Broker)
	if err != nil || u.Host == "" {
		return errors.Newf("invalid broker URL %q", privacy.RedactURL(p.config.Broker)).
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if host := u.Hostname(); net.ParseIP(host) == nil {
		if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
			return errors.New(err).
				Component("mqtt").
				Category(errors.CategoryNetwork).
				Context("host", host).
				Build()
		}
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.config.Broker)
	opts.SetClientID(p.config.ClientID)
	opts.SetUsername(p.config.Username)
	opts.SetPassword(p.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(p.config.ConnectTimeout)
	opts.SetOnConnectHandler(p.onConnect)
	opts.SetConnectionLostHandler(p.onConnectionLost)

	client := p.newClient(opts)
	token := client.Connect()
	if err := waitToken(ctx, token, p.config.ConnectTimeout); err != nil {
		err = privacy.WrapError(err)
		p.log.Warn("mqtt connect failed",
			logger.String("broker", privacy.RedactURL(p.config.Broker)),
			logger.Error(err))
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryNetwork).
			Build()
	}

	p.mu.Lock()
	p.client = client
	p.mu.Unlock()
	p.setConnected(true)
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *MQTTPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client != nil && p.client.IsConnected()
}

// ProcessEvent implements Consumer.
func (p *MQTTPublisher) ProcessEvent(event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.New(err).Component("mqtt").Category(errors.CategoryGeneric).Build()
	}

	p.mu.Lock()
	client := p.client
	p.mu.Unlock()
	if client == nil || !client.IsConnected() {
		p.recordError(event.Resource)
		return errors.Newf("not connected to MQTT broker").
			Component("mqtt").
			Category(errors.CategoryNetwork).
			Build()
	}

	topic := event.Topic(p.config.Topic)
	token := client.Publish(topic, publishQoS, p.config.Retain, payload)
	if err := waitToken(context.Background(), token, p.config.PublishTimeout); err != nil {
		p.recordError(event.Resource)
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryNetwork).
			Context("topic", topic).
			Build()
	}

	if p.metrics != nil {
		p.metrics.RecordPublish(event.Resource, event.Action)
	}
	p.log.Debug("event published", logger.String("topic", topic), logger.Int("bytes", len(payload)))
	return nil
}

// Disconnect closes the broker connection.
func (p *MQTTPublisher) Disconnect() {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.mu.Unlock()

	if client != nil && client.IsConnected() {
		client.Disconnect(disconnectQuiesceMS)
	}
	p.setConnected(false)
}

func (p *MQTTPublisher) onConnect(mqtt.Client) {
	p.log.Info("connected to MQTT broker")
	p.setConnected(true)
}

func (p *MQTTPublisher) onConnectionLost(_ mqtt.Client, err error) {
	p.log.Warn("connection to MQTT broker lost", logger.Error(err))
	p.setConnected(false)
}

func (p *MQTTPublisher) setConnected(connected bool) {
	if p.metrics != nil {
		p.metrics.UpdateConnectionStatus(connected)
	}
}

func (p *MQTTPublisher) recordError(resource string) {
	if p.metrics != nil {
		p.metrics.RecordPublishError(resource)
	}
}

// waitToken waits for token until timeout or ctx is done
func waitToken(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return errors.Newf("mqtt operation timed out after %s", timeout).
			Component("mqtt").
			Category(errors.CategoryNetwork).
			Build()
	case <-ctx.Done():
		return ctx.Err()
	}
}
