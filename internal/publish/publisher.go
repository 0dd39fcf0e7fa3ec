package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/muurk/ampwatch/internal/frame"
	"github.com/muurk/ampwatch/internal/logging"
	"github.com/muurk/ampwatch/internal/pipeline"
	"github.com/muurk/ampwatch/internal/report"
)

// Availability payloads published on <prefix>/status
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Options configures a Publisher
type Options struct {
	Broker      string // e.g. tcp://localhost:1883
	ClientID    string // generated when empty
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
	Retain      bool
	MinInterval time.Duration // per-sender publish interval; zero publishes every reading
	Volts       float64
}

// Publisher is a pipeline sink that publishes valid readings to MQTT as JSON.
type Publisher struct {
	client mqtt.Client
	opts   Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Publisher with its own paho client. Call Connect before use.
func New(opts Options) (*Publisher, error) {
	if opts.Broker == "" {
		return nil, errors.New("publish: broker is required")
	}
	opts = withDefaults(opts)

	co := mqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientID)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}

	co.SetKeepAlive(60 * time.Second)
	co.SetPingTimeout(10 * time.Second)
	co.SetConnectTimeout(10 * time.Second)

	co.SetAutoReconnect(true)
	co.SetMaxReconnectInterval(1 * time.Minute)

	co.SetWill(StatusTopic(opts.TopicPrefix), StatusOffline, opts.QoS, true)
	co.SetOnConnectHandler(func(c mqtt.Client) {
		logging.Info("MQTT connected", zap.String("broker", opts.Broker), zap.String("client_id", opts.ClientID))
		c.Publish(StatusTopic(opts.TopicPrefix), opts.QoS, true, StatusOnline)
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logging.Warn("MQTT connection lost, reconnecting", zap.Error(err))
	})

	return NewWithClient(mqtt.NewClient(co), opts), nil
}

// NewWithClient creates a Publisher around an existing client.
func NewWithClient(client mqtt.Client, opts Options) *Publisher {
	return &Publisher{
		client:   client,
		opts:     withDefaults(opts),
		limiters: make(map[string]*rate.Limiter),
	}
}

func withDefaults(opts Options) Options {
	if opts.ClientID == "" {
		opts.ClientID = "ampwatch-" + uuid.NewString()[:8]
	}
	if opts.TopicPrefix == "" {
		opts.TopicPrefix = "ampwatch"
	}
	opts.TopicPrefix = strings.TrimSuffix(opts.TopicPrefix, "/")
	if opts.Volts == 0 {
		opts.Volts = frame.LineVoltage
	}
	return opts
}

// ReadingTopic returns the topic for a sender's readings.
func ReadingTopic(prefix, senderID string) string {
	return fmt.Sprintf("%s/%s/state", prefix, senderID)
}

// StatusTopic returns the retained availability topic.
func StatusTopic(prefix string) string {
	return prefix + "/status"
}

// Connect connects to the broker.
func (p *Publisher) Connect(ctx context.Context) error {
	if err := wait(ctx, p.client.Connect()); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker %s: %w", p.opts.Broker, err)
	}
	return nil
}

// Close publishes the offline status and disconnects.
func (p *Publisher) Close() {
	if !p.client.IsConnected() {
		return
	}
	t := p.client.Publish(StatusTopic(p.opts.TopicPrefix), p.opts.QoS, true, StatusOffline)
	t.WaitTimeout(time.Second)
	p.client.Disconnect(250)
}

// Handle implements pipeline.Sink. Readings without an exact CRC match are
// dropped, as are readings that arrive faster than MinInterval per sender.
func (p *Publisher) Handle(ctx context.Context, rd pipeline.Reading) error {
	if !rd.Valid() {
		return nil
	}
	sender := rd.Record.SenderID
	if !p.allow(sender) {
		logging.Debug("MQTT publish throttled", zap.String("sender_id", sender))
		return nil
	}

	payload, err := report.JSON(rd, p.opts.Volts)
	if err != nil {
		return err
	}

	topic := ReadingTopic(p.opts.TopicPrefix, sender)
	if err := wait(ctx, p.client.Publish(topic, p.opts.QoS, p.opts.Retain, payload)); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Publisher) allow(sender string) bool {
	if p.opts.MinInterval <= 0 {
		return true
	}

	p.mu.Lock()
	lim, ok := p.limiters[sender]
	if !ok {
		lim = rate.NewLimiter(rate.Every(p.opts.MinInterval), 1)
		p.limiters[sender] = lim
	}
	p.mu.Unlock()

	return lim.Allow()
}

func wait(ctx context.Context, t mqtt.Token) error {
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
