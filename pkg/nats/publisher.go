package nats

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"crimson-crm-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName    = "CRM_EVENTS"
	SubjectPrefix = "crm."

	// EventTypeHeader carries the raw event type so consumers can filter
	// without decoding the body.
	EventTypeHeader = "Crm-Event-Type"
)

type streamConfig struct {
	name    string
	prefix  string
	storage jetstream.StorageType
	maxAge  time.Duration
}

type Option func(*streamConfig)

// WithStream publishes into a differently named stream and subject space.
func WithStream(name, prefix string) Option {
	return func(c *streamConfig) {
		c.name = name
		c.prefix = prefix
	}
}

// WithMemoryStorage keeps the stream in server memory instead of on disk.
func WithMemoryStorage() Option {
	return func(c *streamConfig) { c.storage = jetstream.MemoryStorage }
}

// WithMaxAge bounds how long CRM events are retained.
func WithMaxAge(d time.Duration) Option {
	return func(c *streamConfig) { c.maxAge = d }
}

// Publisher forwards CRM events into a JetStream stream.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream streamConfig
}

// NewPublisher connects to url and makes sure the CRM event stream exists.
// A stream that cannot be created is logged, not fatal; publishes will then
// fail until an operator provisions it.
func NewPublisher(url string, opts ...Option) (*Publisher, error) {
	cfg := streamConfig{
		name:    StreamName,
		prefix:  SubjectPrefix,
		storage: jetstream.FileStorage,
		maxAge:  30 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	nc, err := nats.Connect(url,
		nats.Name("crimson-crm-be"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("open jetstream: %w", err)
	}

	p := &Publisher{nc: nc, js: js, stream: cfg}
	if err := p.ensureStream(); err != nil {
		log.Printf("[WARN] CRM event stream %s not ready: %v", cfg.name, err)
	}
	return p, nil
}

func (p *Publisher) ensureStream() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        p.stream.name,
		Description: "Smart Bio generation and feedback events",
		Subjects:    []string{p.stream.prefix + ">"},
		Storage:     p.stream.storage,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      p.stream.maxAge,
		Duplicates:  2 * time.Minute,
	})
	return err
}

// Subject maps an event type to its subject, e.g. BIO_GENERATED -> crm.bio_generated.
func Subject(eventType string) string {
	return subject(SubjectPrefix, eventType)
}

func subject(prefix, eventType string) string {
	return prefix + strings.ToLower(eventType)
}

// msgID lets JetStream drop a redelivered forward of the same event.
func msgID(event events.Event) string {
	return event.EventType() + "-" + strconv.FormatInt(event.Timestamp().UnixNano(), 10)
}

// Publish forwards event and waits for the stream acknowledgement.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := events.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.EventType(), err)
	}

	msg := nats.NewMsg(subject(p.stream.prefix, event.EventType()))
	msg.Data = data
	msg.Header.Set(EventTypeHeader, event.EventType())

	if _, err := p.js.PublishMsg(ctx, msg, jetstream.WithMsgID(msgID(event))); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.EventType(), msg.Subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
