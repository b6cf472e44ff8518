package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tphakala/callscope/internal/annotator"
	"github.com/tphakala/callscope/internal/logger"
	"github.com/tphakala/callscope/internal/observability/metrics"
	"github.com/tphakala/callscope/internal/session"
)

// Topic suffixes under the configured base topic.
const (
	ExpandTopicSuffix = "/expand"
	EventsTopicSuffix = "/events"
)

const defaultQueueSize = 64

// ExpandMessage is the payload published for an expand-selection notification.
type ExpandMessage struct {
	SessionID   string    `json:"sessionId"`
	SelectionID string    `json:"selectionId"`
	StartTime   float64   `json:"startTime"`
	EndTime     float64   `json:"endTime"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventMessage is the payload published for every other notification.
type EventMessage struct {
	SessionID    string                 `json:"sessionId"`
	Notification annotator.Notification `json:"notification"`
	Timestamp    time.Time              `json:"timestamp"`
}

// PublisherConfig controls which notifications are published and where.
type PublisherConfig struct {
	Topic     string // base topic
	AllEvents bool   // publish every notification, not only expand requests
	QueueSize int
}

type message struct {
	topic   string
	payload []byte
}

// Publisher forwards session notifications to a Client from a single worker. Sink never
// blocks; notifications arriving while the queue is full are dropped.
type Publisher struct {
	client  Client
	cfg     PublisherConfig
	queue   chan message
	metrics *metrics.MQTTMetrics
	log     logger.Logger
	now     func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewPublisher returns a publisher over client. m may be nil.
func NewPublisher(client Client, cfg PublisherConfig, m *metrics.MQTTMetrics) *Publisher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	return &Publisher{
		client:  client,
		cfg:     cfg,
		queue:   make(chan message, cfg.QueueSize),
		metrics: m,
		log:     GetLogger(),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// Start runs the publish worker until Stop is called or ctx ends.
func (p *Publisher) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.wg.Add(1)
		go p.run(ctx)
	})
}

// Stop ends the worker after it has published everything already queued.
func (p *Publisher) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
}

// Sink is a session.Sink.
func (p *Publisher) Sink(e session.Event) {
	msg, ok := p.encode(e)
	if !ok {
		return
	}
	select {
	case p.queue <- msg:
	default:
		if p.metrics != nil {
			p.metrics.IncrementMessagesDropped()
		}
		p.log.Warn("publish queue full, dropping notification",
			logger.String("session_id", e.SessionID),
			logger.String("notification", string(e.Notification.Type)))
	}
}

// encode picks the topic and payload for e. It reports false when e is not published.
func (p *Publisher) encode(e session.Event) (message, bool) {
	var (
		topic string
		body  any
	)
	if req, ok := e.Notification.ExpandRequest(); ok {
		topic = p.cfg.Topic + ExpandTopicSuffix
		body = ExpandMessage{
			SessionID:   e.SessionID,
			SelectionID: req.SelectionID,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Timestamp:   p.now().UTC(),
		}
	} else {
		if !p.cfg.AllEvents {
			return message{}, false
		}
		topic = p.cfg.Topic + EventsTopicSuffix
		body = EventMessage{SessionID: e.SessionID, Notification: e.Notification, Timestamp: p.now().UTC()}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		p.log.Error("failed to encode notification", logger.Error(err))
		return message{}, false
	}
	return message{topic: topic, payload: payload}, true
}

func (p *Publisher) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case msg := <-p.queue:
			p.publish(ctx, msg)
		case <-ctx.Done():
			return
		case <-p.stop:
			p.drain(ctx)
			return
		}
	}
}

func (p *Publisher) drain(ctx context.Context) {
	for {
		select {
		case msg := <-p.queue:
			p.publish(ctx, msg)
		default:
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, msg message) {
	if err := p.client.Publish(ctx, msg.topic, msg.payload); err != nil {
		p.log.Warn("failed to publish notification",
			logger.String("topic", msg.topic),
			logger.Error(err))
	}
}
