package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const defaultDialTimeout = 5 * time.Second

// AMQPPublisher publishes persistent JSON messages to a durable queue. The
// connection is opened lazily and re-dialed after a failure.
type AMQPPublisher struct {
	url    string
	queue  string
	logger *zap.Logger
	// dialTimeout bounds the TCP connect and the AMQP handshake, both run
	// under mu.
	dialTimeout time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher creates a publisher for the given broker URL and queue.
func NewAMQPPublisher(url, queue string, logger *zap.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue, logger: logger, dialTimeout: defaultDialTimeout}
}

// Publish sends msg to the queue. On failure the channel is dropped so the next
// call reconnects.
func (p *AMQPPublisher) Publish(ctx context.Context, msg SessionMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal session message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         msg.Type,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}
	return nil
}

// channel returns an open channel, dialing and declaring the queue if needed.
// Callers hold p.mu.
func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(p.dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	p.logger.Info("rabbitmq publisher connected", zap.String("queue", p.queue))
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
