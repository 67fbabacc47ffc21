package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"skill-hire/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

var ErrDisabled = errors.New("queue disabled")

// Handler processes one delivery body. A returned error nacks the message;
// it is requeued once and dropped on the second failure.
type Handler func(ctx context.Context, body []byte) error

// RabbitMQ owns one connection with a durable work queue for generation jobs
// and a topic exchange for domain events. With no URL configured it is
// disabled: events are skipped and jobs are refused with ErrDisabled.
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel

	// amqp channels are not safe for concurrent publishes.
	pubMu sync.Mutex

	queue    string
	exchange string
	prefetch int
	enabled  bool
	logger   *log.Logger
}

func NewRabbitMQ(cfg config.QueueConfig, logger *log.Logger) (*RabbitMQ, error) {
	if logger == nil {
		logger = log.Default()
	}
	r := &RabbitMQ{
		queue:    cfg.GenerationQueue,
		exchange: cfg.EventsExchange,
		prefetch: cfg.Prefetch,
		logger:   logger,
	}
	if strings.TrimSpace(cfg.URL) == "" {
		logger.Printf("queue status=disabled reason=no_url")
		return r, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(r.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(r.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	r.conn = conn
	r.channel = ch
	r.enabled = true
	logger.Printf("queue status=connected queue=%s exchange=%s", r.queue, r.exchange)
	return r, nil
}

func (r *RabbitMQ) Enabled() bool {
	return r != nil && r.enabled
}

// PublishJob sends v to the work queue as a persistent message.
func (r *RabbitMQ) PublishJob(ctx context.Context, v any) error {
	if !r.Enabled() {
		return ErrDisabled
	}
	return r.publish(ctx, "", r.queue, v)
}

// PublishEvent sends v to the events exchange under routingKey.
func (r *RabbitMQ) PublishEvent(ctx context.Context, routingKey string, v any) error {
	if !r.Enabled() {
		return nil
	}
	return r.publish(ctx, r.exchange, routingKey, v)
}

func (r *RabbitMQ) publish(ctx context.Context, exchange, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	r.pubMu.Lock()
	defer r.pubMu.Unlock()

	err = r.channel.PublishWithContext(pubCtx, exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

// Consume runs handler for each job until ctx is done or the channel closes.
func (r *RabbitMQ) Consume(ctx context.Context, handler Handler) error {
	if !r.Enabled() {
		return ErrDisabled
	}
	if r.prefetch > 0 {
		if err := r.channel.Qos(r.prefetch, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}
	}

	msgs, err := r.channel.ConsumeWithContext(ctx, r.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, max(r.prefetch, 1))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()

				if err := handler(ctx, d.Body); err != nil {
					r.logger.Printf("queue consume status=error redelivered=%t err=%v", d.Redelivered, err)
					_ = d.Nack(false, !d.Redelivered)
					return
				}
				_ = d.Ack(false)
			}(d)
		}
	}
}

func (r *RabbitMQ) Close() error {
	if !r.Enabled() {
		return nil
	}
	if r.channel != nil {
		_ = r.channel.Close()
	}
	return r.conn.Close()
}
