// Package events publishes booking lifecycle events to Kafka. Producing
// is best-effort: the API response never waits on or fails because of
// the broker, so callers log publish errors and move on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"roomly/pkg/logger"
	"roomly/pkg/middleware"
)

// Event types carried in the event-type header and the envelope.
const (
	BookingCreated  = "booking.created"
	BookingUpdated  = "booking.updated"
	BookingCanceled = "booking.canceled"
)

// Header keys shared with downstream consumers.
const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderSource        = "source"
	HeaderCorrelationID = "correlation-id"
)

type Config struct {
	Brokers []string
	Topic   string

	// Source names the producing service in the source header.
	Source string
}

// Publisher writes one event per booking mutation, keyed by booking id
// so events for the same booking stay ordered within a partition.
type Publisher struct {
	writer *kafka.Writer
	source string
	log    *logger.Logger

	mu     sync.Mutex
	closed bool
}

func NewPublisher(cfg Config, log *logger.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("events: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("events: topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error("kafka writer error", "detail", fmt.Sprintf(msg, args...))
		}),
	}

	log.Info("event publisher configured",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
	)

	return &Publisher{writer: writer, source: cfg.Source, log: log}, nil
}

// Publish emits one event. The correlation id is taken from the request
// id in ctx when present, tying the event back to the API call that
// caused it.
func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("events: publisher closed")
	}
	p.mu.Unlock()

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: encoding %s payload: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(uuid.New().String())},
			{Key: HeaderEventType, Value: []byte(eventType)},
			{Key: HeaderSource, Value: []byte(p.source)},
		},
	}
	if requestID := middleware.RequestIDFrom(ctx); requestID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{
			Key: HeaderCorrelationID, Value: []byte(requestID),
		})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: publishing %s: %w", eventType, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
