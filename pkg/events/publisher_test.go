package events

import (
	"context"
	"testing"

	"roomly/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func TestNewPublisher_RequiresBrokersAndTopic(t *testing.T) {
	if _, err := NewPublisher(Config{Topic: "bookings"}, testLogger()); err == nil {
		t.Error("expected error without brokers")
	}
	if _, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}}, testLogger()); err == nil {
		t.Error("expected error without topic")
	}
}

func TestPublishAfterClose(t *testing.T) {
	p, err := NewPublisher(Config{
		Brokers: []string{"localhost:9092"},
		Topic:   "bookings",
		Source:  "test",
	}, testLogger())
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close is idempotent.
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if err := p.Publish(context.Background(), BookingCreated, "1", map[string]any{"id": 1}); err == nil {
		t.Error("expected error publishing after Close")
	}
}
