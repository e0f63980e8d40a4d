package audit

import (
	"context"
	"log/slog"
)

// Publisher delivers audit events to a sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// SlogPublisher writes audit events to the process log. It is the fallback
// when no Kafka brokers are configured, so mutations are always auditable
// somewhere.
type SlogPublisher struct {
	logger *slog.Logger
}

func NewSlogPublisher(logger *slog.Logger) *SlogPublisher {
	return &SlogPublisher{logger: logger}
}

func (p *SlogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "audit event",
		"event_id", event.ID,
		"action", string(event.Action),
		"imsi", event.IMSI,
		"request_id", event.RequestID,
		"occurred_at", event.OccurredAt,
	)
	return nil
}

func (p *SlogPublisher) Close() error { return nil }
