package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"coregw/pkg/requestcontext"
)

const publishTimeout = 5 * time.Second

// Emitter decouples request handling from audit delivery: Emit enqueues and
// returns immediately, a background Run loop publishes. An audit sink outage
// must never fail a provisioning request, so a full buffer drops the event
// and logs instead of blocking.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
	inbox     chan Event
}

func NewEmitter(publisher Publisher, logger *slog.Logger, buffer int) *Emitter {
	if buffer <= 0 {
		buffer = 256
	}
	return &Emitter{
		publisher: publisher,
		logger:    logger,
		inbox:     make(chan Event, buffer),
	}
}

// Emit queues an audit event for the given action. Request ID and time are
// taken from the context when present.
func (e *Emitter) Emit(ctx context.Context, action Action, imsi string) {
	event := Event{
		ID:         uuid.NewString(),
		Action:     action,
		IMSI:       imsi,
		RequestID:  requestcontext.RequestID(ctx),
		OccurredAt: requestcontext.Now(ctx),
	}
	select {
	case e.inbox <- event:
	default:
		e.logger.Warn("audit buffer full, dropping event",
			"action", string(action),
			"imsi", imsi,
		)
	}
}

// Run consumes queued events until ctx is cancelled, draining what it can on
// the way out.
func (e *Emitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			e.drain()
			return ctx.Err()
		case event := <-e.inbox:
			e.publish(event)
		}
	}
}

func (e *Emitter) publish(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Error("failed to publish audit event",
			"event_id", event.ID,
			"action", string(event.Action),
			"error", err,
		)
	}
}

func (e *Emitter) drain() {
	for {
		select {
		case event := <-e.inbox:
			e.publish(event)
		default:
			return
		}
	}
}
