package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/profitlens/profitlens-backend/pkg/logger"
)

const ingestConsumerName = "ingest"

// EnvelopeHandler processes decoded report envelopes.
type EnvelopeHandler interface {
	Handle(ctx context.Context, envelope Envelope) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer, eventID string) (bool, error)
	Delete(ctx context.Context, consumer, eventID string) error
}

// Worker consumes report events from Pub/Sub while honoring Redis
// idempotency.
type Worker struct {
	subscription *gcppubsub.Subscriber
	handler      EnvelopeHandler
	manager      idempotencyChecker
	logg         *logger.Logger
}

func NewWorker(subscription *gcppubsub.Subscriber, handler EnvelopeHandler, manager idempotencyChecker, logg *logger.Logger) (*Worker, error) {
	if subscription == nil {
		return nil, errors.New("ingest subscription is required")
	}
	if handler == nil {
		return nil, errors.New("ingest handler is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	return &Worker{
		subscription: subscription,
		handler:      handler,
		manager:      manager,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run starts consuming report messages until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return w.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if w.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (w *Worker) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := w.logg.WithFields(ctx, fields)

	envelope, err := w.buildEnvelope(msg)
	if err != nil {
		fields["error"] = err.Error()
		w.logg.Warn(w.logg.WithFields(ctx, fields), "invalid report envelope")
		return processResult{}
	}

	fields["event_id"] = envelope.EventID
	fields["event_type"] = envelope.EventType
	fields["marketplace"] = envelope.Marketplace
	fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	logCtx = w.logg.WithFields(ctx, fields)

	already, err := w.manager.CheckAndMarkProcessed(logCtx, ingestConsumerName, envelope.EventID)
	if err != nil {
		w.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		w.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	if err := w.handler.Handle(logCtx, *envelope); err != nil {
		w.logg.Error(logCtx, "handler error", err)
		_ = w.manager.Delete(logCtx, ingestConsumerName, envelope.EventID)
		return processResult{nack: true}
	}

	w.logg.Info(logCtx, "report event handled")
	return processResult{}
}

func (w *Worker) buildEnvelope(msg *gcppubsub.Message) (*Envelope, error) {
	eventID := strings.TrimSpace(msg.Attributes["event_id"])
	if eventID == "" {
		return nil, errors.New("event_id missing")
	}

	eventType, err := enums.ParseIngestEventType(strings.TrimSpace(msg.Attributes["event_type"]))
	if err != nil {
		return nil, fmt.Errorf("event_type: %w", err)
	}

	marketplace, err := enums.ParseMarketplace(strings.TrimSpace(msg.Attributes["marketplace"]))
	if err != nil {
		return nil, fmt.Errorf("marketplace: %w", err)
	}

	occurredAt := time.Now().UTC()
	if created := strings.TrimSpace(msg.Attributes["occurred_at"]); created != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
			occurredAt = parsed.UTC()
		}
	}

	if len(msg.Data) == 0 {
		return nil, errors.New("payload missing")
	}

	return &Envelope{
		EventID:     eventID,
		EventType:   eventType,
		Marketplace: marketplace,
		OccurredAt:  occurredAt,
		Payload:     json.RawMessage(msg.Data),
	}, nil
}
