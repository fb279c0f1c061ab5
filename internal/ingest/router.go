package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/profitlens/profitlens-backend/pkg/logger"
)

var ErrUnsupportedEventType = errors.New("unsupported ingest event type")

// Handler receives an envelope plus its decoded payload.
type Handler interface {
	Handle(ctx context.Context, envelope Envelope, payload any) error
}

type handlerEntry struct {
	factory func() any
	handler Handler
}

// Router dispatches ingest envelopes to the configured handler per event
// type.
type Router struct {
	handlers map[enums.IngestEventType]handlerEntry
	logg     *logger.Logger
}

// NewRouter wires the default handlers and allows overrides for specific
// events.
func NewRouter(writer RowWriter, logg *logger.Logger, overrides map[enums.IngestEventType]Handler) (*Router, error) {
	if writer == nil {
		return nil, errors.New("row writer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}

	entries := map[enums.IngestEventType]handlerEntry{
		enums.IngestOrderReported: {
			factory: func() any { return &TransactionReported{} },
			handler: newTransactionHandler(writer, logg, enums.TransactionOrder),
		},
		enums.IngestRefundReported: {
			factory: func() any { return &TransactionReported{} },
			handler: newTransactionHandler(writer, logg, enums.TransactionRefund),
		},
	}

	for event, custom := range overrides {
		entry, ok := entries[event]
		if !ok || custom == nil {
			continue
		}
		entry.handler = custom
		entries[event] = entry
	}

	return &Router{
		handlers: entries,
		logg:     logg,
	}, nil
}

// Handle dispatches the incoming envelope to the configured handler.
func (r *Router) Handle(ctx context.Context, envelope Envelope) error {
	entry, ok := r.handlers[envelope.EventType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedEventType, envelope.EventType)
	}
	if len(envelope.Payload) == 0 {
		return fmt.Errorf("empty payload for %s", envelope.EventType)
	}
	payload := entry.factory()
	if err := json.Unmarshal(envelope.Payload, payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", envelope.EventType, err)
	}

	return entry.handler.Handle(ctx, envelope, payload)
}
