package ingest

import (
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/profitlens/profitlens-backend/pkg/enums"
	"github.com/profitlens/profitlens-backend/pkg/logger"
)

func envelopeWorker(t *testing.T) *Worker {
	t.Helper()
	return &Worker{logg: logger.New(logger.Options{Output: io.Discard})}
}

func TestBuildEnvelope(t *testing.T) {
	w := envelopeWorker(t)
	occurred := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

	envelope, err := w.buildEnvelope(&gcppubsub.Message{
		ID:   "msg-1",
		Data: []byte(`{"report_id":"report-1","rows":[]}`),
		Attributes: map[string]string{
			"event_id":    "evt-1",
			"event_type":  "txn_order_reported",
			"marketplace": "DE",
			"occurred_at": occurred.Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if envelope.EventID != "evt-1" {
		t.Fatalf("event id: got %q", envelope.EventID)
	}
	if envelope.EventType != enums.IngestOrderReported {
		t.Fatalf("event type: got %s", envelope.EventType)
	}
	if envelope.Marketplace != enums.MarketplaceDE {
		t.Fatalf("marketplace: got %s", envelope.Marketplace)
	}
	if !envelope.OccurredAt.Equal(occurred) {
		t.Fatalf("occurred at: got %s", envelope.OccurredAt)
	}
}

func TestBuildEnvelopeRejectsBadMessages(t *testing.T) {
	w := envelopeWorker(t)

	tests := []struct {
		name string
		msg  *gcppubsub.Message
	}{
		{
			name: "missing event id",
			msg: &gcppubsub.Message{
				Data:       []byte(`{}`),
				Attributes: map[string]string{"event_type": "txn_order_reported", "marketplace": "US"},
			},
		},
		{
			name: "unknown event type",
			msg: &gcppubsub.Message{
				Data:       []byte(`{}`),
				Attributes: map[string]string{"event_id": "evt-1", "event_type": "report_deleted", "marketplace": "US"},
			},
		},
		{
			name: "unknown marketplace",
			msg: &gcppubsub.Message{
				Data:       []byte(`{}`),
				Attributes: map[string]string{"event_id": "evt-1", "event_type": "txn_order_reported", "marketplace": "MOON"},
			},
		},
		{
			name: "empty payload",
			msg: &gcppubsub.Message{
				Attributes: map[string]string{"event_id": "evt-1", "event_type": "txn_order_reported", "marketplace": "US"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := w.buildEnvelope(tc.msg); err == nil {
				t.Fatal("expected an envelope error")
			}
		})
	}
}
