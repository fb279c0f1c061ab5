package enums

import "fmt"

// IngestEventType names the report events the ingest worker consumes.
type IngestEventType string

const (
	IngestOrderReported  IngestEventType = "txn_order_reported"
	IngestRefundReported IngestEventType = "txn_refund_reported"
)

var validIngestEventTypes = []IngestEventType{
	IngestOrderReported,
	IngestRefundReported,
}

// String implements fmt.Stringer.
func (t IngestEventType) String() string {
	return string(t)
}

// IsValid reports whether the event type is recognized.
func (t IngestEventType) IsValid() bool {
	for _, candidate := range validIngestEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseIngestEventType converts a raw string into an IngestEventType.
func ParseIngestEventType(value string) (IngestEventType, error) {
	for _, candidate := range validIngestEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ingest event type %q", value)
}
