package enums

import "fmt"

// Fulfillment distinguishes warehouse-fulfilled from merchant-fulfilled sales.
// Mixed is derived during aggregation and never appears on a raw transaction.
type Fulfillment string

const (
	FulfillmentFBA     Fulfillment = "FBA"
	FulfillmentFBM     Fulfillment = "FBM"
	FulfillmentMixed   Fulfillment = "Mixed"
	FulfillmentUnknown Fulfillment = "Unknown"
)

var validFulfillments = []Fulfillment{
	FulfillmentFBA,
	FulfillmentFBM,
}

// String implements fmt.Stringer.
func (f Fulfillment) String() string {
	return string(f)
}

// IsValid reports whether the value is a fulfillment type a transaction may carry.
func (f Fulfillment) IsValid() bool {
	for _, candidate := range validFulfillments {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFulfillment converts a raw string into a Fulfillment.
func ParseFulfillment(value string) (Fulfillment, error) {
	for _, candidate := range validFulfillments {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return FulfillmentUnknown, fmt.Errorf("invalid fulfillment %q", value)
}
