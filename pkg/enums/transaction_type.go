package enums

import "fmt"

// TransactionType tags a report row as a sale or a refund.
type TransactionType string

const (
	TransactionOrder  TransactionType = "Order"
	TransactionRefund TransactionType = "Refund"
)

var validTransactionTypes = []TransactionType{
	TransactionOrder,
	TransactionRefund,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the transaction type is recognized.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts a raw string into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
