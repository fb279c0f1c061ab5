package enums

import "fmt"

// QueryMetric is the single measure an ad-hoc query computes per group.
type QueryMetric string

const (
	MetricRevenue       QueryMetric = "revenue"
	MetricProfit        QueryMetric = "profit"
	MetricOrders        QueryMetric = "orders"
	MetricQuantity      QueryMetric = "quantity"
	MetricRefundRate    QueryMetric = "refundRate"
	MetricAvgOrderValue QueryMetric = "avgOrderValue"
	MetricSellingFees   QueryMetric = "sellingFees"
	MetricFBAFees       QueryMetric = "fbaFees"
)

var validQueryMetrics = []QueryMetric{
	MetricRevenue,
	MetricProfit,
	MetricOrders,
	MetricQuantity,
	MetricRefundRate,
	MetricAvgOrderValue,
	MetricSellingFees,
	MetricFBAFees,
}

// String implements fmt.Stringer.
func (m QueryMetric) String() string {
	return string(m)
}

// IsValid reports whether the metric is recognized.
func (m QueryMetric) IsValid() bool {
	for _, candidate := range validQueryMetrics {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseQueryMetric converts a raw string into a QueryMetric.
func ParseQueryMetric(value string) (QueryMetric, error) {
	for _, candidate := range validQueryMetrics {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid query metric %q", value)
}
