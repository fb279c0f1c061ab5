package enums

import "fmt"

// QueryDimension is the grouping axis of an ad-hoc query.
type QueryDimension string

const (
	DimensionCountry     QueryDimension = "country"
	DimensionCategory    QueryDimension = "category"
	DimensionSKU         QueryDimension = "sku"
	DimensionProduct     QueryDimension = "product"
	DimensionFulfillment QueryDimension = "fulfillment"
)

var validQueryDimensions = []QueryDimension{
	DimensionCountry,
	DimensionCategory,
	DimensionSKU,
	DimensionProduct,
	DimensionFulfillment,
}

// String implements fmt.Stringer.
func (d QueryDimension) String() string {
	return string(d)
}

// IsValid reports whether the dimension is recognized.
func (d QueryDimension) IsValid() bool {
	for _, candidate := range validQueryDimensions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseQueryDimension converts a raw string into a QueryDimension.
func ParseQueryDimension(value string) (QueryDimension, error) {
	for _, candidate := range validQueryDimensions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid query dimension %q", value)
}
