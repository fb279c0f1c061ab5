package enums

import "fmt"

// EntityLevel names the aggregation level an entity was rolled up to.
type EntityLevel string

const (
	LevelSKU      EntityLevel = "sku"
	LevelProduct  EntityLevel = "product"
	LevelParent   EntityLevel = "parent"
	LevelCategory EntityLevel = "category"
)

var validEntityLevels = []EntityLevel{
	LevelSKU,
	LevelProduct,
	LevelParent,
	LevelCategory,
}

// String implements fmt.Stringer.
func (l EntityLevel) String() string {
	return string(l)
}

// IsValid reports whether the level is recognized.
func (l EntityLevel) IsValid() bool {
	for _, candidate := range validEntityLevels {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseEntityLevel converts a raw string into an EntityLevel.
func ParseEntityLevel(value string) (EntityLevel, error) {
	for _, candidate := range validEntityLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity level %q", value)
}
