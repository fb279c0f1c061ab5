package enums

// DatePreset names a relative reporting window.
// Unrecognized presets are not an error: the query layer falls back to
// PresetLast30Days so that stale saved queries keep answering.
type DatePreset string

const (
	PresetLast7Days  DatePreset = "last7days"
	PresetLast30Days DatePreset = "last30days"
	PresetLast90Days DatePreset = "last90days"
	PresetLastMonth  DatePreset = "lastMonth"
	PresetCustom     DatePreset = "custom"
)

var validDatePresets = []DatePreset{
	PresetLast7Days,
	PresetLast30Days,
	PresetLast90Days,
	PresetLastMonth,
	PresetCustom,
}

// String implements fmt.Stringer.
func (p DatePreset) String() string {
	return string(p)
}

// IsValid reports whether the preset is recognized.
func (p DatePreset) IsValid() bool {
	for _, candidate := range validDatePresets {
		if candidate == p {
			return true
		}
	}
	return false
}
