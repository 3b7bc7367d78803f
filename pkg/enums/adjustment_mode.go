package enums

import "fmt"

// AdjustmentMode selects how an adjustment rule shifts the current value.
type AdjustmentMode string

const (
	AdjustmentModeDelta      AdjustmentMode = "delta"
	AdjustmentModeMultiplier AdjustmentMode = "multiplier"
)

var validAdjustmentModes = []AdjustmentMode{
	AdjustmentModeDelta,
	AdjustmentModeMultiplier,
}

// String implements fmt.Stringer.
func (m AdjustmentMode) String() string {
	return string(m)
}

// IsValid reports whether the mode is recognized.
func (m AdjustmentMode) IsValid() bool {
	for _, candidate := range validAdjustmentModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseAdjustmentMode converts a raw string into an AdjustmentMode.
func ParseAdjustmentMode(value string) (AdjustmentMode, error) {
	for _, candidate := range validAdjustmentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment mode %q", value)
}
