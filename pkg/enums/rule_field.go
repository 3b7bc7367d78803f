package enums

import "fmt"

// RuleField names the calculation input a pricing rule targets. Action rules
// carry no field.
type RuleField string

const (
	RuleFieldSellingFactor RuleField = "selling_factor"
	RuleFieldFabCost       RuleField = "fab_cost"
	RuleFieldNone          RuleField = ""
)

var validRuleFields = []RuleField{
	RuleFieldSellingFactor,
	RuleFieldFabCost,
}

// String implements fmt.Stringer.
func (f RuleField) String() string {
	return string(f)
}

// IsValid reports whether the field is a known calculation input.
func (f RuleField) IsValid() bool {
	for _, candidate := range validRuleFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseRuleField converts a raw string into a RuleField.
func ParseRuleField(value string) (RuleField, error) {
	for _, candidate := range validRuleFields {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rule field %q", value)
}
