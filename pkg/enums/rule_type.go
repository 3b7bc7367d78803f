package enums

import "fmt"

// RuleType is the tagged variant of a pricing rule: overrides replace a field
// value outright, adjustments shift it, actions trigger side effects only.
type RuleType string

const (
	RuleTypeOverride   RuleType = "override"
	RuleTypeAdjustment RuleType = "adjustment"
	RuleTypeAction     RuleType = "action"
)

var validRuleTypes = []RuleType{
	RuleTypeOverride,
	RuleTypeAdjustment,
	RuleTypeAction,
}

// String implements fmt.Stringer.
func (t RuleType) String() string {
	return string(t)
}

// IsValid reports whether the rule type is recognized.
func (t RuleType) IsValid() bool {
	for _, candidate := range validRuleTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseRuleType converts a raw string into a RuleType.
func ParseRuleType(value string) (RuleType, error) {
	for _, candidate := range validRuleTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rule type %q", value)
}
