package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/kittipat-ch/pricebench-backend/internal/rules"
	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
)

// ruleInputs are the numeric fields pricing rules may target.
type ruleInputs struct {
	sellingFactor  decimal.Decimal
	fabCostPerUnit decimal.Decimal
}

// applyRules composes the matched rules onto the resolved inputs. For one
// field the highest-priority override replaces the value first, then every
// matching adjustment is applied in priority order on top of it. Adjusting
// and then replacing would discard the adjustment, so the override always
// lands first regardless of relative priorities. Action rules are recorded
// and flag the result for review without touching the numbers. Overrides
// shadowed by a higher-priority override of the same field are not applied
// and not recorded.
func applyRules(matched []models.PricingRule, inputs *ruleInputs) ([]AppliedRule, bool, error) {
	applied := make([]AppliedRule, 0, len(matched))
	needsReview := false
	overridden := map[enums.RuleField]bool{}

	for _, rule := range matched {
		if rule.RuleType != enums.RuleTypeOverride || overridden[rule.Field] {
			continue
		}
		value, err := rules.ParseOverrideValue(rule.Value)
		if err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored override rule no longer parses")
		}
		if err := setField(inputs, rule.Field, value.Amount); err != nil {
			return nil, false, err
		}
		overridden[rule.Field] = true
		applied = append(applied, newAppliedRule(rule))
	}

	for _, rule := range matched {
		switch rule.RuleType {
		case enums.RuleTypeAdjustment:
			value, err := rules.ParseAdjustmentValue(rule.Value)
			if err != nil {
				return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored adjustment rule no longer parses")
			}
			if err := adjustField(inputs, rule.Field, value); err != nil {
				return nil, false, err
			}
			applied = append(applied, newAppliedRule(rule))
		case enums.RuleTypeAction:
			needsReview = true
			applied = append(applied, newAppliedRule(rule))
		}
	}
	return applied, needsReview, nil
}

func setField(inputs *ruleInputs, field enums.RuleField, amount decimal.Decimal) error {
	switch field {
	case enums.RuleFieldSellingFactor:
		inputs.sellingFactor = amount
	case enums.RuleFieldFabCost:
		inputs.fabCostPerUnit = amount
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, "stored rule targets an unknown field")
	}
	return nil
}

func adjustField(inputs *ruleInputs, field enums.RuleField, value *rules.AdjustmentValue) error {
	var current decimal.Decimal
	switch field {
	case enums.RuleFieldSellingFactor:
		current = inputs.sellingFactor
	case enums.RuleFieldFabCost:
		current = inputs.fabCostPerUnit
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, "stored rule targets an unknown field")
	}

	switch value.Mode {
	case enums.AdjustmentModeDelta:
		current = current.Add(value.Amount)
	case enums.AdjustmentModeMultiplier:
		current = current.Mul(value.Amount)
	}
	return setField(inputs, field, current)
}

func newAppliedRule(rule models.PricingRule) AppliedRule {
	return AppliedRule{
		ID:       rule.ID,
		Name:     rule.Name,
		Priority: rule.Priority,
		RuleType: rule.RuleType,
		Field:    rule.Field,
	}
}
