package rules

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/types"
)

// OverrideValue pins a cost component to a fixed amount.
type OverrideValue struct {
	Amount decimal.Decimal `json:"amount"`
}

// AdjustmentValue shifts a cost component, either by a signed delta or by a
// multiplier.
type AdjustmentValue struct {
	Mode   enums.AdjustmentMode `json:"mode"`
	Amount decimal.Decimal      `json:"amount"`
}

// ActionValue tags a calculation without touching its numbers.
type ActionValue struct {
	Flag string `json:"flag"`
}

// ParseOverrideValue decodes and validates an override rule value.
func ParseOverrideValue(raw types.JSON) (*OverrideValue, error) {
	if len(raw) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "override value is required")
	}
	var value OverrideValue
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding override value")
	}
	if !value.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "override amount must be positive")
	}
	return &value, nil
}

// ParseAdjustmentValue decodes and validates an adjustment rule value.
func ParseAdjustmentValue(raw types.JSON) (*AdjustmentValue, error) {
	if len(raw) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment value is required")
	}
	var value AdjustmentValue
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding adjustment value")
	}
	if !value.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment mode must be delta or multiplier")
	}
	if value.Mode == enums.AdjustmentModeMultiplier && !value.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "multiplier amount must be positive")
	}
	if value.Mode == enums.AdjustmentModeDelta && value.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta amount must be non-zero")
	}
	return &value, nil
}
