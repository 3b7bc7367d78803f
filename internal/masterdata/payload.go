package masterdata

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/types"
)

// Payload is the typed body of a versioned record. Each entity type carries
// its own shape; all of them validate before a draft is stored.
type Payload interface {
	Validate() error
}

// StandardPricePayload is the supplier price of a raw material, keyed by
// material code. Prices are stored in THB per unit.
type StandardPricePayload struct {
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Unit         string          `json:"unit"`
}

func (p StandardPricePayload) Validate() error {
	if !p.PricePerUnit.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_per_unit must be positive")
	}
	if p.Unit == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
	}
	return nil
}

// FabCostPayload is the fabrication cost of a product, keyed by product code
// or the literal key "default".
type FabCostPayload struct {
	Cost decimal.Decimal `json:"cost"`
}

func (p FabCostPayload) Validate() error {
	if !p.Cost.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost must be positive")
	}
	return nil
}

// SellingFactorPayload is the multiplier applied to total cost, keyed by
// tube size.
type SellingFactorPayload struct {
	Factor decimal.Decimal `json:"factor"`
}

func (p SellingFactorPayload) Validate() error {
	if !p.Factor.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "factor must be positive")
	}
	return nil
}

// LmePricePayload is the exchange-quoted metal price, keyed by raw material
// item group. Stored in THB per unit.
type LmePricePayload struct {
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

func (p LmePricePayload) Validate() error {
	if !p.PricePerUnit.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_per_unit must be positive")
	}
	return nil
}

// ExchangeRatePayload is the THB value of one unit of the quote currency,
// keyed by the quote currency code.
type ExchangeRatePayload struct {
	Rate decimal.Decimal `json:"rate"`
}

func (p ExchangeRatePayload) Validate() error {
	if !p.Rate.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "rate must be positive")
	}
	return nil
}

// ParsePayload decodes and validates a raw payload for the given entity type.
func ParsePayload(entityType enums.EntityType, raw types.JSON) (Payload, error) {
	if len(raw) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payload is required")
	}

	var payload Payload
	switch entityType {
	case enums.EntityTypeStandardPrice:
		payload = &StandardPricePayload{}
	case enums.EntityTypeFabCost:
		payload = &FabCostPayload{}
	case enums.EntityTypeSellingFactor:
		payload = &SellingFactorPayload{}
	case enums.EntityTypeLmePrice:
		payload = &LmePricePayload{}
	case enums.EntityTypeExchangeRate:
		payload = &ExchangeRatePayload{}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown entity type %q", entityType))
	}

	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decoding payload")
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

// ValidateEntityKey enforces the key convention of each entity type. Keys are
// free-form codes except exchange rates, which must name a supported non-base
// currency.
func ValidateEntityKey(entityType enums.EntityType, entityKey string) error {
	if entityKey == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "entity key is required")
	}
	if entityType == enums.EntityTypeExchangeRate {
		currency, err := enums.ParseCurrency(entityKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "exchange rate key")
		}
		if currency.IsBase() {
			return pkgerrors.New(pkgerrors.CodeValidation, "exchange rate for the base currency is implicit")
		}
	}
	return nil
}
