package calculation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
)

// MaterialCost is the priced line of one bill-of-materials item.
type MaterialCost struct {
	RawMaterialID   uuid.UUID         `json:"raw_material_id"`
	RawMaterialCode string            `json:"raw_material_code"`
	BOMQuantity     decimal.Decimal   `json:"bom_quantity"`
	Unit            string            `json:"unit"`
	UnitPrice       decimal.Decimal   `json:"unit_price"`
	PriceSource     enums.PriceSource `json:"price_source"`
	CostPerUnit     decimal.Decimal   `json:"cost_per_unit"`
	TotalCost       decimal.Decimal   `json:"total_cost"`
}

// VersionRef pins the exact master-data version a calculation consumed.
type VersionRef struct {
	RecordID uuid.UUID `json:"record_id"`
	Version  int       `json:"version"`
}

// AppliedRule records one pricing rule that took effect.
type AppliedRule struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Priority int             `json:"priority"`
	RuleType enums.RuleType  `json:"rule_type"`
	Field    enums.RuleField `json:"field,omitempty"`
}

// Result is the immutable outcome of one hybrid calculation. Re-running with
// the same inputs against the same active versions reproduces it exactly,
// except for CalculatedAt.
type Result struct {
	ProductID                       uuid.UUID             `json:"product_id"`
	CustomerGroupID                 uuid.UUID             `json:"customer_group_id"`
	Quantity                        decimal.Decimal       `json:"quantity"`
	MaterialCosts                   []MaterialCost        `json:"material_costs"`
	TotalMaterialCost               decimal.Decimal       `json:"total_material_cost"`
	FabCostPerUnit                  decimal.Decimal       `json:"fab_cost_per_unit"`
	FabCost                         decimal.Decimal       `json:"fab_cost"`
	TotalCost                       decimal.Decimal       `json:"total_cost"`
	SellingFactor                   decimal.Decimal       `json:"selling_factor"`
	SellingPriceThb                 decimal.Decimal       `json:"selling_price_thb"`
	ExchangeRate                    decimal.Decimal       `json:"exchange_rate"`
	RequestedCurrency               enums.Currency        `json:"requested_currency"`
	SellingPriceInRequestedCurrency decimal.Decimal       `json:"selling_price_in_requested_currency"`
	MarginAmount                    decimal.Decimal       `json:"margin_amount"`
	MarginPercentage                decimal.Decimal       `json:"margin_percentage"`
	AppliedRules                    []AppliedRule         `json:"applied_rules"`
	MasterDataVersions              map[string]VersionRef `json:"master_data_versions"`
	HasMissingPrices                bool                  `json:"has_missing_prices"`
	NeedsReview                     bool                  `json:"needs_review"`
	CalculatedAt                    time.Time             `json:"calculated_at"`
}
