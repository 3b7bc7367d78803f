package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	"github.com/kittipat-ch/pricebench-backend/pkg/types"
)

// RuleConditions is the matching predicate of a pricing rule. Absent fields
// are wildcards.
type RuleConditions struct {
	CustomerGroupID *uuid.UUID       `json:"customer_group_id,omitempty"`
	ProductID       *uuid.UUID       `json:"product_id,omitempty"`
	QuantityMin     *decimal.Decimal `json:"quantity_min,omitempty"`
	QuantityMax     *decimal.Decimal `json:"quantity_max,omitempty"`
}

// Value implements driver.Valuer, persisting the conditions as jsonb.
func (c RuleConditions) Value() (driver.Value, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan implements sql.Scanner.
func (c *RuleConditions) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*c = RuleConditions{}
		return nil
	case []byte:
		return json.Unmarshal(value, c)
	case string:
		return json.Unmarshal([]byte(value), c)
	default:
		return fmt.Errorf("unsupported conditions column type %T", src)
	}
}

// PricingRule is an authored pricing policy evaluated against every hybrid
// calculation. Higher priority is applied first; ties break on id ascending.
type PricingRule struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name       string          `gorm:"column:name;not null"`
	Priority   int             `gorm:"column:priority;not null"`
	IsActive   bool            `gorm:"column:is_active;not null"`
	Conditions RuleConditions  `gorm:"column:conditions;type:jsonb;not null"`
	RuleType   enums.RuleType  `gorm:"column:rule_type;not null"`
	Field      enums.RuleField `gorm:"column:field"`
	Value      types.JSON      `gorm:"column:value;type:jsonb"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key for sqlite test databases.
func (r *PricingRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
