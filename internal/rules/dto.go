package rules

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
)

// RuleDTO is the API shape of a pricing rule.
type RuleDTO struct {
	ID         uuid.UUID             `json:"id"`
	Name       string                `json:"name"`
	Priority   int                   `json:"priority"`
	IsActive   bool                  `json:"is_active"`
	Conditions models.RuleConditions `json:"conditions"`
	RuleType   enums.RuleType        `json:"rule_type"`
	Field      enums.RuleField       `json:"field,omitempty"`
	Value      json.RawMessage       `json:"value,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// NewRuleDTO maps a model to its API shape.
func NewRuleDTO(rule *models.PricingRule) *RuleDTO {
	if rule == nil {
		return nil
	}
	return &RuleDTO{
		ID:         rule.ID,
		Name:       rule.Name,
		Priority:   rule.Priority,
		IsActive:   rule.IsActive,
		Conditions: rule.Conditions,
		RuleType:   rule.RuleType,
		Field:      rule.Field,
		Value:      json.RawMessage(rule.Value),
		CreatedAt:  rule.CreatedAt,
		UpdatedAt:  rule.UpdatedAt,
	}
}
