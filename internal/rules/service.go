package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/types"
)

// Service exposes pricing rule management.
type Service interface {
	CreateRule(ctx context.Context, input CreateRuleInput) (*RuleDTO, error)
	UpdateRule(ctx context.Context, id uuid.UUID, input UpdateRuleInput) (*RuleDTO, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	GetRule(ctx context.Context, id uuid.UUID) (*RuleDTO, error)
	ListRules(ctx context.Context, activeOnly bool) ([]RuleDTO, error)
}

// CreateRuleInput holds the validated payload to create a rule.
type CreateRuleInput struct {
	Name       string
	Priority   int
	IsActive   bool
	Conditions models.RuleConditions
	RuleType   enums.RuleType
	Field      enums.RuleField
	Value      types.JSON
}

// UpdateRuleInput holds optional mutation values for a rule. Type, field and
// value move together so a rule can never hold a value its type cannot read.
type UpdateRuleInput struct {
	Name       *string
	Priority   *int
	IsActive   *bool
	Conditions *models.RuleConditions
	RuleType   *enums.RuleType
	Field      *enums.RuleField
	Value      *types.JSON
}

type service struct {
	repo *Repository
}

// NewService constructs a rule service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rule repository required")
	}
	return &service{repo: repo}, nil
}

func validateRuleShape(ruleType enums.RuleType, field enums.RuleField, value types.JSON) error {
	if !ruleType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown rule type %q", ruleType))
	}

	switch ruleType {
	case enums.RuleTypeOverride:
		if field == enums.RuleFieldNone || !field.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "override rules require a target field")
		}
		if _, err := ParseOverrideValue(value); err != nil {
			return err
		}
	case enums.RuleTypeAdjustment:
		if field == enums.RuleFieldNone || !field.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "adjustment rules require a target field")
		}
		if _, err := ParseAdjustmentValue(value); err != nil {
			return err
		}
	case enums.RuleTypeAction:
		if field != enums.RuleFieldNone {
			return pkgerrors.New(pkgerrors.CodeValidation, "action rules do not target a field")
		}
	}
	return nil
}

func validateQuantityBounds(c models.RuleConditions) error {
	if c.QuantityMin != nil && c.QuantityMin.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity_min cannot be negative")
	}
	if c.QuantityMin != nil && c.QuantityMax != nil && c.QuantityMax.LessThan(*c.QuantityMin) {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity_max cannot be below quantity_min")
	}
	return nil
}

// CreateRule validates and stores a new pricing rule.
func (s *service) CreateRule(ctx context.Context, input CreateRuleInput) (*RuleDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateRuleShape(input.RuleType, input.Field, input.Value); err != nil {
		return nil, err
	}
	if err := validateQuantityBounds(input.Conditions); err != nil {
		return nil, err
	}

	rule := &models.PricingRule{
		Name:       input.Name,
		Priority:   input.Priority,
		IsActive:   input.IsActive,
		Conditions: input.Conditions,
		RuleType:   input.RuleType,
		Field:      input.Field,
		Value:      input.Value,
	}
	created, err := s.repo.Create(ctx, rule)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert rule")
	}
	return NewRuleDTO(created), nil
}

// UpdateRule mutates an existing rule.
func (s *service) UpdateRule(ctx context.Context, id uuid.UUID, input UpdateRuleInput) (*RuleDTO, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load rule")
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		rule.Name = *input.Name
	}
	if input.Priority != nil {
		rule.Priority = *input.Priority
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if input.Conditions != nil {
		if err := validateQuantityBounds(*input.Conditions); err != nil {
			return nil, err
		}
		rule.Conditions = *input.Conditions
	}
	if input.RuleType != nil {
		rule.RuleType = *input.RuleType
	}
	if input.Field != nil {
		rule.Field = *input.Field
	}
	if input.Value != nil {
		rule.Value = *input.Value
	}
	if input.RuleType != nil || input.Field != nil || input.Value != nil {
		if err := validateRuleShape(rule.RuleType, rule.Field, rule.Value); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Save(ctx, rule)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update rule")
	}
	return NewRuleDTO(updated), nil
}

// DeleteRule removes a rule.
func (s *service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load rule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete rule")
	}
	return nil
}

// GetRule loads a single rule.
func (s *service) GetRule(ctx context.Context, id uuid.UUID) (*RuleDTO, error) {
	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load rule")
	}
	return NewRuleDTO(rule), nil
}

// ListRules returns all rules in application order.
func (s *service) ListRules(ctx context.Context, activeOnly bool) ([]RuleDTO, error) {
	rules, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list rules")
	}
	result := make([]RuleDTO, 0, len(rules))
	for i := range rules {
		result = append(result, *NewRuleDTO(&rules[i]))
	}
	return result, nil
}
