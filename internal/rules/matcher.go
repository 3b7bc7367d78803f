package rules

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
)

// MatchContext carries the facts a calculation exposes to rule conditions.
type MatchContext struct {
	CustomerGroupID uuid.UUID
	ProductID       uuid.UUID
	Quantity        decimal.Decimal
}

// Matcher selects the active rules whose conditions hold for a calculation.
// Absent condition fields are wildcards, so a rule with empty conditions
// matches everything.
type Matcher struct {
	repo *Repository
}

// NewMatcher builds a matcher over the rule repository.
func NewMatcher(repo *Repository) *Matcher {
	return &Matcher{repo: repo}
}

// Match returns the matching active rules in application order: priority
// descending, id ascending on ties.
func (m *Matcher) Match(ctx context.Context, mc MatchContext) ([]models.PricingRule, error) {
	active, err := m.repo.List(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list active rules")
	}

	matched := make([]models.PricingRule, 0, len(active))
	for _, rule := range active {
		if ruleMatches(rule.Conditions, mc) {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}

func ruleMatches(c models.RuleConditions, mc MatchContext) bool {
	if c.CustomerGroupID != nil && *c.CustomerGroupID != mc.CustomerGroupID {
		return false
	}
	if c.ProductID != nil && *c.ProductID != mc.ProductID {
		return false
	}
	if c.QuantityMin != nil && mc.Quantity.LessThan(*c.QuantityMin) {
		return false
	}
	if c.QuantityMax != nil && mc.Quantity.GreaterThan(*c.QuantityMax) {
		return false
	}
	return true
}
