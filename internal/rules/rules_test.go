package rules

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/types"
)

func setupRulesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	pricingRules := `
CREATE TABLE IF NOT EXISTS pricing_rules (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  priority INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  conditions TEXT NOT NULL DEFAULT '{}',
  rule_type TEXT NOT NULL,
  field TEXT NOT NULL DEFAULT '',
  value TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(pricingRules).Error)
	return conn
}

func newRulesService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func overrideValue(t *testing.T, amount int64) types.JSON {
	t.Helper()
	return types.JSON(`{"amount": ` + decimal.NewFromInt(amount).String() + `}`)
}

func TestCreateRuleValidatesShape(t *testing.T) {
	conn := setupRulesTestDB(t)
	svc := newRulesService(t, conn)
	ctx := context.Background()

	_, err := svc.CreateRule(ctx, CreateRuleInput{
		Name:     "override without field",
		RuleType: enums.RuleTypeOverride,
		Value:    overrideValue(t, 100),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateRule(ctx, CreateRuleInput{
		Name:     "adjustment with bad mode",
		RuleType: enums.RuleTypeAdjustment,
		Field:    enums.RuleFieldFabCost,
		Value:    types.JSON(`{"mode": "percent", "amount": 5}`),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.CreateRule(ctx, CreateRuleInput{
		Name:     "action with field",
		RuleType: enums.RuleTypeAction,
		Field:    enums.RuleFieldSellingFactor,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	created, err := svc.CreateRule(ctx, CreateRuleInput{
		Name:     "valid override",
		Priority: 10,
		IsActive: true,
		RuleType: enums.RuleTypeOverride,
		Field:    enums.RuleFieldSellingFactor,
		Value:    types.JSON(`{"amount": 1.5}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "valid override", created.Name)
}

func TestCreateRulePersistsInactiveFlag(t *testing.T) {
	conn := setupRulesTestDB(t)
	svc := newRulesService(t, conn)
	ctx := context.Background()

	created, err := svc.CreateRule(ctx, CreateRuleInput{
		Name:     "dormant rule",
		IsActive: false,
		RuleType: enums.RuleTypeAction,
	})
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	stored, err := svc.GetRule(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestCreateRuleValidatesQuantityBounds(t *testing.T) {
	conn := setupRulesTestDB(t)
	svc := newRulesService(t, conn)

	min := decimal.NewFromInt(100)
	max := decimal.NewFromInt(10)
	_, err := svc.CreateRule(context.Background(), CreateRuleInput{
		Name:       "inverted band",
		RuleType:   enums.RuleTypeAction,
		Conditions: models.RuleConditions{QuantityMin: &min, QuantityMax: &max},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestMatcherAppliesWildcardsAndBounds(t *testing.T) {
	conn := setupRulesTestDB(t)
	svc := newRulesService(t, conn)
	ctx := context.Background()

	groupID := uuid.New()
	productID := uuid.New()
	min := decimal.NewFromInt(50)

	catchAll, err := svc.CreateRule(ctx, CreateRuleInput{
		Name:     "catch all",
		Priority: 1,
		IsActive: true,
		RuleType: enums.RuleTypeAdjustment,
		Field:    enums.RuleFieldFabCost,
		Value:    types.JSON(`{"mode": "delta", "amount": 2}`),
	})
	require.NoError(t, err)

	grouped, err := svc.CreateRule(ctx, CreateRuleInput{
		Name:       "group volume discount",
		Priority:   5,
		IsActive:   true,
		Conditions: models.RuleConditions{CustomerGroupID: &groupID, QuantityMin: &min},
		RuleType:   enums.RuleTypeOverride,
		Field:      enums.RuleFieldSellingFactor,
		Value:      types.JSON(`{"amount": 1.2}`),
	})
	require.NoError(t, err)

	_, err = svc.CreateRule(ctx, CreateRuleInput{
		Name:       "inactive rule",
		Priority:   99,
		IsActive:   false,
		RuleType:   enums.RuleTypeAction,
		Conditions: models.RuleConditions{},
	})
	require.NoError(t, err)

	matcher := NewMatcher(NewRepository(conn))

	matched, err := matcher.Match(ctx, MatchContext{
		CustomerGroupID: groupID,
		ProductID:       productID,
		Quantity:        decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, grouped.ID, matched[0].ID)
	assert.Equal(t, catchAll.ID, matched[1].ID)

	// below the quantity band only the wildcard rule applies
	matched, err = matcher.Match(ctx, MatchContext{
		CustomerGroupID: groupID,
		ProductID:       productID,
		Quantity:        decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, catchAll.ID, matched[0].ID)

	// a different group misses the scoped rule
	matched, err = matcher.Match(ctx, MatchContext{
		CustomerGroupID: uuid.New(),
		ProductID:       productID,
		Quantity:        decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, catchAll.ID, matched[0].ID)
}

func TestUpdateRuleRevalidatesShape(t *testing.T) {
	conn := setupRulesTestDB(t)
	svc := newRulesService(t, conn)
	ctx := context.Background()

	created, err := svc.CreateRule(ctx, CreateRuleInput{
		Name:     "seasonal uplift",
		Priority: 3,
		IsActive: true,
		RuleType: enums.RuleTypeAdjustment,
		Field:    enums.RuleFieldSellingFactor,
		Value:    types.JSON(`{"mode": "multiplier", "amount": 1.05}`),
	})
	require.NoError(t, err)

	badValue := types.JSON(`{"mode": "multiplier", "amount": 0}`)
	_, err = svc.UpdateRule(ctx, created.ID, UpdateRuleInput{Value: &badValue})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	inactive := false
	updated, err := svc.UpdateRule(ctx, created.ID, UpdateRuleInput{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = svc.UpdateRule(ctx, uuid.New(), UpdateRuleInput{IsActive: &inactive})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteRule(t *testing.T) {
	conn := setupRulesTestDB(t)
	svc := newRulesService(t, conn)
	ctx := context.Background()

	created, err := svc.CreateRule(ctx, CreateRuleInput{
		Name:     "temporary",
		RuleType: enums.RuleTypeAction,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRule(ctx, created.ID))

	err = svc.DeleteRule(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
