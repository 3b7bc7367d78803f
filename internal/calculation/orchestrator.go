package calculation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/internal/catalog"
	"github.com/kittipat-ch/pricebench-backend/internal/masterdata"
	"github.com/kittipat-ch/pricebench-backend/internal/rules"
	"github.com/kittipat-ch/pricebench-backend/pkg/db"
	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/metrics"
)

// Input identifies one hybrid calculation request. Either CustomerID or
// CustomerGroupID selects the pricing scope; CustomerID wins when both are
// present.
type Input struct {
	ProductID       uuid.UUID
	CustomerID      *uuid.UUID
	CustomerGroupID *uuid.UUID
	Quantity        decimal.Decimal
	Currency        enums.Currency
}

// Service runs hybrid price calculations.
type Service interface {
	CalculateHybrid(ctx context.Context, input Input) (*Result, error)
}

type groupResolver interface {
	ResolveGroup(ctx context.Context, customerID uuid.UUID) (*models.CustomerGroup, error)
}

type groupLoader interface {
	FindGroupByID(ctx context.Context, id uuid.UUID) (*models.CustomerGroup, error)
}

type service struct {
	dbClient    *db.Client
	masterRepo  *masterdata.Repository
	catalogRepo *catalog.Repository
	rulesRepo   *rules.Repository
	resolver    groupResolver
	groups      groupLoader
	metrics     *metrics.CalculationMetrics
	places      int32
}

// NewService constructs the calculation orchestrator. Metrics may be nil.
func NewService(dbClient *db.Client, masterRepo *masterdata.Repository, catalogRepo *catalog.Repository, rulesRepo *rules.Repository, resolver groupResolver, groups groupLoader, m *metrics.CalculationMetrics, roundingPlaces int32) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if masterRepo == nil {
		return nil, fmt.Errorf("master-data repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if rulesRepo == nil {
		return nil, fmt.Errorf("rule repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("customer group resolver required")
	}
	if groups == nil {
		return nil, fmt.Errorf("customer group loader required")
	}
	return &service{
		dbClient:    dbClient,
		masterRepo:  masterRepo,
		catalogRepo: catalogRepo,
		rulesRepo:   rulesRepo,
		resolver:    resolver,
		groups:      groups,
		metrics:     m,
		places:      roundingPlaces,
	}, nil
}

// CalculateHybrid runs the full pipeline: scope resolution, material costing,
// rule composition, currency conversion. The result snapshots the id and
// version of every master-data record it consumed.
func (s *service) CalculateHybrid(ctx context.Context, input Input) (*Result, error) {
	started := time.Now()
	result, err := s.calculate(ctx, input)
	s.metrics.ObserveCalculation(input.Currency.String(), time.Since(started))
	switch {
	case err != nil:
		s.metrics.IncCalculation("error")
	case result.HasMissingPrices:
		s.metrics.IncCalculation("degraded")
	default:
		s.metrics.IncCalculation("ok")
	}
	return result, err
}

func (s *service) calculate(ctx context.Context, input Input) (*Result, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported currency %q", input.Currency))
	}
	if input.CustomerID == nil && input.CustomerGroupID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id or customer_group_id is required")
	}

	group, err := s.resolveScope(ctx, input)
	if err != nil {
		return nil, err
	}
	scope := masterdata.GroupScope(group.ID)

	product, err := s.catalogRepo.FindProductByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	var result *Result
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		snap := newSnapshot(s.masterRepo.WithTx(tx))

		bomItems, err := s.catalogRepo.WithTx(tx).ListBOM(ctx, product.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load bill of materials")
		}
		if len(bomItems) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "product has no bill of materials")
		}

		materialCosts, totalMaterial, err := resolveMaterialCosts(ctx, snap, scope, bomItems, input.Quantity)
		if err != nil {
			return err
		}

		fabCostPerUnit, err := s.resolveFabCost(ctx, snap, scope, product.Code)
		if err != nil {
			return err
		}
		sellingFactor, err := s.resolveSellingFactor(ctx, snap, scope, product.TubeSize)
		if err != nil {
			return err
		}

		matcher := rules.NewMatcher(s.rulesRepo.WithTx(tx))
		matched, err := matcher.Match(ctx, rules.MatchContext{
			CustomerGroupID: group.ID,
			ProductID:       product.ID,
			Quantity:        input.Quantity,
		})
		if err != nil {
			return err
		}

		inputs := &ruleInputs{sellingFactor: sellingFactor, fabCostPerUnit: fabCostPerUnit}
		applied, needsReview, err := applyRules(matched, inputs)
		if err != nil {
			return err
		}

		fabCost := inputs.fabCostPerUnit.Mul(input.Quantity)
		totalCost := totalMaterial.Add(fabCost)
		sellingPriceThb := totalCost.Mul(inputs.sellingFactor)

		converted, rate, err := convertCurrency(ctx, snap, scope, sellingPriceThb, input.Currency, s.places)
		if err != nil {
			return err
		}

		marginAmount := sellingPriceThb.Sub(totalCost)
		marginPercentage := decimal.Zero
		if !sellingPriceThb.IsZero() {
			marginPercentage = marginAmount.Mul(decimal.NewFromInt(100)).DivRound(sellingPriceThb, s.places)
		}

		hasMissing := false
		for _, cost := range materialCosts {
			if cost.PriceSource.Missing() {
				hasMissing = true
				break
			}
		}

		result = &Result{
			ProductID:                       product.ID,
			CustomerGroupID:                 group.ID,
			Quantity:                        input.Quantity,
			MaterialCosts:                   materialCosts,
			TotalMaterialCost:               totalMaterial,
			FabCostPerUnit:                  inputs.fabCostPerUnit,
			FabCost:                         fabCost,
			TotalCost:                       totalCost,
			SellingFactor:                   inputs.sellingFactor,
			SellingPriceThb:                 sellingPriceThb,
			ExchangeRate:                    rate,
			RequestedCurrency:               input.Currency,
			SellingPriceInRequestedCurrency: converted,
			MarginAmount:                    marginAmount,
			MarginPercentage:                marginPercentage,
			AppliedRules:                    applied,
			MasterDataVersions:              snap.versions,
			HasMissingPrices:                hasMissing,
			NeedsReview:                     needsReview,
			CalculatedAt:                    time.Now().UTC(),
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) resolveScope(ctx context.Context, input Input) (*models.CustomerGroup, error) {
	if input.CustomerID != nil {
		return s.resolver.ResolveGroup(ctx, *input.CustomerID)
	}

	group, err := s.groups.FindGroupByID(ctx, *input.CustomerGroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer group")
	}
	return group, nil
}

// resolveFabCost walks product code then the "default" key, group scope
// before global at each step.
func (s *service) resolveFabCost(ctx context.Context, snap *snapshot, scope masterdata.Scope, productCode string) (decimal.Decimal, error) {
	record, err := snap.resolveChain(ctx, enums.EntityTypeFabCost, productCode, scope)
	if err != nil {
		return decimal.Zero, err
	}
	if record == nil {
		record, err = snap.resolveChain(ctx, enums.EntityTypeFabCost, "default", scope)
		if err != nil {
			return decimal.Zero, err
		}
	}
	if record == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeConfiguration, "no fabrication cost configured for this product")
	}

	payload, err := masterdata.ParsePayload(enums.EntityTypeFabCost, record.Payload)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored fabrication cost no longer parses")
	}
	snap.noteUsed(record)
	return payload.(*masterdata.FabCostPayload).Cost, nil
}

func (s *service) resolveSellingFactor(ctx context.Context, snap *snapshot, scope masterdata.Scope, tubeSize string) (decimal.Decimal, error) {
	record, err := snap.resolveChain(ctx, enums.EntityTypeSellingFactor, tubeSize, scope)
	if err != nil {
		return decimal.Zero, err
	}
	if record == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("no selling factor configured for tube size %q", tubeSize))
	}

	payload, err := masterdata.ParsePayload(enums.EntityTypeSellingFactor, record.Payload)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored selling factor no longer parses")
	}
	snap.noteUsed(record)
	return payload.(*masterdata.SellingFactorPayload).Factor, nil
}
