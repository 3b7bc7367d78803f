package calculation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kittipat-ch/pricebench-backend/internal/masterdata"
	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
)

// resolveMaterialCosts prices every bill-of-materials item. Per item the
// lookup order is group LME, group standard, global LME, global standard;
// LME wins within a scope so commodity-indexed pricing overrides the flat
// standard price for the same material. A material with no price anywhere
// degrades to source none and unit price zero instead of failing the run; a
// line whose unit differs from its material's pricing unit fails outright,
// since a kg price applied to a gram quantity is silent mispricing.
func resolveMaterialCosts(ctx context.Context, snap *snapshot, group masterdata.Scope, bomItems []models.BOMItem, productionQty decimal.Decimal) ([]MaterialCost, decimal.Decimal, error) {
	costs := make([]MaterialCost, 0, len(bomItems))
	total := decimal.Zero

	for _, item := range bomItems {
		if item.RawMaterial == nil {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "bom item is missing its raw material")
		}
		if item.Unit != item.RawMaterial.Unit {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("bom item for %s is in %s but the material is priced per %s", item.RawMaterial.Code, item.Unit, item.RawMaterial.Unit))
		}

		unitPrice, source, err := lookupUnitPrice(ctx, snap, group, item.RawMaterial)
		if err != nil {
			return nil, decimal.Zero, err
		}

		costPerUnit := unitPrice.Mul(item.Quantity)
		lineTotal := costPerUnit.Mul(productionQty)
		costs = append(costs, MaterialCost{
			RawMaterialID:   item.RawMaterialID,
			RawMaterialCode: item.RawMaterial.Code,
			BOMQuantity:     item.Quantity,
			Unit:            item.Unit,
			UnitPrice:       unitPrice,
			PriceSource:     source,
			CostPerUnit:     costPerUnit,
			TotalCost:       lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return costs, total, nil
}

func lookupUnitPrice(ctx context.Context, snap *snapshot, group masterdata.Scope, material *models.RawMaterial) (decimal.Decimal, enums.PriceSource, error) {
	type attempt struct {
		entityType enums.EntityType
		entityKey  string
		scope      masterdata.Scope
		source     enums.PriceSource
	}

	attempts := make([]attempt, 0, 4)
	if !group.IsGlobal() {
		if material.ItemGroup != "" {
			attempts = append(attempts, attempt{enums.EntityTypeLmePrice, material.ItemGroup, group, enums.PriceSourceGroupLme})
		}
		attempts = append(attempts, attempt{enums.EntityTypeStandardPrice, material.Code, group, enums.PriceSourceGroupStandard})
	}
	if material.ItemGroup != "" {
		attempts = append(attempts, attempt{enums.EntityTypeLmePrice, material.ItemGroup, masterdata.GlobalScope(), enums.PriceSourceGlobalLme})
	}
	attempts = append(attempts, attempt{enums.EntityTypeStandardPrice, material.Code, masterdata.GlobalScope(), enums.PriceSourceGlobalStandard})

	for _, a := range attempts {
		record, err := snap.resolveIn(ctx, a.entityType, a.entityKey, a.scope)
		if err != nil {
			return decimal.Zero, enums.PriceSourceNone, err
		}
		if record == nil {
			continue
		}

		price, err := unitPriceFromRecord(a.entityType, record)
		if err != nil {
			return decimal.Zero, enums.PriceSourceNone, err
		}
		snap.noteUsed(record)
		return price, a.source, nil
	}
	return decimal.Zero, enums.PriceSourceNone, nil
}

func unitPriceFromRecord(entityType enums.EntityType, record *models.VersionedRecord) (decimal.Decimal, error) {
	payload, err := masterdata.ParsePayload(entityType, record.Payload)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored payload no longer parses")
	}
	switch p := payload.(type) {
	case *masterdata.LmePricePayload:
		return p.PricePerUnit, nil
	case *masterdata.StandardPricePayload:
		return p.PricePerUnit, nil
	default:
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "record does not carry a material price")
	}
}
