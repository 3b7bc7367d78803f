package calculation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kittipat-ch/pricebench-backend/internal/masterdata"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
)

// convertCurrency turns a THB amount into the requested currency using the
// active exchange rate, group scope first. THB is the identity conversion.
// A missing rate is a hard failure; silently pricing in the wrong currency
// would be a correctness bug.
func convertCurrency(ctx context.Context, snap *snapshot, group masterdata.Scope, amountThb decimal.Decimal, currency enums.Currency, places int32) (decimal.Decimal, decimal.Decimal, error) {
	if currency.IsBase() {
		return amountThb, decimal.NewFromInt(1), nil
	}

	record, err := snap.resolveChain(ctx, enums.EntityTypeExchangeRate, currency.String(), group)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if record == nil {
		return decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeCurrency, fmt.Sprintf("no active exchange rate for %s", currency))
	}

	payload, err := masterdata.ParsePayload(enums.EntityTypeExchangeRate, record.Payload)
	if err != nil {
		return decimal.Zero, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stored exchange rate no longer parses")
	}
	rate := payload.(*masterdata.ExchangeRatePayload).Rate
	snap.noteUsed(record)

	return amountThb.DivRound(rate, places), rate, nil
}
