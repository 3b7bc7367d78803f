package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kittipat-ch/pricebench-backend/api/responses"
	"github.com/kittipat-ch/pricebench-backend/api/validators"
	"github.com/kittipat-ch/pricebench-backend/internal/calculation"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/logger"
)

type hybridCalculationRequest struct {
	ProductID       string          `json:"product_id" validate:"required,uuid"`
	CustomerID      *string         `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	CustomerGroupID *string         `json:"customer_group_id,omitempty" validate:"omitempty,uuid"`
	Quantity        decimal.Decimal `json:"quantity"`
	Currency        string          `json:"currency,omitempty"`
}

// CalculateHybrid produces one hybrid price snapshot for a product, quantity
// and pricing scope.
func CalculateHybrid(svc calculation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload hybridCalculationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CalculateHybrid(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func (p hybridCalculationRequest) toInput() (calculation.Input, error) {
	productID, err := uuid.Parse(p.ProductID)
	if err != nil {
		return calculation.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	// required tags don't catch an absent decimal, its zero value is a
	// regular struct
	if !p.Quantity.IsPositive() {
		return calculation.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	input := calculation.Input{
		ProductID: productID,
		Quantity:  p.Quantity,
		Currency:  enums.CurrencyTHB,
	}

	if raw := strings.TrimSpace(p.Currency); raw != "" {
		currency, parseErr := enums.ParseCurrency(raw)
		if parseErr != nil {
			return calculation.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid currency")
		}
		input.Currency = currency
	}

	if p.CustomerID != nil {
		customerID, parseErr := uuid.Parse(*p.CustomerID)
		if parseErr != nil {
			return calculation.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid customer id")
		}
		input.CustomerID = &customerID
	}
	if p.CustomerGroupID != nil {
		groupID, parseErr := uuid.Parse(*p.CustomerGroupID)
		if parseErr != nil {
			return calculation.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid customer group id")
		}
		input.CustomerGroupID = &groupID
	}

	return input, nil
}
