package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kittipat-ch/pricebench-backend/api/responses"
	"github.com/kittipat-ch/pricebench-backend/api/validators"
	"github.com/kittipat-ch/pricebench-backend/internal/rules"
	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/logger"
	"github.com/kittipat-ch/pricebench-backend/pkg/types"
)

type createRuleRequest struct {
	Name       string                 `json:"name" validate:"required"`
	Priority   int                    `json:"priority"`
	IsActive   *bool                  `json:"is_active,omitempty"`
	Conditions *models.RuleConditions `json:"conditions,omitempty"`
	RuleType   string                 `json:"rule_type" validate:"required"`
	Field      string                 `json:"field,omitempty"`
	Value      json.RawMessage        `json:"value,omitempty"`
}

type updateRuleRequest struct {
	Name       *string                `json:"name,omitempty"`
	Priority   *int                   `json:"priority,omitempty"`
	IsActive   *bool                  `json:"is_active,omitempty"`
	Conditions *models.RuleConditions `json:"conditions,omitempty"`
	RuleType   *string                `json:"rule_type,omitempty"`
	Field      *string                `json:"field,omitempty"`
	Value      *json.RawMessage       `json:"value,omitempty"`
}

// CreatePricingRule registers a new rule.
func CreatePricingRule(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ruleType, err := enums.ParseRuleType(payload.RuleType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule type"))
			return
		}

		field := enums.RuleFieldNone
		if strings.TrimSpace(payload.Field) != "" {
			field, err = enums.ParseRuleField(payload.Field)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule field"))
				return
			}
		}

		input := rules.CreateRuleInput{
			Name:     strings.TrimSpace(payload.Name),
			Priority: payload.Priority,
			IsActive: true,
			RuleType: ruleType,
			Field:    field,
			Value:    types.JSON(payload.Value),
		}
		if payload.IsActive != nil {
			input.IsActive = *payload.IsActive
		}
		if payload.Conditions != nil {
			input.Conditions = *payload.Conditions
		}

		rule, err := svc.CreateRule(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rule)
	}
}

// UpdatePricingRule mutates an existing rule.
func UpdatePricingRule(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := ruleIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := rules.UpdateRuleInput{
			Name:       payload.Name,
			Priority:   payload.Priority,
			IsActive:   payload.IsActive,
			Conditions: payload.Conditions,
		}
		if payload.RuleType != nil {
			ruleType, parseErr := enums.ParseRuleType(*payload.RuleType)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid rule type"))
				return
			}
			input.RuleType = &ruleType
		}
		if payload.Field != nil {
			field := enums.RuleFieldNone
			if strings.TrimSpace(*payload.Field) != "" {
				field, err = enums.ParseRuleField(*payload.Field)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule field"))
					return
				}
			}
			input.Field = &field
		}
		if payload.Value != nil {
			converted := types.JSON(*payload.Value)
			input.Value = &converted
		}

		rule, err := svc.UpdateRule(r.Context(), ruleID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rule)
	}
}

// DeletePricingRule removes a rule.
func DeletePricingRule(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := ruleIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteRule(r.Context(), ruleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetPricingRule loads one rule by id.
func GetPricingRule(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID, err := ruleIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rule, err := svc.GetRule(r.Context(), ruleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rule)
	}
}

// ListPricingRules returns rules ordered by priority. Pass active_only=true
// to restrict to rules the calculator would consider.
func ListPricingRules(svc rules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := strings.EqualFold(r.URL.Query().Get("active_only"), "true")
		list, err := svc.ListRules(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ruleIDFromURL(r *http.Request) (uuid.UUID, error) {
	ruleID, err := uuid.Parse(chi.URLParam(r, "ruleID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid rule id")
	}
	return ruleID, nil
}
