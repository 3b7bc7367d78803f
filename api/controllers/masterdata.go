package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kittipat-ch/pricebench-backend/api/responses"
	"github.com/kittipat-ch/pricebench-backend/api/validators"
	"github.com/kittipat-ch/pricebench-backend/internal/masterdata"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/logger"
	"github.com/kittipat-ch/pricebench-backend/pkg/types"
)

type createDraftRequest struct {
	EntityKey     string          `json:"entity_key" validate:"required"`
	ScopeGroupID  *string         `json:"scope_group_id,omitempty" validate:"omitempty,uuid"`
	Payload       json.RawMessage `json:"payload" validate:"required"`
	EffectiveFrom *time.Time      `json:"effective_from,omitempty"`
	ChangeReason  string          `json:"change_reason,omitempty"`
	CreatedBy     string          `json:"created_by" validate:"required"`
}

type updateDraftRequest struct {
	Payload       *json.RawMessage `json:"payload,omitempty"`
	EffectiveFrom *time.Time       `json:"effective_from,omitempty"`
	ChangeReason  *string          `json:"change_reason,omitempty"`
}

type approveRequest struct {
	ApprovedBy string `json:"approved_by" validate:"required"`
}

type rollbackRequest struct {
	RequestedBy string `json:"requested_by" validate:"required"`
	Reason      string `json:"reason,omitempty"`
}

// CreateMasterDataDraft opens the next draft version of a lifecycle.
func CreateMasterDataDraft(svc masterdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityType, err := entityTypeFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createDraftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope, err := scopeFromString(payload.ScopeGroupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.CreateDraft(r.Context(), masterdata.CreateDraftInput{
			EntityType:    entityType,
			EntityKey:     strings.TrimSpace(payload.EntityKey),
			Scope:         scope,
			Payload:       types.JSON(payload.Payload),
			EffectiveFrom: payload.EffectiveFrom,
			ChangeReason:  payload.ChangeReason,
			CreatedBy:     payload.CreatedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// UpdateMasterDataDraft mutates an open draft in place.
func UpdateMasterDataDraft(svc masterdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, err := recordIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateDraftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := masterdata.UpdateDraftInput{
			EffectiveFrom: payload.EffectiveFrom,
			ChangeReason:  payload.ChangeReason,
		}
		if payload.Payload != nil {
			converted := types.JSON(*payload.Payload)
			input.Payload = &converted
		}

		record, err := svc.UpdateDraft(r.Context(), recordID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// DeleteMasterDataDraft discards an open draft.
func DeleteMasterDataDraft(svc masterdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, err := recordIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteDraft(r.Context(), recordID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ApproveMasterDataVersion promotes a draft to the active version.
func ApproveMasterDataVersion(svc masterdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, err := recordIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload approveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Approve(r.Context(), recordID, payload.ApprovedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// RollbackMasterDataVersion restores an archived version as a new draft.
func RollbackMasterDataVersion(svc masterdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, err := recordIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rollbackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Rollback(r.Context(), recordID, masterdata.RollbackInput{
			RequestedBy: payload.RequestedBy,
			Reason:      payload.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// GetMasterDataRecord loads one version by id.
func GetMasterDataRecord(svc masterdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID, err := recordIDFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := svc.GetRecord(r.Context(), recordID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// GetActiveMasterData returns the active version of one lifecycle. The scope
// is the exact one requested, not the group-to-global resolution chain the
// calculator uses.
func GetActiveMasterData(svc masterdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityType, err := entityTypeFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entityKey := strings.TrimSpace(r.URL.Query().Get("entity_key"))
		if entityKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "entity_key query parameter required"))
			return
		}

		scope, err := scopeFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetActive(r.Context(), entityType, entityKey, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// GetResolvedMasterData returns the record a calculation would consume for
// the given scope: group-scoped when present, global otherwise.
func GetResolvedMasterData(svc masterdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityType, err := entityTypeFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entityKey := strings.TrimSpace(r.URL.Query().Get("entity_key"))
		if entityKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "entity_key query parameter required"))
			return
		}

		scope, err := scopeFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.ResolveActive(r.Context(), entityType, entityKey, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// ListActiveMasterData lists every active record of an entity type in one
// scope.
func ListActiveMasterData(svc masterdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityType, err := entityTypeFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scope, err := scopeFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListActive(r.Context(), entityType, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// MasterDataHistory pages one lifecycle newest first.
func MasterDataHistory(svc masterdata.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityType, err := entityTypeFromURL(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entityKey := strings.TrimSpace(r.URL.Query().Get("entity_key"))
		if entityKey == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "entity_key query parameter required"))
			return
		}

		scope, err := scopeFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, parseErr := strconv.Atoi(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid limit"))
				return
			}
			limit = parsed
		}

		result, err := svc.History(r.Context(), masterdata.HistoryInput{
			EntityType: entityType,
			EntityKey:  entityKey,
			Scope:      scope,
			Limit:      limit,
			Cursor:     r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func entityTypeFromURL(r *http.Request) (enums.EntityType, error) {
	raw := chi.URLParam(r, "entityType")
	entityType, err := enums.ParseEntityType(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity type")
	}
	return entityType, nil
}

func recordIDFromURL(r *http.Request) (uuid.UUID, error) {
	recordID, err := uuid.Parse(chi.URLParam(r, "recordID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid record id")
	}
	return recordID, nil
}

func scopeFromQuery(r *http.Request) (masterdata.Scope, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("scope_group_id"))
	if raw == "" {
		return masterdata.GlobalScope(), nil
	}
	groupID, err := uuid.Parse(raw)
	if err != nil {
		return masterdata.Scope{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scope_group_id")
	}
	return masterdata.GroupScope(groupID), nil
}

func scopeFromString(raw *string) (masterdata.Scope, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return masterdata.GlobalScope(), nil
	}
	groupID, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return masterdata.Scope{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scope_group_id")
	}
	return masterdata.GroupScope(groupID), nil
}
