package masterdata

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
)

// RecordDTO is the API shape of a versioned record.
type RecordDTO struct {
	ID            uuid.UUID          `json:"id"`
	EntityType    enums.EntityType   `json:"entity_type"`
	EntityKey     string             `json:"entity_key"`
	ScopeGroupID  *uuid.UUID         `json:"scope_group_id,omitempty"`
	Version       int                `json:"version"`
	Status        enums.RecordStatus `json:"status"`
	Payload       json.RawMessage    `json:"payload"`
	EffectiveFrom *time.Time         `json:"effective_from,omitempty"`
	EffectiveTo   *time.Time         `json:"effective_to,omitempty"`
	ApprovedBy    *string            `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time         `json:"approved_at,omitempty"`
	ChangeReason  string             `json:"change_reason"`
	CreatedBy     string             `json:"created_by"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewRecordDTO maps a model to its API shape.
func NewRecordDTO(record *models.VersionedRecord) *RecordDTO {
	if record == nil {
		return nil
	}
	return &RecordDTO{
		ID:            record.ID,
		EntityType:    record.EntityType,
		EntityKey:     record.EntityKey,
		ScopeGroupID:  record.ScopeGroupID,
		Version:       record.Version,
		Status:        record.Status,
		Payload:       json.RawMessage(record.Payload),
		EffectiveFrom: record.EffectiveFrom,
		EffectiveTo:   record.EffectiveTo,
		ApprovedBy:    record.ApprovedBy,
		ApprovedAt:    record.ApprovedAt,
		ChangeReason:  record.ChangeReason,
		CreatedBy:     record.CreatedBy,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

// HistoryResult is one page of a lifecycle history.
type HistoryResult struct {
	Records    []RecordDTO `json:"records"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}
