package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	"github.com/kittipat-ch/pricebench-backend/pkg/types"
)

// VersionedRecord is one immutable step in the history of a master-data
// entity. The (entity_type, entity_key, scope_group_id) triple addresses a
// single lifecycle; at most one row per triple is active at a time, enforced
// by a partial unique index.
type VersionedRecord struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	EntityType    enums.EntityType   `gorm:"column:entity_type;not null"`
	EntityKey     string             `gorm:"column:entity_key;not null"`
	ScopeGroupID  *uuid.UUID         `gorm:"column:scope_group_id;type:uuid"`
	Version       int                `gorm:"column:version;not null"`
	Status        enums.RecordStatus `gorm:"column:status;not null"`
	Payload       types.JSON         `gorm:"column:payload;type:jsonb;not null"`
	EffectiveFrom *time.Time         `gorm:"column:effective_from"`
	EffectiveTo   *time.Time         `gorm:"column:effective_to"`
	ApprovedBy    *string            `gorm:"column:approved_by"`
	ApprovedAt    *time.Time         `gorm:"column:approved_at"`
	ChangeReason  string             `gorm:"column:change_reason;not null"`
	CreatedBy     string             `gorm:"column:created_by;not null"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key so the model also works on the sqlite
// test databases, which have no gen_random_uuid default.
func (r *VersionedRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsDraft reports whether the record is still mutable.
func (r *VersionedRecord) IsDraft() bool {
	return r.Status == enums.RecordStatusDraft
}

// IsGlobal reports whether the record belongs to the global scope.
func (r *VersionedRecord) IsGlobal() bool {
	return r.ScopeGroupID == nil
}
