package masterdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/db"
	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/metrics"
	"github.com/kittipat-ch/pricebench-backend/pkg/pagination"
	"github.com/kittipat-ch/pricebench-backend/pkg/types"
)

// Service exposes the master-data lifecycle: drafts are authored, approved
// into the single active version, and superseded versions are archived.
type Service interface {
	CreateDraft(ctx context.Context, input CreateDraftInput) (*RecordDTO, error)
	UpdateDraft(ctx context.Context, id uuid.UUID, input UpdateDraftInput) (*RecordDTO, error)
	DeleteDraft(ctx context.Context, id uuid.UUID) error
	Approve(ctx context.Context, id uuid.UUID, approvedBy string) (*RecordDTO, error)
	Rollback(ctx context.Context, id uuid.UUID, input RollbackInput) (*RecordDTO, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*RecordDTO, error)
	GetActive(ctx context.Context, entityType enums.EntityType, entityKey string, scope Scope) (*RecordDTO, error)
	ResolveActive(ctx context.Context, entityType enums.EntityType, entityKey string, scope Scope) (*RecordDTO, error)
	ListActive(ctx context.Context, entityType enums.EntityType, scope Scope) ([]RecordDTO, error)
	History(ctx context.Context, input HistoryInput) (*HistoryResult, error)
}

// CreateDraftInput holds the validated payload to open a new draft version.
type CreateDraftInput struct {
	EntityType    enums.EntityType
	EntityKey     string
	Scope         Scope
	Payload       types.JSON
	EffectiveFrom *time.Time
	ChangeReason  string
	CreatedBy     string
}

// UpdateDraftInput holds optional mutation values for an open draft.
type UpdateDraftInput struct {
	Payload       *types.JSON
	EffectiveFrom *time.Time
	ChangeReason  *string
}

// RollbackInput names who is restoring an archived version and why.
type RollbackInput struct {
	RequestedBy string
	Reason      string
}

// HistoryInput selects one lifecycle and a page window.
type HistoryInput struct {
	EntityType enums.EntityType
	EntityKey  string
	Scope      Scope
	Limit      int
	Cursor     string
}

// service implements the master-data service.
type service struct {
	repo     *Repository
	dbClient *db.Client
	metrics  *metrics.CalculationMetrics
}

// NewService constructs a master-data service instance. Metrics may be nil.
func NewService(repo *Repository, dbClient *db.Client, m *metrics.CalculationMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("master-data repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, metrics: m}, nil
}

// CreateDraft validates the payload and opens the next version of the
// lifecycle as a draft. Versions are assigned inside the transaction so they
// stay gapless under concurrency; the unique version index backstops races.
func (s *service) CreateDraft(ctx context.Context, input CreateDraftInput) (*RecordDTO, error) {
	if !input.EntityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown entity type %q", input.EntityType))
	}
	if err := ValidateEntityKey(input.EntityType, input.EntityKey); err != nil {
		return nil, err
	}
	if input.CreatedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "created_by is required")
	}
	if _, err := ParsePayload(input.EntityType, input.Payload); err != nil {
		return nil, err
	}

	var created *models.VersionedRecord
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		maxVersion, err := txRepo.MaxVersion(ctx, input.EntityType, input.EntityKey, input.Scope)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: max version")
		}

		record := &models.VersionedRecord{
			EntityType:    input.EntityType,
			EntityKey:     input.EntityKey,
			ScopeGroupID:  input.Scope.GroupID,
			Version:       maxVersion + 1,
			Status:        enums.RecordStatusDraft,
			Payload:       input.Payload,
			EffectiveFrom: input.EffectiveFrom,
			ChangeReason:  input.ChangeReason,
			CreatedBy:     input.CreatedBy,
		}
		created, err = txRepo.Create(ctx, record)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_versioned_records_lifecycle_version") {
				return pkgerrors.New(pkgerrors.CodeConflict, "a concurrent draft claimed this version, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert draft")
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return NewRecordDTO(created), nil
}

// UpdateDraft mutates an open draft. Active and archived versions are
// immutable.
func (s *service) UpdateDraft(ctx context.Context, id uuid.UUID, input UpdateDraftInput) (*RecordDTO, error) {
	var updated *models.VersionedRecord
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := txRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load record")
		}
		if !record.IsDraft() {
			return pkgerrors.New(pkgerrors.CodeConflict, "only draft records can be modified")
		}

		if input.Payload != nil {
			if _, err := ParsePayload(record.EntityType, *input.Payload); err != nil {
				return err
			}
			record.Payload = *input.Payload
		}
		if input.EffectiveFrom != nil {
			record.EffectiveFrom = input.EffectiveFrom
		}
		if input.ChangeReason != nil {
			record.ChangeReason = *input.ChangeReason
		}

		updated, err = txRepo.Save(ctx, record)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update draft")
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return NewRecordDTO(updated), nil
}

// DeleteDraft discards an open draft. The version number it held is not
// reused.
func (s *service) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := txRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load record")
		}
		if !record.IsDraft() {
			return pkgerrors.New(pkgerrors.CodeValidation, "only draft records can be deleted")
		}
		if err := txRepo.Delete(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete draft")
		}
		return nil
	})
}

// Approve promotes a draft to the single active version of its lifecycle and
// archives the version it replaces. The whole swap is one transaction; a
// lifecycle whose active record changed since the caller last read it fails
// with a conflict instead of silently double-archiving.
func (s *service) Approve(ctx context.Context, id uuid.UUID, approvedBy string) (*RecordDTO, error) {
	if approvedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "approved_by is required")
	}

	record, err := s.approve(ctx, id, approvedBy)
	if err != nil {
		outcome := "error"
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			outcome = "conflict"
		}
		if record != nil {
			s.metrics.IncApproval(record.EntityType.String(), outcome)
		}
		return nil, err
	}
	s.metrics.IncApproval(record.EntityType.String(), "success")
	return NewRecordDTO(record), nil
}

func (s *service) approve(ctx context.Context, id uuid.UUID, approvedBy string) (*models.VersionedRecord, error) {
	// Read before the transaction so a concurrent approval that lands between
	// this read and the locked one below is detected as a changed active id.
	priorActiveID, draftSnapshot, err := s.readApprovalState(ctx, id)
	if err != nil {
		return nil, err
	}

	approved, err := s.approveAgainst(ctx, id, approvedBy, priorActiveID)
	if err != nil {
		return draftSnapshot, err
	}
	return approved, nil
}

// approveAgainst runs the swap transaction. priorActiveID is the lifecycle's
// active id as the caller last saw it; a locked read that disagrees means
// another approval landed in between, and the swap fails with a conflict.
func (s *service) approveAgainst(ctx context.Context, id uuid.UUID, approvedBy string, priorActiveID *uuid.UUID) (*models.VersionedRecord, error) {
	var approved *models.VersionedRecord
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		draft, err := txRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load draft")
		}
		if !draft.IsDraft() {
			return pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
		}

		scope := Scope{GroupID: draft.ScopeGroupID}
		current, err := txRepo.GetActiveForUpdate(ctx, draft.EntityType, draft.EntityKey, scope)
		switch {
		case err == nil:
			if priorActiveID == nil || current.ID != *priorActiveID {
				return pkgerrors.New(pkgerrors.CodeConflict, "another approval is in flight for this lifecycle")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if priorActiveID != nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "another approval is in flight for this lifecycle")
			}
			current = nil
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load active record")
		}

		now := time.Now().UTC()
		if current != nil {
			current.Status = enums.RecordStatusArchived
			current.EffectiveTo = &now
			if _, err := txRepo.Save(ctx, current); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: archive active record")
			}
		}

		draft.Status = enums.RecordStatusActive
		draft.ApprovedBy = &approvedBy
		draft.ApprovedAt = &now
		if draft.EffectiveFrom == nil {
			draft.EffectiveFrom = &now
		}
		approved, err = txRepo.Save(ctx, draft)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_versioned_records_single_active") {
				return pkgerrors.New(pkgerrors.CodeConflict, "another approval is in flight for this lifecycle")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: activate draft")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return approved, nil
}

// readApprovalState captures the draft and the current active id of its
// lifecycle without locking.
func (s *service) readApprovalState(ctx context.Context, id uuid.UUID) (*uuid.UUID, *models.VersionedRecord, error) {
	draft, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load draft")
	}

	scope := Scope{GroupID: draft.ScopeGroupID}
	active, err := s.repo.GetActive(ctx, draft.EntityType, draft.EntityKey, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, draft, nil
		}
		return nil, draft, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load active record")
	}
	return &active.ID, draft, nil
}

// Rollback restores an archived version by opening a new draft with its
// payload. History is never rewritten; the restored content still goes
// through approval.
func (s *service) Rollback(ctx context.Context, id uuid.UUID, input RollbackInput) (*RecordDTO, error) {
	if input.RequestedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested_by is required")
	}

	var created *models.VersionedRecord
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		target, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load record")
		}
		if target.Status != enums.RecordStatusArchived {
			return pkgerrors.New(pkgerrors.CodeConflict, "only archived versions can be restored")
		}

		scope := Scope{GroupID: target.ScopeGroupID}
		maxVersion, err := txRepo.MaxVersion(ctx, target.EntityType, target.EntityKey, scope)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: max version")
		}

		reason := input.Reason
		if reason == "" {
			reason = fmt.Sprintf("rollback to version %d", target.Version)
		}

		record := &models.VersionedRecord{
			EntityType:   target.EntityType,
			EntityKey:    target.EntityKey,
			ScopeGroupID: target.ScopeGroupID,
			Version:      maxVersion + 1,
			Status:       enums.RecordStatusDraft,
			Payload:      target.Payload,
			ChangeReason: reason,
			CreatedBy:    input.RequestedBy,
		}
		created, err = txRepo.Create(ctx, record)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_versioned_records_lifecycle_version") {
				return pkgerrors.New(pkgerrors.CodeConflict, "a concurrent draft claimed this version, retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert rollback draft")
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return NewRecordDTO(created), nil
}

// GetRecord loads a single version by id.
func (s *service) GetRecord(ctx context.Context, id uuid.UUID) (*RecordDTO, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load record")
	}
	return NewRecordDTO(record), nil
}

// GetActive returns the active version of one lifecycle in the exact scope.
func (s *service) GetActive(ctx context.Context, entityType enums.EntityType, entityKey string, scope Scope) (*RecordDTO, error) {
	record, err := s.repo.GetActive(ctx, entityType, entityKey, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active record for this entity")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load active record")
	}
	return NewRecordDTO(record), nil
}

// ResolveActive returns the record a calculation would consume: the
// group-scoped active version when one exists, otherwise the global one.
func (s *service) ResolveActive(ctx context.Context, entityType enums.EntityType, entityKey string, scope Scope) (*RecordDTO, error) {
	record, err := s.repo.ResolveActive(ctx, entityType, entityKey, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active record for this entity")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve active record")
	}
	return NewRecordDTO(record), nil
}

// ListActive returns every active record of one entity type in the exact
// scope, ordered by entity key.
func (s *service) ListActive(ctx context.Context, entityType enums.EntityType, scope Scope) ([]RecordDTO, error) {
	if !entityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown entity type %q", entityType))
	}
	records, err := s.repo.ListActiveByType(ctx, entityType, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list active records")
	}
	result := make([]RecordDTO, 0, len(records))
	for i := range records {
		result = append(result, *NewRecordDTO(&records[i]))
	}
	return result, nil
}

// History pages the full lifecycle of one entity, newest version first.
func (s *service) History(ctx context.Context, input HistoryInput) (*HistoryResult, error) {
	if !input.EntityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown entity type %q", input.EntityType))
	}
	if input.EntityKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity key is required")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	var cursor *pagination.Cursor
	if input.Cursor != "" {
		parsed, err := pagination.ParseCursor(input.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	records, err := s.repo.ListHistory(ctx, input.EntityType, input.EntityKey, input.Scope, pagination.LimitWithBuffer(limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list history")
	}

	result := &HistoryResult{Records: make([]RecordDTO, 0, len(records))}
	hasMore := len(records) > limit
	if hasMore {
		records = records[:limit]
	}
	for i := range records {
		result.Records = append(result.Records, *NewRecordDTO(&records[i]))
	}
	if hasMore && len(records) > 0 {
		last := records[len(records)-1]
		next := pagination.EncodeCursor(pagination.Cursor{Version: last.Version, ID: last.ID})
		result.NextCursor = &next
	}
	return result, nil
}
