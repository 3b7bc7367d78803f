package masterdata

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	"github.com/kittipat-ch/pricebench-backend/pkg/pagination"
)

// Repository persists versioned master-data records.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) scoped(q *gorm.DB, scope Scope) *gorm.DB {
	if scope.GroupID == nil {
		return q.Where("scope_group_id IS NULL")
	}
	return q.Where("scope_group_id = ?", *scope.GroupID)
}

// lockForUpdate adds a row lock on dialects that support it. The sqlite test
// databases run single-writer, so skipping the clause there is safe.
func (r *Repository) lockForUpdate(q *gorm.DB) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// Create inserts a new versioned record.
func (r *Repository) Create(ctx context.Context, record *models.VersionedRecord) (*models.VersionedRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Save persists all fields of an existing record.
func (r *Repository) Save(ctx context.Context, record *models.VersionedRecord) (*models.VersionedRecord, error) {
	if err := r.db.WithContext(ctx).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a record by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.VersionedRecord{}, "id = ?", id).Error
}

// FindByID loads a record by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VersionedRecord, error) {
	var record models.VersionedRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByIDForUpdate loads a record by primary key under a row lock.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.VersionedRecord, error) {
	var record models.VersionedRecord
	q := r.lockForUpdate(r.db.WithContext(ctx))
	if err := q.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetActive returns the single active record of a lifecycle, or
// gorm.ErrRecordNotFound.
func (r *Repository) GetActive(ctx context.Context, entityType enums.EntityType, entityKey string, scope Scope) (*models.VersionedRecord, error) {
	var record models.VersionedRecord
	q := r.scoped(r.db.WithContext(ctx), scope).
		Where("entity_type = ? AND entity_key = ? AND status = ?", entityType, entityKey, enums.RecordStatusActive)
	if err := q.First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetActiveForUpdate is GetActive under a row lock; concurrent approvals of
// the same lifecycle serialize here.
func (r *Repository) GetActiveForUpdate(ctx context.Context, entityType enums.EntityType, entityKey string, scope Scope) (*models.VersionedRecord, error) {
	var record models.VersionedRecord
	q := r.lockForUpdate(r.scoped(r.db.WithContext(ctx), scope)).
		Where("entity_type = ? AND entity_key = ? AND status = ?", entityType, entityKey, enums.RecordStatusActive)
	if err := q.First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// MaxVersion returns the highest version in a lifecycle, zero when none exist.
func (r *Repository) MaxVersion(ctx context.Context, entityType enums.EntityType, entityKey string, scope Scope) (int, error) {
	var max *int
	q := r.scoped(r.db.WithContext(ctx).Model(&models.VersionedRecord{}), scope).
		Where("entity_type = ? AND entity_key = ?", entityType, entityKey)
	if err := q.Select("MAX(version)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// ListHistory pages a lifecycle newest version first.
func (r *Repository) ListHistory(ctx context.Context, entityType enums.EntityType, entityKey string, scope Scope, limit int, cursor *pagination.Cursor) ([]models.VersionedRecord, error) {
	q := r.scoped(r.db.WithContext(ctx), scope).
		Where("entity_type = ? AND entity_key = ?", entityType, entityKey).
		Order("version DESC").
		Limit(limit)
	if cursor != nil {
		q = q.Where("version < ?", cursor.Version)
	}

	var records []models.VersionedRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ResolveActive walks the lookup chain for one entity: the group-scoped
// record wins, the global record backs it up. Callers that need a consistent
// snapshot bind the repository to a transaction first.
func (r *Repository) ResolveActive(ctx context.Context, entityType enums.EntityType, entityKey string, scope Scope) (*models.VersionedRecord, error) {
	record, err := r.GetActive(ctx, entityType, entityKey, scope)
	if err == nil || scope.IsGlobal() {
		return record, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return r.GetActive(ctx, entityType, entityKey, GlobalScope())
}

// ListActiveByType returns every active record of an entity type within one
// scope, keyed for bulk lookup.
func (r *Repository) ListActiveByType(ctx context.Context, entityType enums.EntityType, scope Scope) ([]models.VersionedRecord, error) {
	var records []models.VersionedRecord
	q := r.scoped(r.db.WithContext(ctx), scope).
		Where("entity_type = ? AND status = ?", entityType, enums.RecordStatusActive).
		Order("entity_key ASC")
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
