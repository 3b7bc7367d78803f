package calculation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/internal/masterdata"
	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
)

// snapshot memoizes active-record reads for one calculation run. Each
// (entity, scope) pair is read from the database at most once, so a
// concurrent approval cannot change a value mid-run; misses are cached too.
type snapshot struct {
	repo     *masterdata.Repository
	records  map[string]*models.VersionedRecord
	versions map[string]VersionRef
}

func newSnapshot(repo *masterdata.Repository) *snapshot {
	return &snapshot{
		repo:     repo,
		records:  make(map[string]*models.VersionedRecord),
		versions: make(map[string]VersionRef),
	}
}

// resolveIn loads the active record for an exact scope. A missing record
// returns (nil, nil).
func (s *snapshot) resolveIn(ctx context.Context, entityType enums.EntityType, entityKey string, scope masterdata.Scope) (*models.VersionedRecord, error) {
	cacheKey := fmt.Sprintf("%s:%s:%s", entityType, entityKey, scope)
	if record, ok := s.records[cacheKey]; ok {
		return record, nil
	}

	record, err := s.repo.GetActive(ctx, entityType, entityKey, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.records[cacheKey] = nil
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load active record")
	}
	s.records[cacheKey] = record
	return record, nil
}

// resolveChain tries the group scope first and falls back to global.
func (s *snapshot) resolveChain(ctx context.Context, entityType enums.EntityType, entityKey string, group masterdata.Scope) (*models.VersionedRecord, error) {
	record, err := s.resolveIn(ctx, entityType, entityKey, group)
	if err != nil || record != nil {
		return record, err
	}
	if group.IsGlobal() {
		return nil, nil
	}
	return s.resolveIn(ctx, entityType, entityKey, masterdata.GlobalScope())
}

// noteUsed pins a consumed record into the version snapshot of the result.
func (s *snapshot) noteUsed(record *models.VersionedRecord) {
	if record == nil {
		return
	}
	key := fmt.Sprintf("%s:%s", record.EntityType, record.EntityKey)
	s.versions[key] = VersionRef{RecordID: record.ID, Version: record.Version}
}
