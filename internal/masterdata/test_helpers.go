package masterdata

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/db"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	"github.com/kittipat-ch/pricebench-backend/pkg/types"
)

func setupMasterdataTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	versionedRecords := `
CREATE TABLE IF NOT EXISTS versioned_records (
  id TEXT PRIMARY KEY,
  entity_type TEXT NOT NULL,
  entity_key TEXT NOT NULL,
  scope_group_id TEXT,
  version INTEGER NOT NULL,
  status TEXT NOT NULL,
  payload TEXT NOT NULL,
  effective_from DATETIME,
  effective_to DATETIME,
  approved_by TEXT,
  approved_at DATETIME,
  change_reason TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	lifecycleVersion := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_versioned_records_lifecycle_version
  ON versioned_records (entity_type, entity_key, COALESCE(scope_group_id, ''), version);`
	singleActive := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_versioned_records_single_active
  ON versioned_records (entity_type, entity_key, COALESCE(scope_group_id, ''))
  WHERE status = 'active';`

	require.NoError(t, conn.Exec(versionedRecords).Error)
	require.NoError(t, conn.Exec(lifecycleVersion).Error)
	require.NoError(t, conn.Exec(singleActive).Error)
	return conn
}

func newTestService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	client, err := db.NewWithConn(conn)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), client, nil)
	require.NoError(t, err)
	return svc
}

func payloadJSON(t *testing.T, v any) types.JSON {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return types.JSON(raw)
}

func uniqueKey(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

func mustCreateDraft(t *testing.T, svc Service, entityType enums.EntityType, entityKey string, scope Scope, payload any) *RecordDTO {
	t.Helper()

	draft, err := svc.CreateDraft(context.Background(), CreateDraftInput{
		EntityType:   entityType,
		EntityKey:    entityKey,
		Scope:        scope,
		Payload:      payloadJSON(t, payload),
		ChangeReason: "test draft",
		CreatedBy:    "tester",
	})
	require.NoError(t, err)
	return draft
}

func mustApprove(t *testing.T, svc Service, id uuid.UUID) *RecordDTO {
	t.Helper()

	approved, err := svc.Approve(context.Background(), id, "approver")
	require.NoError(t, err)
	return approved
}
