package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionedRecordsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_versioned_records.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no versioned records migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS versioned_records",
		"CHECK (version >= 1)",
		"CHECK (status IN ('draft', 'active', 'archived'))",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_versioned_records_lifecycle_version",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_versioned_records_single_active",
		"WHERE status = 'active'",
		"DROP TABLE IF EXISTS versioned_records",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
