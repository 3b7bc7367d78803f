package customers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kittipat-ch/pricebench-backend/pkg/db/models"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
)

func setupCustomersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	customerGroups := `
CREATE TABLE IF NOT EXISTS customer_groups (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	customers := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL,
  name TEXT NOT NULL,
  customer_group_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(customerGroups).Error)
	require.NoError(t, conn.Exec(customers).Error)
	return conn
}

func mustCreateGroup(t *testing.T, conn *gorm.DB, name string, isDefault bool) *models.CustomerGroup {
	t.Helper()

	group := &models.CustomerGroup{Name: name, IsDefault: isDefault, IsActive: true}
	require.NoError(t, conn.Create(group).Error)
	return group
}

func mustCreateCustomer(t *testing.T, conn *gorm.DB, code string, groupID *uuid.UUID) *models.Customer {
	t.Helper()

	customer := &models.Customer{Code: code, Name: "Customer " + code, CustomerGroupID: groupID}
	require.NoError(t, conn.Create(customer).Error)
	return customer
}

func TestResolveGroupPrefersAssignedGroup(t *testing.T) {
	conn := setupCustomersTestDB(t)
	resolver, err := NewResolver(NewRepository(conn))
	require.NoError(t, err)

	mustCreateGroup(t, conn, "General", true)
	oem := mustCreateGroup(t, conn, "OEM", false)
	customer := mustCreateCustomer(t, conn, "C-100", &oem.ID)

	group, err := resolver.ResolveGroup(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, oem.ID, group.ID)
}

func TestResolveGroupFallsBackToDefault(t *testing.T) {
	conn := setupCustomersTestDB(t)
	resolver, err := NewResolver(NewRepository(conn))
	require.NoError(t, err)

	general := mustCreateGroup(t, conn, "General", true)
	customer := mustCreateCustomer(t, conn, "C-200", nil)

	group, err := resolver.ResolveGroup(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, general.ID, group.ID)
}

func TestResolveGroupWithoutDefaultIsConfigurationError(t *testing.T) {
	conn := setupCustomersTestDB(t)
	resolver, err := NewResolver(NewRepository(conn))
	require.NoError(t, err)

	customer := mustCreateCustomer(t, conn, "C-300", nil)

	_, err = resolver.ResolveGroup(context.Background(), customer.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfiguration))
}

func TestResolveGroupUnknownCustomer(t *testing.T) {
	conn := setupCustomersTestDB(t)
	resolver, err := NewResolver(NewRepository(conn))
	require.NoError(t, err)

	_, err = resolver.ResolveGroup(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
