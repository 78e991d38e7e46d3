package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkajic20/smart-charger-backend/internal/db"
	"github.com/mkajic20/smart-charger-backend/internal/db/dbtest"
	"github.com/mkajic20/smart-charger-backend/internal/model"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := db.Open("oracle", "")
	assert.ErrorContains(t, err, "unsupported db driver")
}

func TestMigrate_IsRepeatable(t *testing.T) {
	gormDB := dbtest.Open(t)

	require.NoError(t, db.Migrate(gormDB))

	var roles []model.Role
	require.NoError(t, gormDB.Order("id").Find(&roles).Error)
	require.Len(t, roles, 2)
	assert.Equal(t, model.RoleAdmin, roles[0].ID)
	assert.Equal(t, model.RoleCustomer, roles[1].ID)
}

func TestReset_DropsTables(t *testing.T) {
	gormDB := dbtest.Open(t)

	require.NoError(t, db.Reset(gormDB))
	for _, m := range db.Models() {
		assert.False(t, gormDB.Migrator().HasTable(m))
	}

	require.NoError(t, db.Migrate(gormDB))
	assert.True(t, gormDB.Migrator().HasTable(&model.Event{}))
}
