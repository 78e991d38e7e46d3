package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkajic20/smart-charger-backend/internal/auth"
	"github.com/mkajic20/smart-charger-backend/internal/db/dbtest"
	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

const seedYAML = `
admin:
  first_name: Admin
  last_name: Root
  email: admin@example.com
  password: admin123
chargers:
  - name: Centar
    latitude: 46.30
    longitude: 16.33
  - name: Depot
    latitude: 45.81
    longitude: 15.98
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	data, err := Load(writeSeed(t, seedYAML))
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", data.Admin.Email)
	require.Len(t, data.Chargers, 2)
	assert.Equal(t, 45.81, data.Chargers[1].Latitude)

	_, err = Load(writeSeed(t, "admin: ["))
	assert.Error(t, err)
}

func TestRun_IsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	store := repository.NewStore(db)
	hasher := auth.NewBcryptHasher(4)
	ctx := context.Background()

	data, err := Load(writeSeed(t, seedYAML))
	require.NoError(t, err)

	first, err := Run(ctx, store, hasher, data)
	require.NoError(t, err)
	assert.Equal(t, Report{AdminCreated: true, ChargersCreated: 2}, first)

	admin, err := store.Users().FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.NoError(t, store.Users().SetEnabled(ctx, admin.ID, false))
	require.NoError(t, store.Users().SetRole(ctx, admin.ID, model.RoleCustomer))

	data.Chargers[0].Latitude = 10
	second, err := Run(ctx, store, hasher, data)
	require.NoError(t, err)
	assert.Equal(t, Report{ChargersUpdated: 2}, second)

	admin, err = store.Users().FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.Enabled)
	assert.Equal(t, model.RoleAdmin, admin.RoleID)
	require.NotNil(t, admin.PasswordHash)
	assert.NoError(t, hasher.Compare(*admin.PasswordHash, "admin123"))

	centar, err := store.Chargers().FindByName(ctx, "Centar")
	require.NoError(t, err)
	assert.Equal(t, 10.0, centar.Latitude)
	assert.Equal(t, admin.ID, centar.CreatorID)
}

func TestRun_RejectsIncompleteAdmin(t *testing.T) {
	db := dbtest.Open(t)
	store := repository.NewStore(db)
	hasher := auth.NewBcryptHasher(4)
	ctx := context.Background()

	_, err := Run(ctx, store, hasher, &Data{})
	assert.Error(t, err)

	report, err := Run(ctx, store, hasher, &Data{
		Admin:    Admin{Email: "admin@example.com", Password: "123"},
		Chargers: []Charger{{Name: "Centar"}},
	})
	assert.Error(t, err)
	assert.Equal(t, Report{}, report)

	_, err = store.Chargers().FindByName(ctx, "Centar")
	assert.Error(t, err)
}
