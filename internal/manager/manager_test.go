package manager

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/datapackage-registry/data"
	"github.com/localnerve/datapackage-registry/internal/config"
	"github.com/localnerve/datapackage-registry/internal/keys"
	"github.com/localnerve/datapackage-registry/internal/models"
	"github.com/localnerve/datapackage-registry/internal/objectstore"
	"github.com/localnerve/datapackage-registry/internal/server"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRegistry(t *testing.T) (*server.Registry, *objectstore.MockStore) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, CreateDB(db))

	cfg := &config.Config{DBType: "sqlite", KeyPrefix: "metadata", JWTSecret: "s", TokenTTL: time.Hour}
	store := objectstore.NewMockStore()
	return server.Wire(cfg, db, store, prometheus.NewRegistry()), store
}

func TestCreateAndDropDB(t *testing.T) {
	r, _ := newRegistry(t)

	require.NoError(t, DropDB(r.DB))
	assert.False(t, r.DB.Migrator().HasTable(&models.PackageMetadata{}))
	assert.False(t, r.DB.Migrator().HasTable(&models.User{}))

	require.NoError(t, CreateDB(r.DB))
	assert.True(t, r.DB.Migrator().HasTable(&models.PackageMetadata{}))
	assert.True(t, r.DB.Migrator().HasTable(&models.PublisherMembership{}))
}

func TestPopulate(t *testing.T) {
	r, store := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, Populate(ctx, r, "demo-secret"))

	view, err := r.Coordinator.Get(ctx, DemoPublisher, DemoPackage, "")
	require.NoError(t, err)
	assert.Equal(t, DemoPackage, view.Descriptor.Name())
	assert.Equal(t, data.FixtureReadme, view.Readme)

	tagged, err := r.Coordinator.Get(ctx, DemoPublisher, DemoPackage, DemoVersion)
	require.NoError(t, err)
	assert.Equal(t, view.Descriptor.Name(), tagged.Descriptor.Name())

	layout := r.Coordinator.Layout
	assert.Contains(t, store.Keys(), layout.KeyFor(DemoPublisher, DemoPackage, DemoVersion, data.FixtureGDPPath))

	csv, err := r.Proxy.ReadResource(ctx, DemoPublisher, DemoPackage, "gdp", DemoVersion, services.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, string(data.FixtureGDP), string(csv))

	// a second run keeps the tag and the user
	require.NoError(t, Populate(ctx, r, "demo-secret"))
	token, err := r.Auth.TokenForCredentials(ctx, DemoPublisher, "", "demo-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestAddUser(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	user, err := AddUser(ctx, r, services.NewUser{Name: "alice", Email: "alice@test.com", Secret: "s", Publisher: "core"})
	require.NoError(t, err)
	role, ok := user.RoleIn("core")
	require.True(t, ok)
	assert.Equal(t, models.RoleOwner, role)

	_, err = AddUser(ctx, r, services.NewUser{Name: "alice", Secret: "s", Publisher: "other"})
	assert.ErrorIs(t, err, services.ErrUserExists)
}

func TestDrift(t *testing.T) {
	r, store := newRegistry(t)
	ctx := context.Background()
	require.NoError(t, Populate(ctx, r, "s"))

	report, err := Drift(ctx, r, DemoPublisher)
	require.NoError(t, err)
	assert.True(t, report.Clean())

	orphan := r.Coordinator.Layout.KeyFor(DemoPublisher, "orphan", "", keys.DescriptorFile)
	require.NoError(t, store.Put(ctx, orphan, []byte(`{"name":"orphan"}`), "application/json", objectstore.ACLPublicRead))

	report, err = Drift(ctx, r, DemoPublisher)
	require.NoError(t, err)
	assert.Equal(t, []string{r.Coordinator.Layout.PrefixFor(DemoPublisher, "orphan", "")}, report.ObjectsWithoutRow)
}
