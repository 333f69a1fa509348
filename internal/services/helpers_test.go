package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/datapackage-registry/internal/database"
	"github.com/localnerve/datapackage-registry/internal/keys"
	"github.com/localnerve/datapackage-registry/internal/metrics"
	"github.com/localnerve/datapackage-registry/internal/models"
	"github.com/localnerve/datapackage-registry/internal/objectstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type fixture struct {
	db        *gorm.DB
	store     *objectstore.MockStore
	packages  *MetadataStore
	accounts  *AccountStore
	metrics   *metrics.LifecycleMetrics
	coord     *Coordinator
	owner     *models.User
	member    *models.User
	outsider  *models.User
	layout    keys.Layout
	publisher string
}

// newFixture returns a registry with publisher "test_publisher" owned by
// "test_publisher", a second user holding member role and an outsider.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db := newTestDB(t)
	f := &fixture{
		db:        db,
		store:     objectstore.NewMockStore(),
		packages:  &MetadataStore{DB: db},
		accounts:  &AccountStore{DB: db},
		metrics:   metrics.NewLifecycleMetricsWithRegistry(prometheus.NewRegistry()),
		layout:    keys.New("metadata"),
		publisher: "test_publisher",
	}
	f.coord = &Coordinator{
		Store:    f.store,
		Packages: f.packages,
		Layout:   f.layout,
		Locks:    NewPackageLocks(),
		Metrics:  f.metrics,
	}

	var err error
	f.owner, err = f.accounts.CreateUser(ctx, NewUser{Name: "test_publisher", Email: "test@test.com", Secret: "super_secret"})
	require.NoError(t, err)

	member, err := f.accounts.CreateUser(ctx, NewUser{Name: "member", Email: "member@test.com", Secret: "s"})
	require.NoError(t, err)
	require.NoError(t, f.accounts.AddMember(ctx, f.publisher, member, models.RoleMember))
	f.member, err = f.accounts.FindUserByID(ctx, member.ID)
	require.NoError(t, err)

	f.outsider, err = f.accounts.CreateUser(ctx, NewUser{Name: "outsider", Email: "out@test.com", Secret: "s"})
	require.NoError(t, err)
	return f
}

func (f *fixture) save(t *testing.T, pkg, descriptor string) {
	t.Helper()
	require.NoError(t, f.coord.Save(context.Background(), f.owner, f.publisher, pkg, []byte(descriptor), nil))
}

func (f *fixture) rowCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.PackageMetadata{}).Count(&n).Error)
	return n
}

func withTimeout(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
