package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/localnerve/datapackage-registry/internal/config"
	"github.com/localnerve/datapackage-registry/internal/database"
	"github.com/localnerve/datapackage-registry/internal/objectstore"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRegistry(t *testing.T) (*Registry, *objectstore.MockStore) {
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

	cfg := &config.Config{
		DBType:    "sqlite",
		S3Bucket:  "datapackages",
		KeyPrefix: "metadata",
		JWTSecret: "secret",
		JWTIssuer: "datapackage-registry",
		TokenTTL:  time.Hour,
	}
	store := objectstore.NewMockStore()
	return Wire(cfg, db, store, prometheus.NewRegistry()), store
}

func TestWireWithoutIdentityProvider(t *testing.T) {
	r, _ := newRegistry(t)
	assert.Nil(t, r.Identity)
	assert.NotNil(t, r.Coordinator.Locks)
	assert.Equal(t, "metadata", r.Coordinator.Layout.Prefix)
}

func TestWireWithIdentityProvider(t *testing.T) {
	r, _ := newRegistry(t)
	cfg := *r.Config
	cfg.OAuthClientID = "client"
	cfg.OAuthAuthURL = "https://idp.test/authorize"
	cfg.OAuthTokenURL = "https://idp.test/token"
	cfg.OAuthUserInfoURL = "https://idp.test/userinfo"

	wired := Wire(&cfg, r.DB, objectstore.NewMockStore(), prometheus.NewRegistry())
	assert.NotNil(t, wired.Identity)
}

func TestAppServesAPIAndMetrics(t *testing.T) {
	r, store := newRegistry(t)
	app := r.App()

	user, err := r.Accounts.CreateUser(t.Context(), services.NewUser{Name: "core", Email: "core@test.com", Secret: "s"})
	require.NoError(t, err)
	token, err := r.Auth.IssueToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/api/package/core/gdp", bytes.NewBufferString(`{"name":"gdp"}`))
	req.Header.Set("Authorization", "bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, store.Keys(), "metadata/core/gdp/_v/latest/datapackage.json")

	resp, err = app.Test(httptest.NewRequest("GET", "/api/package/core", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "objectstore_operations_total")
	assert.Contains(t, string(body), "lifecycle_operations_total")

	resp, err = app.Test(httptest.NewRequest("GET", "/nowhere", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
