package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/datapackage-registry/data"
	"github.com/localnerve/datapackage-registry/internal/config"
	"github.com/localnerve/datapackage-registry/internal/manager"
	"github.com/localnerve/datapackage-registry/internal/server"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/localnerve/datapackage-registry/internal/testenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoSecret = "integration-secret"

func request(t *testing.T, app *fiber.App, method, path, token, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func requestJSON(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	status, raw := request(t, app, method, path, token, body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return status, out
}

// TestRegistryWithContainers runs the package lifecycle against a real
// database and a MinIO object store.
func TestRegistryWithContainers(t *testing.T) {
	testenv.SkipUnlessDocker(t)

	containers, err := testenv.StartAll(t)
	require.NoError(t, err)
	t.Cleanup(func() { containers.Terminate(t) })

	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "integration-jwt-secret")
	for key, value := range containers.Env() {
		t.Setenv(key, value)
	}
	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	r, err := server.New(ctx, cfg, server.Options{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	health := services.HealthCheck(ctx, cfg, r.DB, r.Store)
	require.Equal(t, "healthy", health.Status, health.ErrorMessage)

	require.NoError(t, manager.Populate(ctx, r, demoSecret))
	app := r.App()

	status, out := requestJSON(t, app, "POST", "/api/auth/token", "", `{"username":"`+manager.DemoPublisher+`","secret":"`+demoSecret+`"}`)
	require.Equal(t, http.StatusOK, status, out)
	token := out["token"].(string)

	status, out = requestJSON(t, app, "GET", "/api/package/demo/demo-package?tag=v1.0", "", "")
	require.Equal(t, http.StatusOK, status, out)
	assert.Equal(t, manager.DemoPackage, out["name"])
	assert.Equal(t, data.FixtureReadme, out["readme"])

	status, raw := request(t, app, "GET", "/api/dataproxy/demo/demo-package/r/gdp.csv?tag=v1.0", "", "")
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, string(data.FixtureGDP), string(raw))

	status, raw = request(t, app, "GET", "/api/dataproxy/demo/demo-package/r/gdp.json", "", "")
	require.Equal(t, http.StatusOK, status, string(raw))
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &rows))
	assert.NotEmpty(t, rows)

	status, out = requestJSON(t, app, "POST", "/api/auth/bitstore_upload", token,
		`{"publisher":"demo","package":"demo-package","md5":"1B2M2Y8AsgTpgAmY7PhCfg==","path":"extra.csv"}`)
	require.Equal(t, http.StatusOK, status, out)
	assert.True(t, strings.HasPrefix(out["key"].(string), containers.S3Endpoint), out["key"])

	status, out = requestJSON(t, app, "DELETE", "/api/package/demo/demo-package", token, "")
	require.Equal(t, http.StatusOK, status, out)
	status, out = requestJSON(t, app, "GET", "/api/package/demo", "", "")
	require.Equal(t, http.StatusOK, status, out)
	assert.Len(t, out["data"], 0)

	report, err := manager.Drift(ctx, r, manager.DemoPublisher)
	require.NoError(t, err)
	assert.True(t, report.Clean(), "%+v", report)

	status, out = requestJSON(t, app, "DELETE", "/api/package/demo/demo-package/purge", token, "")
	require.Equal(t, http.StatusOK, status, out)

	keys, err := r.Store.List(ctx, r.Coordinator.Layout.PackagePrefix(manager.DemoPublisher, manager.DemoPackage))
	require.NoError(t, err)
	assert.Empty(t, keys)

	status, out = requestJSON(t, app, "GET", "/api/package/demo/demo-package", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "DATA_NOT_FOUND", out["error_code"])
}
