package services

import (
	"context"
	"fmt"

	"github.com/localnerve/datapackage-registry/internal/config"
	"github.com/localnerve/datapackage-registry/internal/objectstore"
	"github.com/localnerve/datapackage-registry/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status           string            `json:"status"`
	Database         string            `json:"database"`
	ObjectStore      string            `json:"object_store"`
	IdentityProvider string            `json:"identity_provider,omitempty"`
	Details          map[string]string `json:"details,omitempty"`
	ErrorMessage     string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, status, message string, err error) {
	r.Status = "unhealthy"
	r.Details[component+"_error"] = err.Error()
	msg := fmt.Sprintf("%s: %v", message, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
	logrus.WithField("component", component).WithError(err).Warn("Health check failed")
	switch component {
	case "database":
		r.Database = status
	case "object_store":
		r.ObjectStore = status
	case "identity_provider":
		r.IdentityProvider = status
	}
}

// HealthCheck performs a comprehensive health check of the service
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, store objectstore.Store) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	if sqlDB, err := db.DB(); err != nil {
		result.fail("database", "error", "Database connection error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.fail("database", "unreachable", "Database ping failed", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
	}

	if err := store.Ping(ctx); err != nil {
		result.fail("object_store", "unreachable", "Object store ping failed", err)
	} else {
		result.ObjectStore = "ok"
		result.Details["bucket"] = cfg.S3Bucket
	}

	// The identity provider only matters when login is enabled
	if cfg.OAuthEnabled() {
		if err := utils.PingIdentityProvider(ctx, cfg.OAuthAuthURL); err != nil {
			result.fail("identity_provider", "unreachable", "Identity provider ping failed", err)
		} else {
			result.IdentityProvider = "ok"
		}
	}

	if result.Status == "healthy" {
		logrus.Debug("Health check passed - all systems operational")
	}

	return result
}
