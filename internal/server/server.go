// server.go
//
// A publisher-scoped data package registry over relational metadata and object storage
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of datapackage-registry.
// datapackage-registry is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// datapackage-registry is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with datapackage-registry.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package server assembles the registry from its configuration: database,
// object store, services and the fiber application.
package server

import (
	"context"
	"fmt"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/datapackage-registry/internal/config"
	"github.com/localnerve/datapackage-registry/internal/database"
	"github.com/localnerve/datapackage-registry/internal/handlers"
	"github.com/localnerve/datapackage-registry/internal/identity"
	"github.com/localnerve/datapackage-registry/internal/keys"
	"github.com/localnerve/datapackage-registry/internal/metrics"
	"github.com/localnerve/datapackage-registry/internal/middleware"
	"github.com/localnerve/datapackage-registry/internal/objectstore"
	"github.com/localnerve/datapackage-registry/internal/objectstore/s3"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Registry holds the wired services of one registry instance.
type Registry struct {
	Config      *config.Config
	DB          *gorm.DB
	Store       objectstore.Store
	Accounts    *services.AccountStore
	Packages    *services.MetadataStore
	Coordinator *services.Coordinator
	Proxy       *services.ProxyReader
	Auth        *services.Authenticator
	Identity    handlers.IdentityProvider
	Registerer  prometheus.Registerer
}

// Options override parts of the default wiring.
type Options struct {
	// Registerer receives the registry's metrics, prometheus.DefaultRegisterer when nil.
	Registerer prometheus.Registerer
	// Store replaces the S3 store built from the configuration.
	Store objectstore.Store
}

// NewObjectStore builds the S3 store described by cfg and creates its bucket
// when it is missing.
func NewObjectStore(ctx context.Context, cfg *config.Config) (*s3.Store, error) {
	store, err := s3.New(ctx, s3.Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		UsePathStyle:    cfg.S3UsePathStyle,
		SignedURLTTL:    cfg.SignedURLTTL,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logrus.WithError(err).WithField("bucket", cfg.S3Bucket).Warn("Bucket check failed")
	}
	return store, nil
}

// New connects to the database and the object store and wires the services.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Registry, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := opts.Store
	if store == nil {
		s3Store, err := NewObjectStore(ctx, cfg)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
		store = s3Store
	}

	return Wire(cfg, db, store, opts.Registerer), nil
}

// Wire builds the services over an open database and object store.
func Wire(cfg *config.Config, db *gorm.DB, store objectstore.Store, reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	instrumented := objectstore.NewInstrumentedStore(store, metrics.NewObjectStoreMetricsWithRegistry(reg))
	layout := keys.New(cfg.KeyPrefix)
	accounts := &services.AccountStore{DB: db}
	packages := &services.MetadataStore{DB: db}

	r := &Registry{
		Config:   cfg,
		DB:       db,
		Store:    instrumented,
		Accounts: accounts,
		Packages: packages,
		Coordinator: &services.Coordinator{
			Store:    instrumented,
			Packages: packages,
			Layout:   layout,
			Locks:    services.NewPackageLocks(),
			Metrics:  metrics.NewLifecycleMetricsWithRegistry(reg),
		},
		Proxy:      &services.ProxyReader{Store: instrumented, Layout: layout, Packages: packages},
		Auth:       services.NewAuthenticator(accounts, cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		Registerer: reg,
	}
	if cfg.OAuthEnabled() {
		r.Identity = identity.NewProvider(cfg)
	}
	return r
}

// Close releases the database connection.
func (r *Registry) Close() error {
	return database.Close(r.DB)
}

// Handlers returns the route handlers bound to the registry's services.
func (r *Registry) Handlers() *handlers.Handlers {
	return &handlers.Handlers{
		Auth: &handlers.AuthHandler{
			Auth:        r.Auth,
			Accounts:    r.Accounts,
			Coordinator: r.Coordinator,
			Identity:    r.Identity,
		},
		Package:   &handlers.PackageHandler{Coordinator: r.Coordinator},
		Publisher: &handlers.PublisherHandler{Accounts: r.Accounts},
		Proxy:     &handlers.ProxyHandler{Proxy: r.Proxy},
		Health:    &handlers.HealthHandler{Config: r.Config, DB: r.DB, Store: r.Store},
		Users:     r.Auth,
	}
}

// App builds the fiber application serving the registry API under /api.
// HTTP metrics are exposed at /metrics and the API documentation at /swagger.
func (r *Registry) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    16 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prom := fiberprometheus.NewWithRegistry(r.Registerer, "datapackage_registry", "", "", nil)
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	api.Use(middleware.RequestLogger())
	r.Handlers().Register(api)

	app.Use(handlers.NotFound)
	return app
}
