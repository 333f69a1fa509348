// main.go
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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/datapackage-registry/internal/config"
	"github.com/localnerve/datapackage-registry/internal/logging"
	"github.com/localnerve/datapackage-registry/internal/server"
	"github.com/sirupsen/logrus"

	_ "github.com/localnerve/datapackage-registry/docs/api" // Swagger docs
)

// @title Data Package Registry API
// @version 1.0.0
// @description Publisher-scoped registry of data packages, with metadata in a relational database and files in object storage
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/datapackage-registry
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout); err != nil {
		logrus.Fatalf("Invalid log configuration: %v", err)
	}

	registry, err := server.New(context.Background(), cfg, server.Options{})
	if err != nil {
		logrus.Fatalf("Failed to start registry: %v", err)
	}
	defer registry.Close()

	app := registry.App()
	if registry.Identity == nil {
		logrus.Info("No identity provider configured, login routes are disabled")
	}

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logrus.Info("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	logrus.WithField("port", cfg.Port).Info("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}

	logrus.Info("Server stopped")
}
