// manager.go
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

// Package manager implements the administrative commands of the registry.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/datapackage-registry/data"
	"github.com/localnerve/datapackage-registry/internal/database"
	"github.com/localnerve/datapackage-registry/internal/models"
	"github.com/localnerve/datapackage-registry/internal/objectstore"
	"github.com/localnerve/datapackage-registry/internal/server"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Demo fixture coordinates.
const (
	DemoPublisher = "demo"
	DemoPackage   = "demo-package"
	DemoVersion   = "v1.0"
)

// CreateDB creates every registry table.
func CreateDB(db *gorm.DB) error {
	return database.AutoMigrate(db)
}

// DropDB removes every registry table.
func DropDB(db *gorm.DB) error {
	return database.DropAll(db)
}

// AddUser creates a user and the publisher it owns.
func AddUser(ctx context.Context, r *server.Registry, in services.NewUser) (*models.User, error) {
	user, err := r.Accounts.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"user": user.Name, "publisher": in.Publisher}).Info("User created")
	return user, nil
}

// Populate loads the demo package for the demo publisher, creating the
// publisher's owner when needed, and tags it as DemoVersion.
// Running it again refreshes the latest version and keeps the tag.
func Populate(ctx context.Context, r *server.Registry, secret string) error {
	owner, err := r.Accounts.FindUserByName(ctx, DemoPublisher)
	if errors.Is(err, services.ErrUserNotFound) {
		owner, err = AddUser(ctx, r, services.NewUser{Name: DemoPublisher, Email: DemoPublisher + "@localhost", Secret: secret})
	}
	if err != nil {
		return fmt.Errorf("failed to resolve demo user: %w", err)
	}

	readme := data.FixtureReadme
	if err := r.Coordinator.Save(ctx, owner, DemoPublisher, DemoPackage, data.FixtureDescriptor, &readme); err != nil {
		return err
	}

	key := r.Coordinator.Layout.KeyFor(DemoPublisher, DemoPackage, "", data.FixtureGDPPath)
	if err := r.Store.Put(ctx, key, data.FixtureGDP, "text/csv", objectstore.ACLPublicRead); err != nil {
		return fmt.Errorf("failed to write demo resource: %w", err)
	}

	if _, err := r.Packages.FindPackage(ctx, DemoPublisher, DemoPackage, DemoVersion); err == nil {
		return nil
	}
	return r.Coordinator.Tag(ctx, owner, DemoPublisher, DemoPackage, DemoVersion)
}

// Drift reports the package versions of publisher present in only one store.
func Drift(ctx context.Context, r *server.Registry, publisher string) (*services.DriftReport, error) {
	return r.Coordinator.DetectDrift(ctx, publisher)
}
