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
	"encoding/json"
	"fmt"
	"os"

	"github.com/localnerve/datapackage-registry/internal/config"
	"github.com/localnerve/datapackage-registry/internal/database"
	"github.com/localnerve/datapackage-registry/internal/logging"
	"github.com/localnerve/datapackage-registry/internal/manager"
	"github.com/localnerve/datapackage-registry/internal/server"
	"github.com/localnerve/datapackage-registry/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	newUser        services.NewUser
	demoSecret     string
	driftPublisher string
)

func init() {
	RootCmd.AddCommand(CreateDBCmd, DropDBCmd, PopulateCmd, AddUserCmd, DriftCmd)

	AddUserCmd.Flags().StringVar(&newUser.Name, "name", "", "user name")
	AddUserCmd.Flags().StringVar(&newUser.Email, "email", "", "email address")
	AddUserCmd.Flags().StringVar(&newUser.Secret, "secret", "", "secret exchanged for tokens")
	AddUserCmd.Flags().StringVar(&newUser.Publisher, "publisher", "", "publisher owned by the user, defaults to the user name")
	// nolint:errcheck
	AddUserCmd.MarkFlagRequired("name")
	// nolint:errcheck
	AddUserCmd.MarkFlagRequired("secret")

	PopulateCmd.Flags().StringVar(&demoSecret, "secret", "demo", "secret of the demo user when it is created")

	DriftCmd.Flags().StringVarP(&driftPublisher, "publisher", "p", "", "publisher to check")
	// nolint:errcheck
	DriftCmd.MarkFlagRequired("publisher")
}

// RootCmd is the main command for the 'manager' binary.
var RootCmd = &cobra.Command{
	Use:           "manager",
	Short:         "`manager` administers the data package registry",
	Long:          "`manager` administers the data package registry. Settings come from the environment or the file named by ENV_FILE.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// CreateDBCmd creates the registry tables
var CreateDBCmd = &cobra.Command{
	Use:   "createdb",
	Short: "`createdb` creates the registry tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(manager.CreateDB)
	},
}

// DropDBCmd drops the registry tables
var DropDBCmd = &cobra.Command{
	Use:   "dropdb",
	Short: "`dropdb` drops every registry table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(manager.DropDB)
	},
}

// PopulateCmd loads the demo package
var PopulateCmd = &cobra.Command{
	Use:   "populate",
	Short: "`populate` loads the demo package into the demo publisher",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, r *server.Registry) error {
			return manager.Populate(ctx, r, demoSecret)
		})
	},
}

// AddUserCmd creates a user and its publisher
var AddUserCmd = &cobra.Command{
	Use:   "adduser",
	Short: "`adduser` creates a user owning a publisher",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, r *server.Registry) error {
			user, err := manager.AddUser(ctx, r, newUser)
			if err != nil {
				return err
			}
			fmt.Printf("created user %s (id %d)\n", user.Name, user.ID)
			return nil
		})
	},
}

// DriftCmd compares a publisher's objects with its metadata rows
var DriftCmd = &cobra.Command{
	Use:   "drift",
	Short: "`drift` lists package versions present in only one of the two stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRegistry(func(ctx context.Context, r *server.Registry) error {
			report, err := manager.Drift(ctx, r, driftPublisher)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			if !report.Clean() {
				return fmt.Errorf("publisher %s has drifted", driftPublisher)
			}
			return nil
		})
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withDB(fn func(*gorm.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db)
}

func withRegistry(fn func(context.Context, *server.Registry) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	r, err := server.New(ctx, cfg, server.Options{})
	if err != nil {
		return err
	}
	defer r.Close()
	return fn(ctx, r)
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
