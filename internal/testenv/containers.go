// containers.go
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

// Package testenv starts the database and object store containers used by
// integration tests and by the standalone testcontainers command.
// Settings come from the environment, usually loaded from a .env file.
package testenv

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultPostgresImage = "postgres:16-alpine"
	defaultMariaDBImage  = "mariadb:11"
	defaultMinioImage    = "minio/minio:latest"
	minioPort            = "9000/tcp"
)

// Containers holds the running containers and how to reach them from the host.
type Containers struct {
	Network              *testcontainers.DockerNetwork
	DBContainer          testcontainers.Container
	ObjectStoreContainer testcontainers.Container

	DBType     string
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUser     string
	DBPassword string

	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// Env returns the configuration variables that point the registry at these containers.
func (tc *Containers) Env() map[string]string {
	return map[string]string{
		"DB_TYPE":           tc.DBType,
		"DB_HOST":           tc.DBHost,
		"DB_PORT":           tc.DBPort,
		"DB_DATABASE":       tc.DBDatabase,
		"DB_USER":           tc.DBUser,
		"DB_PASSWORD":       tc.DBPassword,
		"S3_ENDPOINT":       tc.S3Endpoint,
		"S3_BUCKET":         tc.S3Bucket,
		"S3_ACCESS_KEY":     tc.S3AccessKey,
		"S3_SECRET_KEY":     tc.S3SecretKey,
		"S3_USE_PATH_STYLE": "true",
	}
}

// Terminate stops every container and removes the network.
func (tc *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.ObjectStoreContainer != nil {
		if err := tc.ObjectStoreContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate MinIO: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// DockerAvailable reports whether a Docker daemon answers on the environment's endpoint.
func DockerAvailable(ctx context.Context) bool {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err = cli.Ping(ctx)
	return err == nil
}

// SkipUnlessDocker skips t in -short mode or when Docker is unreachable.
func SkipUnlessDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if !DockerAvailable(context.Background()) {
		t.Skip("docker is not available")
	}
}

// StartObjectStore starts only the MinIO container.
func StartObjectStore(t *testing.T) (*Containers, error) {
	ctx := context.Background()
	tc := &Containers{}
	if err := tc.startMinio(ctx, t, ""); err != nil {
		tc.Terminate(t)
		return nil, err
	}
	return tc, nil
}

// StartAll starts the database selected by DB_TYPE (postgres by default) and MinIO
// on a shared network.
func StartAll(t *testing.T) (*Containers, error) {
	ctx := context.Background()
	tc := &Containers{}

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	if err := tc.startDatabase(ctx, t); err != nil {
		tc.Terminate(t)
		return nil, err
	}
	if err := tc.startMinio(ctx, t, nw.Name); err != nil {
		tc.Terminate(t)
		return nil, err
	}

	logMessage(t, "Registry testcontainers started successfully")
	return tc, nil
}

func (tc *Containers) startDatabase(ctx context.Context, t *testing.T) error {
	tc.DBType = getEnv("DB_TYPE", "postgres")
	tc.DBDatabase = getEnv("DB_DATABASE", "registry")
	tc.DBUser = getEnv("DB_USER", "registry")
	tc.DBPassword = getEnv("DB_PASSWORD", "registry")

	var (
		image string
		port  nat.Port
		env   map[string]string
		until wait.Strategy
	)
	switch tc.DBType {
	case "postgres", "postgresql":
		image = getEnv("DB_IMAGE", defaultPostgresImage)
		port = "5432/tcp"
		env = map[string]string{
			"POSTGRES_USER":     tc.DBUser,
			"POSTGRES_PASSWORD": tc.DBPassword,
			"POSTGRES_DB":       tc.DBDatabase,
		}
		until = wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second)
	case "mysql", "mariadb":
		image = getEnv("DB_IMAGE", defaultMariaDBImage)
		port = "3306/tcp"
		env = map[string]string{
			"MYSQL_ROOT_PASSWORD": getEnv("DB_ROOT_PASSWORD", "root"),
			"MYSQL_DATABASE":      tc.DBDatabase,
			"MYSQL_USER":          tc.DBUser,
			"MYSQL_PASSWORD":      tc.DBPassword,
		}
		until = wait.ForListeningPort(port).WithStartupTimeout(60 * time.Second)
	default:
		return fmt.Errorf("unsupported container database type: %s", tc.DBType)
	}

	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{string(port)},
		Env:          env,
		WaitingFor:   until,
	}
	if tc.Network != nil {
		req.Networks = []string{tc.Network.Name}
		req.NetworkAliases = map[string][]string{tc.Network.Name: {"database"}}
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return fmt.Errorf("failed to start database: %w", err)
	}
	tc.DBContainer = dbContainer

	host, err := dbContainer.Host(ctx)
	if err != nil {
		return err
	}
	mapped, err := dbContainer.MappedPort(ctx, port)
	if err != nil {
		return err
	}
	tc.DBHost, tc.DBPort = host, mapped.Port()
	logMessage(t, "DB_HOST=%s DB_PORT=%s", tc.DBHost, tc.DBPort)

	if tc.DBType == "mysql" || tc.DBType == "mariadb" {
		return tc.waitForMySQL()
	}
	return nil
}

// waitForMySQL blocks until the server accepts the application user.
func (tc *Containers) waitForMySQL() error {
	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", tc.DBUser, tc.DBPassword, tc.DBHost, tc.DBPort, tc.DBDatabase))
	if err != nil {
		return fmt.Errorf("failed to open MariaDB: %w", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("MariaDB not ready after 30 seconds: %w", err)
}

func (tc *Containers) startMinio(ctx context.Context, t *testing.T, networkName string) error {
	tc.S3AccessKey = getEnv("S3_ACCESS_KEY", "minioadmin")
	tc.S3SecretKey = getEnv("S3_SECRET_KEY", "minioadmin")
	tc.S3Bucket = getEnv("S3_BUCKET", "datapackages")

	req := testcontainers.ContainerRequest{
		Image:        getEnv("MINIO_IMAGE", defaultMinioImage),
		ExposedPorts: []string{minioPort},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     tc.S3AccessKey,
			"MINIO_ROOT_PASSWORD": tc.S3SecretKey,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort(minioPort).WithStartupTimeout(60 * time.Second),
	}
	if networkName != "" {
		req.Networks = []string{networkName}
		req.NetworkAliases = map[string][]string{networkName: {"minio"}}
	}

	minio, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return fmt.Errorf("failed to start MinIO: %w", err)
	}
	tc.ObjectStoreContainer = minio

	host, err := minio.Host(ctx)
	if err != nil {
		return err
	}
	mapped, err := minio.MappedPort(ctx, minioPort)
	if err != nil {
		return err
	}
	tc.S3Endpoint = fmt.Sprintf("http://%s:%s", host, mapped.Port())
	logMessage(t, "S3_ENDPOINT=%s", tc.S3Endpoint)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
