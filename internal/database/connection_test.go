package database

import (
	"testing"

	"github.com/localnerve/datapackage-registry/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	cases := map[string]string{
		"mysql":     "mysql",
		"mariadb":   "mysql",
		"postgres":  "postgres",
		"sqlite":    "sqlite",
		"sqlite3":   "sqlite",
		"sqlserver": "sqlserver",
	}
	for dbType, name := range cases {
		d, err := Dialector(&config.Config{DBType: dbType, DBDatabase: "x"})
		require.NoError(t, err, dbType)
		assert.Equal(t, name, d.Name(), dbType)
	}

	_, err := Dialector(&config.Config{DBType: "oracle"})
	assert.Error(t, err)
}

func TestConnectMigrateDrop(t *testing.T) {
	cfg := &config.Config{DBType: "sqlite", DBDatabase: "file::memory:", DBConnectionLimit: 1, LogLevel: "error"}

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, AutoMigrate(db))
	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}

	require.NoError(t, DropAll(db))
	for _, m := range Models() {
		assert.False(t, db.Migrator().HasTable(m))
	}
}
