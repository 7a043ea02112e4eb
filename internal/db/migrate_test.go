package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/avatar/internal/config"
)

func TestMigrateURL(t *testing.T) {
	t.Parallel()

	cfg := config.PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "avatar", SSLMode: "disable"}
	assert.Equal(t, "pgx5://u:p@db:5432/avatar?sslmode=disable", migrateURL(cfg))
}

func TestMigrationFiles_Paired(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(migrationFS, "migrations")
	require.NoError(t, err)
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Positive(t, ups)
	assert.Equal(t, ups, downs)
}
