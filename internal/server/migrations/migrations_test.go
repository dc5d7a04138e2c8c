package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"00001_create_users.sql", "00002_create_tasks.sql"}, names)

	for _, n := range names {
		body, err := fs.ReadFile(Migrations, n)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", n)
		assert.Contains(t, string(body), "-- +goose Down", n)
	}
}

func TestMigrations_UsersEmailUnique(t *testing.T) {
	body, err := fs.ReadFile(Migrations, "00001_create_users.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "CONSTRAINT uq_users_email UNIQUE (email)"))
}
