package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTestEnv(t *testing.T) {
	t.Run("unset becomes test", func(t *testing.T) {
		t.Setenv("GO_ENV", "")
		require.NoError(t, EnsureTestEnv())
		RequireTestEnvironment(t)
	})

	t.Run("test is accepted", func(t *testing.T) {
		t.Setenv("GO_ENV", "test")
		assert.NoError(t, EnsureTestEnv())
	})

	t.Run("other environments are refused", func(t *testing.T) {
		for _, env := range []string{"development", "production"} {
			t.Setenv("GO_ENV", env)
			err := EnsureTestEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), env)
		}
	})
}

func TestNewTestDB_MigratesSchema(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	db := NewTestDB(t)

	tables, err := db.Migrator().GetTables()
	require.NoError(t, err)
	assert.Contains(t, tables, "quotes")
	assert.Contains(t, tables, "quote_items")
}
