package storage

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_notes.sql":   {Data: []byte("SELECT 2;")},
		"001_init.sql":    {Data: []byte("SELECT 1;")},
		"README.md":       {Data: []byte("not a migration")},
		"003_later.sql":   {Data: []byte("SELECT 3;")},
		"archive/old.sql": {Data: []byte("SELECT 0;")},
	}

	pending, err := PendingMigrations(fsys, map[string]bool{"002_notes.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "003_later.sql"}, pending)
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	pending, err := PendingMigrations(EmbeddedMigrations(), nil)
	require.NoError(t, err)
	require.NotEmpty(t, pending)
	assert.Equal(t, "001_init.sql", pending[0])
}
