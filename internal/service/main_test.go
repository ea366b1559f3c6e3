package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chucky-1/ledgerbot/internal/repository"
)

func newStorage(t *testing.T) *repository.SQLite {
	t.Helper()
	db, err := repository.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(db.Close)
	return db
}
