//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestPostgres(t *testing.T) {
	suite.Run(t, &StorageSuite{
		open: func() Storage {
			ctx := context.Background()
			p := NewPostgres(postgresPool)
			require.NoError(t, p.Migrate(ctx))
			_, err := postgresPool.Exec(ctx, `TRUNCATE TABLE records, debts, categories RESTART IDENTITY`)
			require.NoError(t, err)
			return &sharedPostgres{Postgres: p}
		},
	})
}

// sharedPostgres keeps the pool open between tests
type sharedPostgres struct {
	*Postgres
}

func (s *sharedPostgres) Close() {}
