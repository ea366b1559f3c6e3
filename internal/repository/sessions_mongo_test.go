//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/chucky-1/ledgerbot/internal/model"
)

func TestSessionsMongo_SetGetClear(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() {
		err := mongoCli.Database("ledgerbot_test").Drop(ctx)
		if err != nil {
			t.Fatal(err)
		}
	}()

	s := NewSessionsMongo(mongoCli, "ledgerbot_test", time.Hour)
	require.NoError(t, s.EnsureIndexes(ctx))

	require.NoError(t, s.Set(ctx, &model.Session{
		UserID:       7,
		Step:         model.StepEnteringDebtAmount,
		Direction:    model.Owed,
		Counterparty: "Alice",
	}))
	// overwriting keeps one document per user
	require.NoError(t, s.Set(ctx, &model.Session{
		UserID:       7,
		Step:         model.StepEnteringDebtAmount,
		Direction:    model.Owe,
		Counterparty: "Bob",
	}))

	got, err := s.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, model.Owe, got.Direction)
	require.Equal(t, "Bob", got.Counterparty)

	count, err := s.coll.CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	require.NoError(t, s.Clear(ctx, 7))
	got, err = s.Get(ctx, 7)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSessionsMongo_Expired(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() {
		err := mongoCli.Database("ledgerbot_test").Drop(ctx)
		if err != nil {
			t.Fatal(err)
		}
	}()

	s := NewSessionsMongo(mongoCli, "ledgerbot_test", 30*time.Minute)
	require.NoError(t, s.Set(ctx, &model.Session{
		UserID:    8,
		Step:      model.StepChoosingCategory,
		UpdatedAt: time.Now().UTC().Add(-time.Hour),
	}))

	got, err := s.Get(ctx, 8)
	require.NoError(t, err)
	require.Nil(t, got)

	purged, err := s.Purge(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, purged)
}
