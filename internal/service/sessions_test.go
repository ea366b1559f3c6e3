package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chucky-1/ledgerbot/internal/model"
	"github.com/chucky-1/ledgerbot/internal/repository"
)

func TestSessions_SetRestartsExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(repository.NewSessionsLocalStorage(time.Hour))
	stamp := time.Now().UTC()
	s.now = func() time.Time { return stamp }

	session := &model.Session{UserID: 1, Step: model.StepEnteringAmount, UpdatedAt: stamp.Add(-24 * time.Hour)}
	require.NoError(t, s.Set(ctx, session))
	require.Equal(t, stamp, session.UpdatedAt)

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, model.StepEnteringAmount, got.Step)
	require.Equal(t, stamp, got.UpdatedAt)

	require.NoError(t, s.Clear(ctx, 1))
	got, err = s.Get(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, got)
}
