package service

import (
	"context"
	"time"

	"github.com/chucky-1/ledgerbot/internal/model"
	"github.com/chucky-1/ledgerbot/internal/repository"
)

type Sessions interface {
	Get(ctx context.Context, userID int64) (*model.Session, error)
	Set(ctx context.Context, session *model.Session) error
	Clear(ctx context.Context, userID int64) error
	Purge(ctx context.Context) (int, error)
}

type sessions struct {
	repo repository.Sessions
	now  func() time.Time
}

func NewSessions(repo repository.Sessions) *sessions {
	return &sessions{
		repo: repo,
		now:  time.Now,
	}
}

func (s *sessions) Get(ctx context.Context, userID int64) (*model.Session, error) {
	return s.repo.Get(ctx, userID)
}

// Set overwrites the session and restarts its expiry
func (s *sessions) Set(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = s.now().UTC()
	return s.repo.Set(ctx, session)
}

func (s *sessions) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

func (s *sessions) Purge(ctx context.Context) (int, error) {
	return s.repo.Purge(ctx)
}
