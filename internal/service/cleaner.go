package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/chucky-1/ledgerbot/internal/repository"
)

type Cleaner interface {
	// Wipe irreversibly deletes every record, debt and category of the user
	Wipe(ctx context.Context, userID int64) error
}

type cleaner struct {
	repo    repository.Cleaner
	retrier *Retrier
}

func NewCleaner(repo repository.Cleaner, retrier *Retrier) *cleaner {
	return &cleaner{
		repo:    repo,
		retrier: retrier,
	}
}

func (c *cleaner) Wipe(ctx context.Context, userID int64) error {
	err := c.retrier.Do(ctx, "wipe user data", func() error {
		return c.repo.DeleteByUser(ctx, userID)
	})
	if err != nil {
		return err
	}
	logrus.Infof("all data of user %d deleted", userID)
	return nil
}
