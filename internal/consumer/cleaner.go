package consumer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chucky-1/ledgerbot/internal/service"
)

const purgeTimeout = 10 * time.Second

// Janitor drops abandoned wizards on a fixed interval
type Janitor struct {
	sessions service.Sessions
	interval time.Duration
}

func NewJanitor(sessions service.Sessions, interval time.Duration) *Janitor {
	return &Janitor{
		sessions: sessions,
		interval: interval,
	}
}

func (j *Janitor) Consume(ctx context.Context) {
	logrus.Info("janitor consumer started")
	t := time.NewTicker(j.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("janitor consumer stopped: %v", ctx.Err())
			return
		case <-t.C:
			j.purge(ctx)
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	newCtx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := j.sessions.Purge(newCtx)
	if err != nil {
		logrus.Errorf("janitor consumer couldn't purge sessions: %v", err)
		return
	}
	if n > 0 {
		logrus.Infof("janitor consumer purged %d expired sessions", n)
	}
}
