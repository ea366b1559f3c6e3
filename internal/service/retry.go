package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/ledgerbot/internal/repository"
)

// Retrier repeats datastore calls that failed for transient reasons
type Retrier struct {
	attempts uint64
	interval time.Duration
}

// NewRetrier allows attempts retries after the first call, waiting from interval up with exponential growth
func NewRetrier(attempts uint64, interval time.Duration) *Retrier {
	return &Retrier{
		attempts: attempts,
		interval: interval,
	}
}

func (r *Retrier) Do(ctx context.Context, name string, op func() error) error {
	if r == nil || r.attempts == 0 {
		return op()
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.interval
	exp.MaxInterval = 10 * r.interval
	b := backoff.WithContext(backoff.WithMaxRetries(exp, r.attempts), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if permanent(err) {
			return backoff.Permanent(err)
		}
		logrus.Warnf("%s failed, attempt %d: %v", name, attempt, err)
		return err
	}, b)
}

func permanent(err error) bool {
	return errors.Is(err, repository.DuplicateCategoryErr) ||
		errors.Is(err, repository.DebtNotFoundErr) ||
		errors.Is(err, InvalidAmountErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
