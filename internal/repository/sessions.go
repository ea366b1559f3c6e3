package repository

import (
	"context"
	"sync"
	"time"

	"github.com/chucky-1/ledgerbot/internal/model"
)

// Sessions keeps the wizard progress of users. A missing or expired session is reported as nil, nil
type Sessions interface {
	Get(ctx context.Context, userID int64) (*model.Session, error)
	Set(ctx context.Context, session *model.Session) error
	Clear(ctx context.Context, userID int64) error
	// Purge drops expired sessions and returns how many were dropped
	Purge(ctx context.Context) (int, error)
}

type SessionsLocalStorage struct {
	mu  sync.Mutex
	m   map[int64]model.Session
	ttl time.Duration
	now func() time.Time
}

// NewSessionsLocalStorage keeps sessions in process memory, ttl <= 0 disables expiry
func NewSessionsLocalStorage(ttl time.Duration) *SessionsLocalStorage {
	return &SessionsLocalStorage{
		m:   make(map[int64]model.Session),
		ttl: ttl,
		now: time.Now,
	}
}

func (l *SessionsLocalStorage) Get(_ context.Context, userID int64) (*model.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.m[userID]
	if !ok {
		return nil, nil
	}
	if l.expired(s) {
		delete(l.m, userID)
		return nil, nil
	}
	return &s, nil
}

func (l *SessionsLocalStorage) Set(_ context.Context, session *model.Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := *session
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = l.now().UTC()
	}
	l.m[session.UserID] = s
	return nil
}

func (l *SessionsLocalStorage) Clear(_ context.Context, userID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.m, userID)
	return nil
}

func (l *SessionsLocalStorage) Purge(_ context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	purged := 0
	for userID, s := range l.m {
		if l.expired(s) {
			delete(l.m, userID)
			purged++
		}
	}
	return purged, nil
}

func (l *SessionsLocalStorage) expired(s model.Session) bool {
	return l.ttl > 0 && l.now().Sub(s.UpdatedAt) > l.ttl
}
