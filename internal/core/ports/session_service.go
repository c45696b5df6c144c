package ports

import (
	"context"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

// SessionObserver receives a snapshot after every session transition.
type SessionObserver interface {
	OnSession(snapshot domain.Snapshot)
}

// SessionObserverFunc adapts a function to SessionObserver.
type SessionObserverFunc func(domain.Snapshot)

func (f SessionObserverFunc) OnSession(s domain.Snapshot) { f(s) }

// SessionService is the application's single authentication session.
type SessionService interface {
	Hydrate(ctx context.Context) domain.Snapshot
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Snapshot() domain.Snapshot
}
