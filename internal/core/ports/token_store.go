package ports

import (
	"context"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

// TokenStore persists the bearer token and the cached user record.
type TokenStore interface {
	Token(ctx context.Context) (string, bool, error)
	SetToken(ctx context.Context, token string) error
	RemoveToken(ctx context.Context) error

	// User reports a malformed record as absent rather than as an error.
	User(ctx context.Context) (*domain.User, bool, error)
	SetUser(ctx context.Context, user *domain.User) error
	RemoveUser(ctx context.Context) error

	// Checkpoint captures both records exactly as stored, malformed or not.
	Checkpoint(ctx context.Context) (StoreCheckpoint, error)
	Restore(ctx context.Context, cp StoreCheckpoint) error
}

// StoreCheckpoint holds the raw stored records. A record that was not
// present is restored by deleting its key.
type StoreCheckpoint struct {
	Token    string
	HasToken bool
	User     string
	HasUser  bool
}
