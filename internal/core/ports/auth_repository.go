package ports

import (
	"context"
	"time"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

// Credential is a stored account as the development backend sees it.
type Credential struct {
	User         domain.User
	PasswordHash string
}

// AuthRepository persists development backend accounts.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	Create(ctx context.Context, cred *Credential) (*Credential, error)
}

// TokenRevoker remembers token ids that must no longer be accepted.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
