package ports

import (
	"context"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
}

// AuthClient talks to the backend's authentication endpoints. Every failure
// is a *domain.AuthError.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (string, error)
}
