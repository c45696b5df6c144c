package ports

import (
	"context"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

// AuthService issues and invalidates tokens for the development backend.
type AuthService interface {
	Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Refresh(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
}
