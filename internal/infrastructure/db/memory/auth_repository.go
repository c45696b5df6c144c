package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
)

// AuthRepository keeps development backend accounts in memory.
type AuthRepository struct {
	mu     sync.RWMutex
	byMail map[string]ports.Credential
	lastID int64
}

func NewAuthRepository() *AuthRepository {
	return &AuthRepository{byMail: make(map[string]ports.Credential)}
}

func (r *AuthRepository) Create(_ context.Context, cred *ports.Credential) (*ports.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byMail[cred.User.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.lastID++
	stored := *cred
	stored.User.ID = r.lastID
	r.byMail[stored.User.Email] = stored

	out := stored
	return &out, nil
}

func (r *AuthRepository) FindByEmail(_ context.Context, email string) (*ports.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byMail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &c, nil
}

// RevocationList is an in-memory ports.TokenRevoker.
type RevocationList struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func NewRevocationList() *RevocationList {
	return &RevocationList{expires: make(map[string]time.Time), now: time.Now}
}

func (l *RevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expires[jti] = l.now().Add(ttl)
	return nil
}

func (l *RevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	exp, ok := l.expires[jti]
	if !ok {
		return false, nil
	}
	if !l.now().Before(exp) {
		delete(l.expires, jti)
		return false, nil
	}
	return true, nil
}
