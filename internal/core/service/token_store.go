package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
)

// Storage keys for the persisted session.
const (
	TokenKey = "authToken"
	UserKey  = "user"
)

// TokenStore keeps the bearer token and the user record in a KeyValueStore
// under fixed keys. An optional prefix namespaces both keys.
type TokenStore struct {
	kv     ports.KeyValueStore
	prefix string
	log    zerolog.Logger
}

// NewTokenStore wraps kv.
func NewTokenStore(kv ports.KeyValueStore, prefix string, log zerolog.Logger) *TokenStore {
	return &TokenStore{kv: kv, prefix: prefix, log: log}
}

func (s *TokenStore) Token(ctx context.Context) (string, bool, error) {
	v, ok, err := s.kv.Get(ctx, s.prefix+TokenKey)
	if err != nil {
		return "", false, fmt.Errorf("token store: get token: %w", err)
	}
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	if err := s.kv.Set(ctx, s.prefix+TokenKey, token); err != nil {
		return fmt.Errorf("token store: set token: %w", err)
	}
	return nil
}

func (s *TokenStore) RemoveToken(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.prefix+TokenKey); err != nil {
		return fmt.Errorf("token store: remove token: %w", err)
	}
	return nil
}

func (s *TokenStore) User(ctx context.Context) (*domain.User, bool, error) {
	raw, ok, err := s.kv.Get(ctx, s.prefix+UserKey)
	if err != nil {
		return nil, false, fmt.Errorf("token store: get user: %w", err)
	}
	if !ok || raw == "" {
		return nil, false, nil
	}

	var u *domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn().Err(err).Msg("stored user record is malformed, ignoring")
		return nil, false, nil
	}
	// null, {} and records without a role decode cleanly but name nobody.
	if u == nil || (u.ID == 0 && u.Email == "") || u.Role == "" {
		s.log.Warn().Msg("stored user record is malformed, ignoring")
		return nil, false, nil
	}
	return u, true, nil
}

func (s *TokenStore) SetUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return s.RemoveUser(ctx)
	}
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("token store: encode user: %w", err)
	}
	if err := s.kv.Set(ctx, s.prefix+UserKey, string(b)); err != nil {
		return fmt.Errorf("token store: set user: %w", err)
	}
	return nil
}

func (s *TokenStore) RemoveUser(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.prefix+UserKey); err != nil {
		return fmt.Errorf("token store: remove user: %w", err)
	}
	return nil
}

func (s *TokenStore) Checkpoint(ctx context.Context) (ports.StoreCheckpoint, error) {
	var cp ports.StoreCheckpoint
	var err error
	if cp.Token, cp.HasToken, err = s.kv.Get(ctx, s.prefix+TokenKey); err != nil {
		return cp, fmt.Errorf("token store: checkpoint token: %w", err)
	}
	if cp.User, cp.HasUser, err = s.kv.Get(ctx, s.prefix+UserKey); err != nil {
		return cp, fmt.Errorf("token store: checkpoint user: %w", err)
	}
	return cp, nil
}

// Restore writes a checkpoint back byte for byte. Both keys are attempted
// even when the first fails.
func (s *TokenStore) Restore(ctx context.Context, cp ports.StoreCheckpoint) error {
	return errors.Join(
		s.restoreKey(ctx, TokenKey, cp.Token, cp.HasToken),
		s.restoreKey(ctx, UserKey, cp.User, cp.HasUser),
	)
}

func (s *TokenStore) restoreKey(ctx context.Context, key, value string, present bool) error {
	var err error
	if present {
		err = s.kv.Set(ctx, s.prefix+key, value)
	} else {
		err = s.kv.Delete(ctx, s.prefix+key)
	}
	if err != nil {
		return fmt.Errorf("token store: restore %s: %w", key, err)
	}
	return nil
}
