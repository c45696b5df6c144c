package service

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Key-value stub
// ---------------------------------------------------------------------------

type stubKV struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr map[string]error
	delErr error
}

func newStubKV() *stubKV {
	return &stubKV{data: make(map[string]string), setErr: make(map[string]error)}
}

func (s *stubKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setErr[key]; err != nil {
		return err
	}
	s.data[key] = value
	return nil
}

func (s *stubKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.data, key)
	return nil
}

func (s *stubKV) dump() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.data)
}

// ---------------------------------------------------------------------------
// Auth client stub
// ---------------------------------------------------------------------------

type stubAuthClient struct {
	loginFn   func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	logoutFn  func(ctx context.Context, token string) error
	refreshFn func(ctx context.Context, token string) (string, error)

	mu          sync.Mutex
	loginCalls  int
	logoutCalls int
}

func (c *stubAuthClient) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	c.mu.Lock()
	c.loginCalls++
	c.mu.Unlock()
	if c.loginFn == nil {
		return nil, errors.New("login not stubbed")
	}
	return c.loginFn(ctx, email, password)
}

func (c *stubAuthClient) Logout(ctx context.Context, token string) error {
	c.mu.Lock()
	c.logoutCalls++
	c.mu.Unlock()
	if c.logoutFn == nil {
		return nil
	}
	return c.logoutFn(ctx, token)
}

func (c *stubAuthClient) Refresh(ctx context.Context, token string) (string, error) {
	if c.refreshFn == nil {
		return "", errors.New("refresh not stubbed")
	}
	return c.refreshFn(ctx, token)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func doctorUser() *domain.User {
	return &domain.User{ID: 3, Email: "doctor@hms.com", Role: domain.RoleDoctor, IsActive: true}
}

const doctorJSON = `{"id":3,"email":"doctor@hms.com","role":"DOCTOR","is_active":true}`

func seededKV(token, userJSON string) *stubKV {
	kv := newStubKV()
	if token != "" {
		kv.data[TokenKey] = token
	}
	if userJSON != "" {
		kv.data[UserKey] = userJSON
	}
	return kv
}
