package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
)

// SessionManager owns the application's authentication session. It is the
// only writer of the TokenStore.
//
// Login, Logout, Refresh and Hydrate are serialized: a call made while
// another is in flight waits for it to finish (or for its own context to
// end). Observers are notified in transition order from inside that lock and
// must not call back into the manager.
type SessionManager struct {
	store  ports.TokenStore
	client ports.AuthClient
	log    zerolog.Logger

	ops chan struct{}

	mu      sync.RWMutex
	state   domain.SessionState
	token   string
	user    *domain.User
	loading bool

	obsMu     sync.RWMutex
	observers []subscription
	nextObs   int
}

type subscription struct {
	id int
	o  ports.SessionObserver
}

// NewSessionManager returns an uninitialized session. Call Hydrate once the
// application starts.
func NewSessionManager(store ports.TokenStore, client ports.AuthClient, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		store:   store,
		client:  client,
		log:     log,
		ops:     make(chan struct{}, 1),
		state:   domain.StateUninitialized,
		loading: true,
	}
}

// Subscribe registers o for every future transition and returns a function
// that removes it. Observers are called in subscription order.
func (m *SessionManager) Subscribe(o ports.SessionObserver) func() {
	m.obsMu.Lock()
	id := m.nextObs
	m.nextObs++
	m.observers = append(m.observers, subscription{id: id, o: o})
	m.obsMu.Unlock()

	return func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		for i, sub := range m.observers {
			if sub.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a copy of the current session.
func (m *SessionManager) Snapshot() domain.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Hydrate restores the session from the TokenStore. Only the first call reads
// storage; later calls return the current snapshot.
func (m *SessionManager) Hydrate(ctx context.Context) domain.Snapshot {
	if err := m.acquire(ctx); err != nil {
		return m.Snapshot()
	}
	defer m.release()

	m.hydrateLocked(ctx)
	return m.Snapshot()
}

// Login authenticates against the backend and, on success, persists and
// installs the new token and user. On failure neither storage nor memory
// changes.
func (m *SessionManager) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := m.acquire(ctx); err != nil {
		return nil, err
	}
	defer m.release()

	m.hydrateLocked(ctx)
	prev := m.begin(domain.StateLoggingIn)

	res, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.finish(prev)
		m.log.Info().Err(err).Str("email", email).Msg("login rejected")
		return nil, err
	}
	if res == nil || res.Token == "" || res.User == nil {
		m.finish(prev)
		return nil, domain.NewProtocolError(errors.New("login response missing token or user"))
	}

	// The caller may have gone away; the result is still recorded.
	if err := m.persist(context.WithoutCancel(ctx), res.Token, res.User); err != nil {
		m.finish(prev)
		return nil, err
	}

	user := res.User.Clone()
	m.set(domain.StateAuthenticated, res.Token, user)
	m.log.Info().
		Int64("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("login succeeded")
	return user.Clone(), nil
}

// Logout invalidates the token remotely on a best-effort basis and then
// always clears storage and memory. The returned error only reports storage
// that could not be cleared; the in-memory session is cleared regardless.
func (m *SessionManager) Logout(ctx context.Context) error {
	if err := m.acquire(ctx); err != nil {
		return err
	}
	defer m.release()

	m.hydrateLocked(ctx)
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()
	m.begin(domain.StateLoggingOut)

	if token != "" {
		if err := m.remoteLogout(ctx, token); err != nil {
			m.log.Warn().Err(err).Msg("remote logout failed, clearing local session anyway")
		}
	}

	local := context.WithoutCancel(ctx)
	var errs []error
	if err := m.store.RemoveToken(local); err != nil {
		errs = append(errs, err)
	}
	if err := m.store.RemoveUser(local); err != nil {
		errs = append(errs, err)
	}

	m.set(domain.StateUnauthenticated, "", nil)
	if len(errs) > 0 {
		err := errors.Join(errs...)
		m.log.Error().Err(err).Msg("failed to clear persisted session")
		return err
	}
	m.log.Info().Msg("logged out")
	return nil
}

// Refresh swaps the current token for a new one, leaving the user untouched.
// A failed refresh leaves the session as it was; logging out is the caller's
// decision.
func (m *SessionManager) Refresh(ctx context.Context) error {
	if err := m.acquire(ctx); err != nil {
		return err
	}
	defer m.release()

	m.hydrateLocked(ctx)
	m.mu.RLock()
	authenticated := m.snapshotLocked().Authenticated()
	token := m.token
	m.mu.RUnlock()
	if !authenticated {
		return domain.ErrNotAuthenticated
	}

	prev := m.begin(domain.StateRefreshing)
	fresh, err := m.client.Refresh(ctx, token)
	if err != nil {
		m.finish(prev)
		m.log.Warn().Err(err).Msg("token refresh failed")
		return err
	}
	if fresh == "" {
		m.finish(prev)
		return domain.NewProtocolError(errors.New("refresh response missing token"))
	}

	if err := m.store.SetToken(context.WithoutCancel(ctx), fresh); err != nil {
		m.finish(prev)
		return err
	}

	m.mu.Lock()
	m.token = fresh
	m.state = domain.StateAuthenticated
	m.loading = false
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)

	m.log.Debug().Msg("token refreshed")
	return nil
}

func (m *SessionManager) acquire(ctx context.Context) error {
	select {
	case m.ops <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *SessionManager) release() {
	<-m.ops
}

// hydrateLocked must be called with the operation lock held.
func (m *SessionManager) hydrateLocked(ctx context.Context) {
	m.mu.RLock()
	state := m.state
	m.mu.RUnlock()
	if state != domain.StateUninitialized {
		return
	}

	m.begin(domain.StateHydrating)

	token, user := m.readPersisted(ctx)
	if token != "" && user != nil {
		m.set(domain.StateAuthenticated, token, user)
		m.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("session restored")
		return
	}
	m.set(domain.StateUnauthenticated, "", nil)
	m.log.Debug().Msg("no stored session")
}

func (m *SessionManager) readPersisted(ctx context.Context) (string, *domain.User) {
	token, ok, err := m.store.Token(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("could not read stored token")
		return "", nil
	}
	if !ok {
		return "", nil
	}
	user, ok, err := m.store.User(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("could not read stored user")
		return "", nil
	}
	if !ok {
		return "", nil
	}
	return token, user
}

// persist writes the credential pair. If either write fails, the records
// that were stored before are put back exactly as they were.
func (m *SessionManager) persist(ctx context.Context, token string, user *domain.User) error {
	cp, err := m.store.Checkpoint(ctx)
	if err != nil {
		return err
	}

	if err := m.store.SetToken(ctx, token); err != nil {
		m.restore(ctx, cp)
		return err
	}
	if err := m.store.SetUser(ctx, user); err != nil {
		m.restore(ctx, cp)
		return err
	}
	return nil
}

func (m *SessionManager) restore(ctx context.Context, cp ports.StoreCheckpoint) {
	if err := m.store.Restore(ctx, cp); err != nil {
		m.log.Error().Err(err).Msg("failed to restore stored session")
	}
}

func (m *SessionManager) remoteLogout(ctx context.Context, token string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("remote logout panicked: %v", r)
		}
	}()
	return m.client.Logout(ctx, token)
}

// begin enters a transient state and returns the state to go back to.
func (m *SessionManager) begin(state domain.SessionState) domain.SessionState {
	m.mu.Lock()
	prev := m.state
	m.state = state
	m.loading = true
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
	return prev
}

// finish leaves a transient state without touching the credentials.
func (m *SessionManager) finish(prev domain.SessionState) {
	m.mu.Lock()
	m.state = prev
	m.loading = false
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
}

// set installs a settled state; token and user always change together.
func (m *SessionManager) set(state domain.SessionState, token string, user *domain.User) {
	m.mu.Lock()
	m.state = state
	m.token = token
	m.user = user
	m.loading = false
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(snap)
}

func (m *SessionManager) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		State:   m.state,
		Token:   m.token,
		User:    m.user.Clone(),
		Loading: m.loading,
	}
}

func (m *SessionManager) notify(s domain.Snapshot) {
	m.obsMu.RLock()
	defer m.obsMu.RUnlock()
	for _, sub := range m.observers {
		snap := s
		snap.User = s.User.Clone()
		sub.o.OnSession(snap)
	}
}
