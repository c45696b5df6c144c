package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/hospital-ms/hms-portal/internal/core/ports"
)

const (
	defaultRefreshBefore   = 2 * time.Minute
	defaultRefreshInterval = 30 * time.Second
)

// RefresherConfig controls when the token is refreshed ahead of expiry.
type RefresherConfig struct {
	Before   time.Duration
	Interval time.Duration
	// OnResult, when set, is called after every attempted refresh.
	OnResult func(err error)
}

// Refresher keeps the session token fresh by refreshing it shortly before
// its exp claim. It never logs the user out.
type Refresher struct {
	sessions ports.SessionService
	cfg      RefresherConfig
	now      func() time.Time
	log      zerolog.Logger
}

// NewRefresher applies defaults for zero durations.
func NewRefresher(sessions ports.SessionService, cfg RefresherConfig, log zerolog.Logger) *Refresher {
	if cfg.Before <= 0 {
		cfg.Before = defaultRefreshBefore
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultRefreshInterval
	}
	return &Refresher{sessions: sessions, cfg: cfg, now: time.Now, log: log}
}

// Run checks the token every interval until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	t := time.NewTicker(r.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Tick(ctx)
		}
	}
}

// Tick refreshes the token if it expires within the configured window and
// reports whether a refresh was attempted.
func (r *Refresher) Tick(ctx context.Context) bool {
	snap := r.sessions.Snapshot()
	if !snap.Authenticated() {
		return false
	}

	exp, ok := TokenExpiry(snap.Token)
	if !ok || exp.Sub(r.now()) > r.cfg.Before {
		return false
	}

	err := r.sessions.Refresh(ctx)
	if err != nil {
		r.log.Warn().Err(err).Time("expires_at", exp).Msg("proactive token refresh failed")
	} else {
		r.log.Debug().Time("expires_at", exp).Msg("token refreshed ahead of expiry")
	}
	if r.cfg.OnResult != nil {
		r.cfg.OnResult(err)
	}
	return true
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// Opaque tokens and tokens without exp report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
