package service

import (
	"github.com/rs/zerolog"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
)

// LogTransitions returns an observer that records every session transition
// at debug level. The token is reduced to a presence flag.
func LogTransitions(log zerolog.Logger) ports.SessionObserver {
	return ports.SessionObserverFunc(func(s domain.Snapshot) {
		ev := log.Debug().
			Str("state", string(s.State)).
			Bool("loading", s.Loading).
			Bool("has_token", s.Token != "")
		if s.User != nil {
			ev = ev.Int64("user_id", s.User.ID).Str("role", string(s.User.Role))
		}
		ev.Msg("session transition")
	})
}
