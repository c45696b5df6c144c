package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital-ms/hms-portal/internal/api/metrics"
	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

// UserKey is the echo context key holding the *domain.User of a rendered view.
const UserKey = "user"

// SessionReader exposes the current session snapshot.
type SessionReader interface {
	Snapshot() domain.Snapshot
}

// RequireSession admits any authenticated user.
func RequireSession(sessions SessionReader) echo.MiddlewareFunc {
	return guard(sessions, nil)
}

// RequireRole admits only users holding role; everyone else authenticated is
// sent to their own landing view.
func RequireRole(sessions SessionReader, role domain.Role) echo.MiddlewareFunc {
	return guard(sessions, &role)
}

// guard evaluates domain.Decide on every request, so a logout elsewhere in
// the application retracts access on the next request.
func guard(sessions SessionReader, required *domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := domain.Decide(sessions.Snapshot(), required)
			metrics.GuardDecisionsTotal.WithLabelValues(c.Path(), string(d.Kind)).Inc()

			switch d.Kind {
			case domain.DecisionLoading:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			case domain.DecisionRedirect:
				return c.Redirect(http.StatusFound, d.Path)
			}

			c.Set(UserKey, d.User)
			return next(c)
		}
	}
}
