package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

type fixedSession struct {
	snap domain.Snapshot
}

func (f *fixedSession) Snapshot() domain.Snapshot { return f.snap }

func authed(role domain.Role) *fixedSession {
	return &fixedSession{snap: domain.Snapshot{
		State: domain.StateAuthenticated,
		Token: "abc123",
		User:  &domain.User{ID: 7, Email: "user@hms.com", Role: role, IsActive: true},
	}}
}

func serveGuarded(t *testing.T, mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/doctor/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/doctor/dashboard")

	rendered := false
	handler := mw(func(c echo.Context) error {
		rendered = true
		if _, ok := c.Get(UserKey).(*domain.User); !ok {
			t.Fatalf("user not injected into context")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, rendered
}

func TestGuard_RendersMatchingRole(t *testing.T) {
	rec, rendered := serveGuarded(t, RequireRole(authed(domain.RoleDoctor), domain.RoleDoctor))
	if !rendered || rec.Code != http.StatusOK {
		t.Fatalf("expected render, got %d rendered=%v", rec.Code, rendered)
	}
}

func TestGuard_StaffOnDoctorViewRedirects(t *testing.T) {
	rec, rendered := serveGuarded(t, RequireRole(authed(domain.RoleStaff), domain.RoleDoctor))
	if rendered {
		t.Fatalf("protected content must not render")
	}
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/staff/dashboard" {
		t.Fatalf("expected 302 to /staff/dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestGuard_AnonymousRedirectsToLogin(t *testing.T) {
	rec, rendered := serveGuarded(t, RequireSession(&fixedSession{snap: domain.Snapshot{State: domain.StateUnauthenticated}}))
	if rendered || rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected 302 to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestGuard_LoadingWhileHydrating(t *testing.T) {
	rec, rendered := serveGuarded(t, RequireRole(&fixedSession{snap: domain.Snapshot{State: domain.StateHydrating, Loading: true}}, domain.RoleDoctor))
	if rendered {
		t.Fatalf("must not render while hydrating")
	}
	if rec.Code != http.StatusServiceUnavailable || rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected 503 with Retry-After, got %d %q", rec.Code, rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("Location") != "" {
		t.Fatalf("loading must not redirect")
	}
}

func TestGuard_ReevaluatedPerRequest(t *testing.T) {
	sess := authed(domain.RoleDoctor)
	mw := RequireRole(sess, domain.RoleDoctor)

	if _, rendered := serveGuarded(t, mw); !rendered {
		t.Fatalf("first request should render")
	}
	sess.snap = domain.Snapshot{State: domain.StateUnauthenticated}
	rec, rendered := serveGuarded(t, mw)
	if rendered || rec.Header().Get("Location") != "/login" {
		t.Fatalf("logout must retract access on the next request")
	}
}
