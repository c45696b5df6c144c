package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hospital-ms/hms-portal/internal/api/metrics"
	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
)

// SessionHandler drives the application's session from the portal shell.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// LoginView handles GET /login.
//
// @Summary      Login view
// @Tags         session
// @Produce      json
// @Success      200  {object}  viewResponse
// @Success      302  "Already signed in, redirected to the landing view"
// @Failure      503  {object}  map[string]string
// @Router       /login [get]
func (h *SessionHandler) LoginView(c echo.Context) error {
	snap := h.sessions.Snapshot()
	if !snap.State.Hydrated() {
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	if snap.Authenticated() {
		return c.Redirect(http.StatusFound, domain.LandingPath(snap.User.Role))
	}
	return c.JSON(http.StatusOK, viewResponse{View: "login", Title: "Sign in"})
}

// Login handles POST /login.
//
// @Summary      Sign in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  envelope{data=loginData}
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Failure      422   {object}  envelope
// @Failure      502   {object}  envelope
// @Router       /login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, envelope{Error: err.Error()})
	}

	start := time.Now()
	user, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	metrics.SessionOperationDuration.WithLabelValues("login").Observe(time.Since(start).Seconds())
	metrics.LoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return sessionFailure(c, err)
	}

	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Data:    loginData{User: user, Redirect: domain.LandingPath(user.Role)},
	})
}

// Logout handles POST /logout. It always succeeds from the user's point of
// view.
//
// @Summary      Sign out
// @Tags         session
// @Produce      json
// @Success      200  {object}  logoutResponse
// @Router       /logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	start := time.Now()
	err := h.sessions.Logout(c.Request().Context())
	metrics.SessionOperationDuration.WithLabelValues("logout").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LogoutsTotal.WithLabelValues("error").Inc()
	} else {
		metrics.LogoutsTotal.WithLabelValues("success").Inc()
	}

	return c.JSON(http.StatusOK, logoutResponse{Success: true, Redirect: domain.LoginPath})
}

// Refresh handles POST /session/refresh.
//
// @Summary      Refresh the session token
// @Tags         session
// @Produce      json
// @Success      200  {object}  envelope{data=refreshData}
// @Failure      401  {object}  envelope
// @Failure      502  {object}  envelope
// @Router       /session/refresh [post]
func (h *SessionHandler) Refresh(c echo.Context) error {
	start := time.Now()
	err := h.sessions.Refresh(c.Request().Context())
	metrics.SessionOperationDuration.WithLabelValues("refresh").Observe(time.Since(start).Seconds())
	metrics.RefreshesTotal.WithLabelValues("manual", metrics.Result(err)).Inc()
	if err != nil {
		return sessionFailure(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: refreshData{TokenRefreshed: true}})
}

// Session handles GET /session. The token itself is never exposed.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionView
// @Router       /session [get]
func (h *SessionHandler) Session(c echo.Context) error {
	snap := h.sessions.Snapshot()
	view := sessionView{
		State:         string(snap.State),
		Authenticated: snap.Authenticated(),
		Loading:       snap.Loading,
		HasToken:      snap.Token != "",
	}
	if snap.Authenticated() {
		view.User = snap.User
		view.Landing = domain.LandingPath(snap.User.Role)
	}
	return c.JSON(http.StatusOK, view)
}

// sessionFailure renders a failed session operation as an envelope. Errors
// it does not recognise go to the central error handler.
func sessionFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return c.JSON(http.StatusUnauthorized, envelope{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, envelope{Error: err.Error()})
	case errors.Is(err, domain.ErrConnectivity), errors.Is(err, domain.ErrProtocol):
		return c.JSON(http.StatusBadGateway, envelope{Error: err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, envelope{Error: "session is busy, try again"})
	}
	return err
}
