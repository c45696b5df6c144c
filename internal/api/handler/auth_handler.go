package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
	"github.com/hospital-ms/hms-portal/internal/core/ports"
)

// AuthHandler serves the development backend's /auth endpoints using the
// {success, data, error} envelope the portal consumes.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  envelope{data=loginData}
// @Failure      400   {object}  envelope
// @Failure      409   {object}  envelope
// @Failure      422   {object}  envelope
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, envelope{Error: err.Error()})
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		return authFailure(c, err)
	}
	return c.JSON(http.StatusCreated, envelope{Success: true, Data: loginData{User: user}})
}

// Login authenticates a user and returns a JWT.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope{data=loginData}
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Failure      403   {object}  envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, envelope{Error: "invalid payload"})
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return authFailure(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: loginData{Token: token, User: user}})
}

// Refresh exchanges the presented token for a new one.
//
// @Summary      Refresh token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=tokenData}
// @Failure      401  {object}  envelope
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token, err := ctxToken(c)
	if err != nil {
		return err
	}

	fresh, err := h.authService.Refresh(c.Request().Context(), token)
	if err != nil {
		return authFailure(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: tokenData{Token: fresh}})
}

// Logout revokes the presented token.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Failure      401  {object}  envelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := ctxToken(c)
	if err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return authFailure(c, err)
	}
	return c.JSON(http.StatusOK, envelope{Success: true})
}

func authFailure(c echo.Context, err error) error {
	status := 0
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrNotAuthenticated), errors.Is(err, domain.ErrTokenRevoked):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserInactive):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrUserExists):
		status = http.StatusConflict
	default:
		return err
	}
	return c.JSON(status, envelope{Error: msg})
}
