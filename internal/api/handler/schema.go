package handler

import "github.com/hospital-ms/hms-portal/internal/core/domain"

// envelope mirrors the backend's {success, data, error} response shape.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN DOCTOR STAFF PATIENT"`
}

type loginData struct {
	Token    string       `json:"token,omitempty"`
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect,omitempty"`
}

type tokenData struct {
	Token string `json:"token"`
}

type logoutResponse struct {
	Success  bool   `json:"success"`
	Redirect string `json:"redirect"`
}

type refreshData struct {
	TokenRefreshed bool `json:"token_refreshed"`
}

type sessionView struct {
	State         string       `json:"state"`
	Authenticated bool         `json:"authenticated"`
	Loading       bool         `json:"loading"`
	HasToken      bool         `json:"has_token"`
	User          *domain.User `json:"user,omitempty"`
	Landing       string       `json:"landing,omitempty"`
}

type viewResponse struct {
	View     string       `json:"view"`
	Title    string       `json:"title"`
	Greeting string       `json:"greeting,omitempty"`
	User     *domain.User `json:"user,omitempty"`
	Sections []string     `json:"sections,omitempty"`
}
