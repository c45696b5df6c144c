package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConnectivity       = errors.New("unable to reach authentication service")
	ErrProtocol           = errors.New("unexpected response from authentication service")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrForbidden          = errors.New("access forbidden")
)

// AuthErrorKind classifies a failed call to the authentication backend.
type AuthErrorKind string

const (
	KindCredentials  AuthErrorKind = "credentials"
	KindConnectivity AuthErrorKind = "connectivity"
	KindProtocol     AuthErrorKind = "protocol"
)

// AuthError is returned by the auth API client for every failed call.
// Message is safe to show to the end user.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.sentinel().Error()
}

// Unwrap exposes both the underlying cause and the sentinel for the kind, so
// errors.Is(err, ErrInvalidCredentials) works on any credential failure.
func (e *AuthError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.sentinel(), e.Err}
	}
	return []error{e.sentinel()}
}

func (e *AuthError) sentinel() error {
	switch e.Kind {
	case KindCredentials:
		return ErrInvalidCredentials
	case KindConnectivity:
		return ErrConnectivity
	default:
		return ErrProtocol
	}
}

// NewCredentialsError wraps a backend rejection, keeping the backend's message.
func NewCredentialsError(msg string) *AuthError {
	if msg == "" {
		msg = ErrInvalidCredentials.Error()
	}
	return &AuthError{Kind: KindCredentials, Message: msg}
}

// NewConnectivityError reports a call that never produced a backend answer.
func NewConnectivityError(cause error) *AuthError {
	return &AuthError{Kind: KindConnectivity, Message: ErrConnectivity.Error(), Err: cause}
}

// NewProtocolError reports a backend answer the client could not understand.
func NewProtocolError(cause error) *AuthError {
	return &AuthError{Kind: KindProtocol, Message: ErrProtocol.Error(), Err: cause}
}
