package domain

// SessionState is the lifecycle position of the application's session.
type SessionState string

const (
	StateUninitialized   SessionState = "uninitialized"
	StateHydrating       SessionState = "hydrating"
	StateAuthenticated   SessionState = "authenticated"
	StateUnauthenticated SessionState = "unauthenticated"
	StateLoggingIn       SessionState = "logging_in"
	StateLoggingOut      SessionState = "logging_out"
	StateRefreshing      SessionState = "refreshing"
)

// Hydrated reports whether the one-time restore from storage has finished.
func (s SessionState) Hydrated() bool {
	return s != StateUninitialized && s != StateHydrating
}

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	State   SessionState
	Token   string
	User    *User
	Loading bool
}

// Authenticated holds only when both halves of the credential pair are present.
func (s Snapshot) Authenticated() bool {
	return s.Token != "" && s.User != nil
}
