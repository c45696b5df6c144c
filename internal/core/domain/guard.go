package domain

// DecisionKind is the outcome of evaluating a guarded view.
type DecisionKind string

const (
	DecisionLoading  DecisionKind = "loading"
	DecisionRedirect DecisionKind = "redirect"
	DecisionRender   DecisionKind = "render"
)

// Decision tells the shell what to do with a guarded view.
// Path is set for redirects, User for renders.
type Decision struct {
	Kind DecisionKind
	Path string
	User *User
}

// Decide is the route authorization policy. A nil required role admits any
// authenticated user.
func Decide(s Snapshot, required *Role) Decision {
	if !s.State.Hydrated() {
		return Decision{Kind: DecisionLoading}
	}
	if !s.Authenticated() {
		return Decision{Kind: DecisionRedirect, Path: LoginPath}
	}
	if required != nil && s.User.Role != *required {
		return Decision{Kind: DecisionRedirect, Path: LandingPath(s.User.Role)}
	}
	return Decision{Kind: DecisionRender, User: s.User.Clone()}
}
