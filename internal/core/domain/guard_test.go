package domain

import "testing"

func rolePtr(r Role) *Role { return &r }

func authedSnapshot(role Role) Snapshot {
	return Snapshot{
		State: StateAuthenticated,
		Token: "abc123",
		User:  &User{ID: 3, Email: "user@hms.com", Role: role, IsActive: true},
	}
}

func TestDecide_LoadingBeforeHydration(t *testing.T) {
	for _, st := range []SessionState{StateUninitialized, StateHydrating} {
		d := Decide(Snapshot{State: st}, rolePtr(RoleDoctor))
		if d.Kind != DecisionLoading {
			t.Fatalf("state %s: expected loading, got %s", st, d.Kind)
		}
		if d.Path != "" {
			t.Fatalf("state %s: loading must not redirect, got %q", st, d.Path)
		}
	}
}

func TestDecide_UnauthenticatedRedirectsToLogin(t *testing.T) {
	d := Decide(Snapshot{State: StateUnauthenticated}, nil)
	if d.Kind != DecisionRedirect || d.Path != LoginPath {
		t.Fatalf("expected redirect to %s, got %+v", LoginPath, d)
	}
}

func TestDecide_PartialStateIsUnauthenticated(t *testing.T) {
	cases := []Snapshot{
		{State: StateAuthenticated, Token: "abc123"},
		{State: StateAuthenticated, User: &User{ID: 1, Role: RoleAdmin}},
	}
	for i, s := range cases {
		d := Decide(s, nil)
		if d.Kind != DecisionRedirect || d.Path != LoginPath {
			t.Fatalf("case %d: expected redirect to login, got %+v", i, d)
		}
	}
}

func TestDecide_RoleMismatchRedirectsToOwnLanding(t *testing.T) {
	d := Decide(authedSnapshot(RoleStaff), rolePtr(RoleDoctor))
	if d.Kind != DecisionRedirect {
		t.Fatalf("expected redirect, got %s", d.Kind)
	}
	if d.Path != StaffLandingPath {
		t.Fatalf("expected %s, got %s", StaffLandingPath, d.Path)
	}
	if d.User != nil {
		t.Fatalf("mismatched view must not receive the user")
	}
}

func TestDecide_UnknownRoleFallsBackToStaffLanding(t *testing.T) {
	d := Decide(authedSnapshot(Role("NURSE")), rolePtr(RoleAdmin))
	if d.Kind != DecisionRedirect || d.Path != StaffLandingPath {
		t.Fatalf("expected redirect to staff landing, got %+v", d)
	}
}

func TestDecide_RendersMatchingRole(t *testing.T) {
	s := authedSnapshot(RoleDoctor)
	d := Decide(s, rolePtr(RoleDoctor))
	if d.Kind != DecisionRender {
		t.Fatalf("expected render, got %+v", d)
	}
	if d.User == nil || d.User.Email != "user@hms.com" {
		t.Fatalf("unexpected user: %+v", d.User)
	}
	d.User.Email = "changed"
	if s.User.Email != "user@hms.com" {
		t.Fatalf("decision user must be a copy")
	}
}

func TestDecide_NoRequiredRoleRendersAnyRole(t *testing.T) {
	for _, r := range Roles() {
		if d := Decide(authedSnapshot(r), nil); d.Kind != DecisionRender {
			t.Fatalf("role %s: expected render, got %+v", r, d)
		}
	}
}
