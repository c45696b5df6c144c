package domain

import (
	"fmt"
	"strings"
)

// Role is the single role a portal user holds.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDoctor  Role = "DOCTOR"
	RoleStaff   Role = "STAFF"
	RolePatient Role = "PATIENT"
)

// Landing routes for each role.
const (
	LoginPath          = "/login"
	AdminLandingPath   = "/admin/dashboard"
	DoctorLandingPath  = "/doctor/dashboard"
	StaffLandingPath   = "/staff/dashboard"
	PatientLandingPath = "/patient/dashboard"
	DefaultLandingPath = StaffLandingPath
)

var landingPaths = map[Role]string{
	RoleAdmin:   AdminLandingPath,
	RoleDoctor:  DoctorLandingPath,
	RoleStaff:   StaffLandingPath,
	RolePatient: PatientLandingPath,
}

// Roles lists every known role in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleDoctor, RoleStaff, RolePatient}
}

// ParseRole converts a case-insensitive role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := landingPaths[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := landingPaths[r]
	return ok
}

// LandingPath returns the default view for a role. Unknown roles land on the
// staff dashboard.
func LandingPath(r Role) string {
	if p, ok := landingPaths[r]; ok {
		return p
	}
	return DefaultLandingPath
}

// RouteRole resolves the role a guarded path requires. The root path admits
// any signed-in user and yields a nil role; ok is false for unguarded paths.
func RouteRole(path string) (role *Role, ok bool) {
	if path == "/" {
		return nil, true
	}
	for r, p := range landingPaths {
		if p == path {
			r := r
			return &r, true
		}
	}
	return nil, false
}

// User is the cached identity record returned by the backend at login.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// DisplayName is the name shown in dashboards.
func (u *User) DisplayName() string {
	return u.Email
}

// Clone returns a copy that shares no memory with u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
