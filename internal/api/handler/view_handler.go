package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

// dashboardSections lists the navigation entries each role's dashboard links to.
var dashboardSections = map[domain.Role][]string{
	domain.RoleAdmin:   {"users", "departments", "reports"},
	domain.RoleDoctor:  {"appointments", "patients", "lab-orders"},
	domain.RoleStaff:   {"registrations", "appointments", "billing"},
	domain.RolePatient: {"appointments", "lab-results", "profile"},
}

// ViewHandler renders the guarded views. It trusts the route guard for
// authorization and only reads the admitted user.
type ViewHandler struct{}

func NewViewHandler() *ViewHandler {
	return &ViewHandler{}
}

// Dashboard returns the handler for a role's landing view.
//
// @Summary      Role dashboard
// @Tags         views
// @Produce      json
// @Param        role  path  string  true  "admin, doctor, staff or patient"
// @Success      200   {object}  viewResponse
// @Success      302   "Redirected to login or to the user's own dashboard"
// @Failure      503   {object}  map[string]string
// @Router       /{role}/dashboard [get]
func (h *ViewHandler) Dashboard(role domain.Role) echo.HandlerFunc {
	name := strings.ToLower(string(role))
	title := strings.ToUpper(name[:1]) + name[1:] + " Dashboard"

	return func(c echo.Context) error {
		user, err := ctxUser(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, viewResponse{
			View:     name + "-dashboard",
			Title:    title,
			Greeting: "Welcome, " + user.DisplayName(),
			User:     user,
			Sections: dashboardSections[role],
		})
	}
}

// Home handles GET / by sending the user to their landing view.
//
// @Summary      Home
// @Tags         views
// @Success      302  "Redirected to the landing view or to login"
// @Router       / [get]
func (h *ViewHandler) Home(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, domain.LandingPath(user.Role))
}
