// Package nav models the portal's views as paths and gates navigation
// between them with guards that consult the session.
package nav

import (
	"net/url"

	"github.com/dmitrijs2005/labportal/internal/client/session"
)

// Well-known paths.
const (
	PathRoot      = "/"
	PathLogin     = "/login"
	PathRegister  = "/registro"
	PathRecover   = "/recuperar-password"
	PathDashboard = "/dashboard"
	PathProfile   = "/perfil"
	PathResults   = "/resultados"
	PathUsers     = "/admin/usuarios"

	PathLaboratories = "/laboratorios"
	PathAnalyses     = "/analisis"
	PathAppointments = "/citas"
)

// ReturnURLParam is the query parameter carrying the originally requested
// path through a login redirect.
const ReturnURLParam = "returnUrl"

// SessionView is the read-only session surface guards need.
type SessionView interface {
	IsAuthenticated() bool
	HasRole(roles ...session.Role) bool
}

// Decision is a guard outcome: allow, or redirect elsewhere.
type Decision struct {
	Allow    bool
	Redirect string
}

// Allow lets navigation proceed.
func Allow() Decision { return Decision{Allow: true} }

// RedirectTo cancels navigation in favour of path.
func RedirectTo(path string) Decision { return Decision{Redirect: path} }

// Guard decides whether target, resolved to route, may be entered.
type Guard func(route Route, target string) Decision

// LoginRedirect builds the login path that returns to target afterwards.
func LoginRedirect(target string) string {
	q := url.Values{}
	q.Set(ReturnURLParam, target)
	return PathLogin + "?" + q.Encode()
}

// AuthGuard allows authenticated users and sends everyone else to the
// login view with the attempted path as returnUrl.
func AuthGuard(s SessionView) Guard {
	return func(_ Route, target string) Decision {
		if s.IsAuthenticated() {
			return Allow()
		}
		return RedirectTo(LoginRedirect(target))
	}
}

// RoleGuard allows authenticated users holding one of the route's roles.
// Unauthenticated users go to the login view without a returnUrl; users
// lacking the role go to the dashboard. A route without roles admits any
// authenticated user.
func RoleGuard(s SessionView) Guard {
	return func(route Route, _ string) Decision {
		if !s.IsAuthenticated() {
			return RedirectTo(PathLogin)
		}
		if len(route.Roles) == 0 {
			return Allow()
		}
		if s.HasRole(route.Roles...) {
			return Allow()
		}
		return RedirectTo(PathDashboard)
	}
}
