package nav

import (
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/dmitrijs2005/labportal/internal/client/session"
	"github.com/dmitrijs2005/labportal/internal/pubsub"
)

// MaxRedirects bounds how many redirects one navigation may follow.
const MaxRedirects = 8

var (
	ErrRedirectLoop = errors.New("too many redirects")
	ErrInvalidPath  = errors.New("invalid path")
)

// Route is one entry of the route table.
type Route struct {
	Path       string
	Title      string
	Roles      []session.Role
	Guards     []Guard
	RedirectTo string
}

// Router resolves navigation requests against a route table.
type Router struct {
	mu       sync.Mutex
	routes   map[string]Route
	fallback string
	current  *pubsub.Subject[string]
}

// NewRouter builds a router. Unknown paths are sent to fallback.
func NewRouter(routes []Route, fallback string) *Router {
	m := make(map[string]Route, len(routes))
	for _, r := range routes {
		m[r.Path] = r
	}
	return &Router{routes: m, fallback: fallback, current: pubsub.NewSubject("")}
}

// Navigate resolves target, following route redirects and guard decisions,
// and makes the final location current. It returns where the user landed.
func (r *Router) Navigate(target string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hops := 0; hops <= MaxRedirects; hops++ {
		u, err := url.Parse(target)
		if err != nil || u.Path == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, target)
		}

		route, ok := r.routes[u.Path]
		if !ok {
			target = r.fallback
			continue
		}
		if route.RedirectTo != "" {
			target = route.RedirectTo
			continue
		}

		if next, denied := evaluate(route, target); denied {
			target = next
			continue
		}

		r.current.Publish(target)
		return target, nil
	}
	return "", fmt.Errorf("%w: %q", ErrRedirectLoop, target)
}

func evaluate(route Route, target string) (string, bool) {
	for _, g := range route.Guards {
		if d := g(route, target); !d.Allow {
			return d.Redirect, true
		}
	}
	return "", false
}

// Current is the location of the last successful navigation.
func (r *Router) Current() string {
	return r.current.Value()
}

// Route returns the table entry for the path part of location.
func (r *Router) Route(location string) (Route, bool) {
	u, err := url.Parse(location)
	if err != nil {
		return Route{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[u.Path]
	return route, ok
}

// ReturnURL extracts the returnUrl parameter of location.
func ReturnURL(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Query().Get(ReturnURLParam)
}

// Subscribe reports the current location and every later change.
func (r *Router) Subscribe() (<-chan string, func()) {
	return r.current.Subscribe()
}

// DefaultRoutes is the portal's route table.
func DefaultRoutes(s SessionView) []Route {
	auth := AuthGuard(s)
	role := RoleGuard(s)
	return []Route{
		{Path: PathRoot, RedirectTo: PathLogin},
		{Path: PathLogin, Title: "Log in"},
		{Path: PathRegister, Title: "Register"},
		{Path: PathRecover, Title: "Recover password"},
		{Path: PathDashboard, Title: "Dashboard", Guards: []Guard{auth}},
		{Path: PathProfile, Title: "Profile", Guards: []Guard{auth}},
		{Path: PathResults, Title: "Results", Guards: []Guard{role}},
		{Path: PathLaboratories, Title: "Laboratories", Guards: []Guard{auth}},
		{Path: PathAnalyses, Title: "Analyses", Guards: []Guard{auth}},
		{Path: PathAppointments, Title: "Appointments", Guards: []Guard{role}},
		{Path: PathUsers, Title: "Users", Roles: []session.Role{session.RoleAdministrator}, Guards: []Guard{role}},
	}
}

// NewDefaultRouter returns a router over DefaultRoutes with unknown paths
// sent to the login view.
func NewDefaultRouter(s SessionView) *Router {
	return NewRouter(DefaultRoutes(s), PathLogin)
}
