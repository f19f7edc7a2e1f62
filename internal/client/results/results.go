// Package results lists the lab results the logged-in user may see and
// produces download links for their documents.
package results

import (
	"context"
	"net/http"
	"sort"

	"github.com/dmitrijs2005/labportal/internal/client/client"
	"github.com/dmitrijs2005/labportal/internal/client/mockdata"
	"github.com/dmitrijs2005/labportal/internal/client/session"
	"github.com/dmitrijs2005/labportal/internal/logging"
)

// Source lists every result known to a backend.
type Source interface {
	List(ctx context.Context) ([]mockdata.Result, error)
}

// MockSource reads results from the mock collections.
type MockSource struct {
	dir *mockdata.Directory
}

func NewMockSource(dir *mockdata.Directory) *MockSource {
	return &MockSource{dir: dir}
}

func (s *MockSource) List(ctx context.Context) ([]mockdata.Result, error) {
	return s.dir.Results(ctx)
}

// HTTPSource reads results from the results service.
type HTTPSource struct {
	c *client.Client
}

func NewHTTPSource(c *client.Client) *HTTPSource {
	return &HTTPSource{c: c}
}

func (s *HTTPSource) List(ctx context.Context) ([]mockdata.Result, error) {
	return client.Call[[]mockdata.Result](ctx, s.c, http.MethodGet, "resultados", nil)
}

// Linker turns a stored document path into a URL the user can open.
type Linker interface {
	Link(ctx context.Context, document string) (string, error)
}

// Viewer exposes the logged-in user.
type Viewer interface {
	CurrentSession() *session.User
}

// Entry is a visible result with its document link, if one could be made.
type Entry struct {
	mockdata.Result
	Link string
}

// Service combines a Source, the session and an optional Linker.
type Service struct {
	src    Source
	viewer Viewer
	links  Linker
	logger logging.Logger
}

// NewService returns a Service. links may be nil.
func NewService(src Source, viewer Viewer, links Linker, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{src: src, viewer: viewer, links: links, logger: logger.With("component", "results")}
}

// Visible returns the results the current user may see, newest first.
func (s *Service) Visible(ctx context.Context) ([]Entry, error) {
	u := s.viewer.CurrentSession()
	if u == nil {
		return nil, session.ErrNoSession
	}

	all, err := s.src.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := Filter(u, all)
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].ReportedAt.After(visible[j].ReportedAt)
	})

	out := make([]Entry, 0, len(visible))
	for _, r := range visible {
		e := Entry{Result: r}
		if s.links != nil && r.Document != "" {
			link, err := s.links.Link(ctx, r.Document)
			if err != nil {
				s.logger.Warn(ctx, "document link failed", "result_id", r.ID, "error", err)
			} else {
				e.Link = link
			}
		}
		out = append(out, e)
	}
	return out, nil
}

// Filter keeps what u's role may see: patients their own results, lab
// technicians the results they reported, physicians and administrators
// everything.
func Filter(u *session.User, all []mockdata.Result) []mockdata.Result {
	out := make([]mockdata.Result, 0, len(all))
	for _, r := range all {
		switch u.Role {
		case session.RoleAdministrator, session.RolePhysician:
		case session.RolePatient:
			if r.PatientID != u.ID {
				continue
			}
		case session.RoleLabTechnician:
			if r.TechnicianID != u.ID {
				continue
			}
		default:
			continue
		}
		out = append(out, r)
	}
	return out
}
