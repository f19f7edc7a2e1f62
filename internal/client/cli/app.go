package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/labportal/internal/client/mockdata"
	"github.com/dmitrijs2005/labportal/internal/client/nav"
	"github.com/dmitrijs2005/labportal/internal/client/results"
	"github.com/dmitrijs2005/labportal/internal/client/session"
	"github.com/dmitrijs2005/labportal/internal/logging"
)

// SessionService is the session surface the CLI drives.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*session.LoginResponse, error)
	Register(ctx context.Context, req session.RegistrationRequest) (*session.User, error)
	Logout(ctx context.Context) error
	RecoverPassword(ctx context.Context, email string) (string, error)
	VerifyCode(ctx context.Context, code string) (bool, error)
	ResetPassword(ctx context.Context, email, newPassword string) (string, error)
	ChangePassword(ctx context.Context, id int64, current, next string) (string, error)
	UpdateProfile(ctx context.Context, id int64, upd session.ProfileUpdate) (*session.User, error)
	CurrentSession() *session.User
	IsAuthenticated() bool
	Subscribe() (<-chan *session.User, func())
}

// Router resolves view navigation.
type Router interface {
	Navigate(target string) (string, error)
	Current() string
	Route(location string) (nav.Route, bool)
}

// ResultLister lists the results the current user may see.
type ResultLister interface {
	Visible(ctx context.Context) ([]results.Entry, error)
}

// Directory is the local data collaborator, present in mock mode only.
type Directory interface {
	Users(ctx context.Context) ([]session.User, error)
	Laboratories(ctx context.Context) ([]mockdata.Laboratory, error)
	AnalysisTypes(ctx context.Context) ([]mockdata.AnalysisType, error)
	Appointments(ctx context.Context) ([]mockdata.Appointment, error)
	Reset(ctx context.Context) error
}

// Busy streams the loading flag.
type Busy interface {
	Subscribe() (<-chan bool, func())
}

// Deps wires an App. Directory, Loading and HTTP may be nil.
type Deps struct {
	Session   SessionService
	Router    Router
	Results   ResultLister
	Directory Directory
	Loading   Busy
	HTTP      *http.Client
	Logger    logging.Logger
	In        io.Reader
	Out       io.Writer
}

// App is the interactive client.
type App struct {
	session   SessionService
	router    Router
	results   ResultLister
	directory Directory
	loading   Busy
	http      *http.Client
	logger    logging.Logger

	reader *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex
}

// NewApp builds an App, defaulting I/O to the process's stdin and stdout.
func NewApp(d Deps) *App {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Logger == nil {
		d.Logger = logging.Nop()
	}
	if d.HTTP == nil {
		d.HTTP = http.DefaultClient
	}
	return &App{
		session:   d.Session,
		router:    d.Router,
		results:   d.Results,
		directory: d.Directory,
		loading:   d.Loading,
		http:      d.HTTP,
		logger:    d.Logger.With("component", "cli"),
		reader:    bufio.NewReader(d.In),
		out:       d.Out,
	}
}

// println writes one line; safe to call from watcher goroutines.
func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// Run opens on the view that matches the restored session and serves the
// REPL until exit or end of input.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Lab portal CLI (type 'help' for commands)")

	initial := nav.PathRoot
	if a.session.IsAuthenticated() {
		initial = nav.PathDashboard
	}
	if err := a.Goto(ctx, []string{initial}); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.watchSession(ctx)
	}()
	if a.loading != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.watchLoading(ctx)
		}()
	}

	runREPL(ctx, a, a.status, a.reader)
	cancel()
	wg.Wait()
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// status renders the prompt: who is logged in and the current view.
func (a *App) status() string {
	parts := make([]string, 0, 2)
	if u := a.session.CurrentSession(); u != nil {
		parts = append(parts, fmt.Sprintf("%s %s", u.Email, u.Role))
	}
	if cur := a.router.Current(); cur != "" {
		parts = append(parts, cur)
	}
	return strings.Join(parts, " ")
}

// report prints the user-facing text of err.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	a.println("Error:", userMessage(err))
}

func userMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return err.Error()
}

func (a *App) ask(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

func (a *App) askPassword(prompt string) (string, error) {
	return getPassword(a.reader, prompt, a.out)
}

// Test seams for interactive input.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getOptional   = GetOptional
)
