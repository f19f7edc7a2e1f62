package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/labportal/internal/client/nav"
	"github.com/dmitrijs2005/labportal/internal/netx"
)

var (
	errMockOnly   = errors.New("only available in mock mode")
	errNoDocument = errors.New("result has no downloadable document")
)

// Goto navigates to the path in args and describes where the user landed.
func (a *App) Goto(_ context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: goto <path>")
	}

	landed, err := a.router.Navigate(args[0])
	if err != nil {
		return err
	}

	title := landed
	if route, ok := a.router.Route(landed); ok && route.Title != "" {
		title = route.Title
	}
	if landed != args[0] {
		a.printf("Redirected to %s (%s)\n", title, landed)
	} else {
		a.printf("%s (%s)\n", title, landed)
	}

	if landed == nav.PathDashboard {
		if u := a.session.CurrentSession(); u != nil {
			a.printf("Logged in as %s, %s\n", u.FullName(), u.Role.Label())
		}
	}
	return nil
}

// enter navigates to path and reports whether the user is allowed there.
func (a *App) enter(path string) (bool, error) {
	landed, err := a.router.Navigate(path)
	if err != nil {
		return false, err
	}
	if landed != path {
		a.println("Redirected to", landed)
		return false, nil
	}
	return true, nil
}

// Results lists the results visible to the current user.
func (a *App) Results(ctx context.Context, _ []string) error {
	if ok, err := a.enter(nav.PathResults); !ok {
		return err
	}

	entries, err := a.results.Visible(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.println("No results.")
		return nil
	}

	for _, e := range entries {
		doc := "-"
		if e.Link != "" {
			doc = "download " + strconv.FormatInt(e.ID, 10)
		}
		a.printf("#%d  %s  %s  %s  %s\n", e.ID, e.ReportedAt.Format("2006-01-02"), e.AnalysisName, e.Status, doc)
	}
	return nil
}

// Download saves the document of result <id> to <file>.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: download <id> <file>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid result id %q", args[0])
	}
	if ok, err := a.enter(nav.PathResults); !ok {
		return err
	}

	entries, err := a.results.Visible(ctx)
	if err != nil {
		return err
	}

	link := ""
	found := false
	for _, e := range entries {
		if e.ID == id {
			link, found = e.Link, true
			break
		}
	}
	if !found {
		return fmt.Errorf("result %d not found", id)
	}
	if link == "" {
		return errNoDocument
	}

	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := netx.DownloadPresigned(ctx, a.http, link, f)
	if err != nil {
		return err
	}
	a.printf("Saved %d bytes to %s\n", n, args[1])
	return nil
}

// Users lists the accounts in the mock user collection. Administrators
// only.
func (a *App) Users(ctx context.Context, _ []string) error {
	if ok, err := a.enter(nav.PathUsers); !ok {
		return err
	}
	if a.directory == nil {
		return errMockOnly
	}

	users, err := a.directory.Users(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		state := "active"
		if !bool(u.Active) {
			state = "inactive"
		}
		a.printf("%3d  %-28s %-14s %-24s %s\n", u.ID, u.Email, u.Role, u.FullName(), state)
	}
	return nil
}

// ResetData restores the mock collections to their seed after confirmation.
func (a *App) ResetData(ctx context.Context, _ []string) error {
	if a.directory == nil {
		return errMockOnly
	}
	answer, err := a.ask("Reset all mock data? (yes/no)")
	if err != nil {
		return err
	}
	if answer != "yes" {
		a.println("Cancelled.")
		return nil
	}
	if err := a.directory.Reset(ctx); err != nil {
		return err
	}
	a.println("Mock data reset.")
	return nil
}
