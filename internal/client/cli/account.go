package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/labportal/internal/client/nav"
	"github.com/dmitrijs2005/labportal/internal/client/session"
)

// WhoAmI prints the session user and, when the token is a JWT, its expiry.
func (a *App) WhoAmI(_ context.Context, _ []string) error {
	u := a.session.CurrentSession()
	if u == nil {
		return session.ErrNoSession
	}

	a.printf("%s <%s>\n", u.FullName(), u.Email)
	a.printf("id: %d  role: %s (%s)\n", u.ID, u.Role, u.Role.Label())
	if u.Phone != "" {
		a.printf("phone: %s\n", u.Phone)
	}

	if u.Token == "" {
		return nil
	}
	claims, err := session.InspectToken(u.Token)
	if err != nil {
		a.logger.Debug(context.Background(), "token is not a jwt", "error", err)
		return nil
	}
	if claims.ExpiresAt != nil {
		a.printf("token expires: %s\n", claims.ExpiresAt.Time.Local().Format(time.DateTime))
	}
	return nil
}

// Profile shows the profile view and edits it; empty answers keep the
// current value.
func (a *App) Profile(ctx context.Context, _ []string) error {
	landed, err := a.router.Navigate(nav.PathProfile)
	if err != nil {
		return err
	}
	if landed != nav.PathProfile {
		a.println("Redirected to", landed)
		return nil
	}

	u := a.session.CurrentSession()
	if u == nil {
		return session.ErrNoSession
	}

	var upd session.ProfileUpdate
	if upd.FirstName, err = getOptional(a.reader, "First name", u.FirstName, a.out); err != nil {
		return err
	}
	if upd.LastName, err = getOptional(a.reader, "Last name", u.LastName, a.out); err != nil {
		return err
	}
	if upd.Email, err = getOptional(a.reader, "Email", u.Email, a.out); err != nil {
		return err
	}
	if upd.Phone, err = getOptional(a.reader, "Phone", u.Phone, a.out); err != nil {
		return err
	}

	if upd.Empty() {
		a.println("Nothing to update.")
		return nil
	}

	updated, err := a.session.UpdateProfile(ctx, u.ID, upd)
	if err != nil {
		return err
	}
	a.printf("Profile saved: %s <%s>\n", updated.FullName(), updated.Email)
	if updated.Phone != "" {
		a.printf("Phone: %s\n", updated.Phone)
	}
	return nil
}
