package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/labportal/internal/client/nav"
	"github.com/dmitrijs2005/labportal/internal/client/session"
)

var (
	errPasswordMismatch = errors.New("passwords do not match")
	errInvalidCode      = errors.New("invalid verification code")
)

// Login authenticates with the email in args (or prompted) and resumes the
// navigation that sent the user to the login view, if any.
func (a *App) Login(ctx context.Context, args []string) error {
	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = a.ask("Email"); err != nil {
			return err
		}
	}

	password, err := a.askPassword("Password")
	if err != nil {
		return err
	}

	resumeTo := nav.ReturnURL(a.router.Current())

	resp, err := a.session.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if resp.Message != "" {
		a.println(resp.Message)
	}
	a.printf("Welcome, %s %s (%s)\n", resp.FirstName, resp.LastName, resp.Role.Label())

	if resumeTo == "" {
		resumeTo = nav.PathDashboard
	}
	return a.Goto(ctx, []string{resumeTo})
}

// askNewPassword prompts for a password and its confirmation, showing the
// unmet policy rules before giving up.
func (a *App) askNewPassword(prompt string) (string, error) {
	pw, err := a.askPassword(prompt)
	if err != nil {
		return "", err
	}
	if missing := session.CheckPassword(pw); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, r := range missing {
			names = append(names, r.String())
		}
		a.println("Password does not meet:", strings.Join(names, ", "))
	} else {
		strength, score := session.PasswordStrength(pw)
		a.printf("Password strength: %s (%d/6)\n", strength, score)
	}

	confirm, err := a.askPassword("Confirm password")
	if err != nil {
		return "", err
	}
	if !session.PasswordsMatch(pw, confirm) {
		return "", errPasswordMismatch
	}
	return pw, nil
}

// Register creates an account. The user still has to log in afterwards.
func (a *App) Register(ctx context.Context, _ []string) error {
	if _, err := a.router.Navigate(nav.PathRegister); err != nil {
		return err
	}

	var req session.RegistrationRequest
	var err error
	if req.FirstName, err = a.ask("First name"); err != nil {
		return err
	}
	if req.LastName, err = a.ask("Last name"); err != nil {
		return err
	}
	if req.Email, err = a.ask("Email"); err != nil {
		return err
	}
	if req.Phone, err = a.ask("Phone (optional)"); err != nil {
		return err
	}

	roleText, err := a.ask(fmt.Sprintf("Role %v (default %s)", session.Roles, session.RolePatient))
	if err != nil {
		return err
	}
	req.Role = session.RolePatient
	if roleText != "" {
		if req.Role, err = session.ParseRole(roleText); err != nil {
			return err
		}
	}

	if req.Password, err = a.askNewPassword("Password"); err != nil {
		return err
	}

	u, err := a.session.Register(ctx, req)
	if err != nil {
		return err
	}
	a.printf("Account created for %s. You can log in now.\n", u.Email)
	return a.Goto(ctx, []string{nav.PathLogin})
}

// Logout ends the session and returns to the login view.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return a.Goto(ctx, []string{nav.PathLogin})
}

// Recover walks through password recovery: request a code, verify it and
// set a new password.
func (a *App) Recover(ctx context.Context, args []string) error {
	if _, err := a.router.Navigate(nav.PathRecover); err != nil {
		return err
	}

	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = a.ask("Email"); err != nil {
			return err
		}
	}

	msg, err := a.session.RecoverPassword(ctx, email)
	if err != nil {
		return err
	}
	a.println(msg)

	code, err := a.ask("Verification code")
	if err != nil {
		return err
	}
	ok, err := a.session.VerifyCode(ctx, code)
	if err != nil {
		return err
	}
	if !ok {
		return errInvalidCode
	}

	pw, err := a.askNewPassword("New password")
	if err != nil {
		return err
	}
	if msg, err = a.session.ResetPassword(ctx, email, pw); err != nil {
		return err
	}
	a.println(msg)
	return a.Goto(ctx, []string{nav.PathLogin})
}

// Passwd changes the logged-in user's password.
func (a *App) Passwd(ctx context.Context, _ []string) error {
	u := a.session.CurrentSession()
	if u == nil {
		return session.ErrNoSession
	}

	current, err := a.askPassword("Current password")
	if err != nil {
		return err
	}
	next, err := a.askNewPassword("New password")
	if err != nil {
		return err
	}

	msg, err := a.session.ChangePassword(ctx, u.ID, current, next)
	if err != nil {
		return err
	}
	a.println(msg)
	return nil
}
