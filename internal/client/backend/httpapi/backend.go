// Package httpapi implements the session backend over the users service's
// REST API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/labportal/internal/client/client"
	"github.com/dmitrijs2005/labportal/internal/client/session"
)

// MsgInvalidCredentials replaces the generic 401 text on login.
const MsgInvalidCredentials = "invalid email or password"

// Backend implements session.Authenticator against the users service.
type Backend struct {
	c *client.Client
}

var _ session.Authenticator = (*Backend)(nil)

// New returns a Backend issuing requests through c.
func New(c *client.Client) *Backend {
	return &Backend{c: c}
}

func (b *Backend) Login(ctx context.Context, req session.LoginRequest) (*session.LoginResponse, error) {
	resp, err := client.Call[*session.LoginResponse](ctx, b.c, http.MethodPost, "usuarios/login", req)
	if err != nil {
		msg := messageOf(err, session.MsgLoginFailed)
		if errors.Is(err, client.ErrUnauthorized) {
			msg = MsgInvalidCredentials
		}
		return nil, &session.AuthenticationError{Message: msg, Err: err}
	}
	if resp == nil || resp.Token == "" {
		return nil, &session.AuthenticationError{Message: session.MsgLoginFailed}
	}
	return resp, nil
}

func (b *Backend) Register(ctx context.Context, req session.RegistrationRequest) (*session.User, error) {
	u, err := client.Call[*session.User](ctx, b.c, http.MethodPost, "usuarios/registro", req)
	if err != nil {
		return nil, &session.RegistrationError{Message: messageOf(err, session.MsgRegistrationFailed), Err: err}
	}
	if u == nil {
		return nil, &session.RegistrationError{Message: session.MsgRegistrationFailed}
	}
	return u.Public(), nil
}

func (b *Backend) UpdateProfile(ctx context.Context, id int64, upd session.ProfileUpdate) (*session.User, error) {
	u, err := client.Call[*session.User](ctx, b.c, http.MethodPut, fmt.Sprintf("usuarios/%d", id), upd)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, &session.NotFoundError{Message: messageOf(err, session.MsgUserNotFound)}
		}
		return nil, err
	}
	if u == nil {
		return nil, &session.NotFoundError{}
	}
	return u.Public(), nil
}

func messageOf(err error, def string) string {
	var te *client.TransportError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return def
}
