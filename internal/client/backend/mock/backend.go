// Package mock serves the session backends from the local mock collections.
// Passwords are stored as bcrypt hashes and logins mint HS256 tokens, so
// the rest of the client cannot tell it from the users service.
package mock

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/labportal/internal/client/mockdata"
	"github.com/dmitrijs2005/labportal/internal/client/session"
	"github.com/dmitrijs2005/labportal/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Messages returned by the mock flows.
const (
	MsgLoginOK          = "login successful"
	MsgUnknownOrBlocked = "user not found or inactive"
	MsgBadCredentials   = "invalid email or password"
	MsgEmailTaken       = "email already registered"
	MsgCodeSent         = "a verification code has been sent to your email"
	MsgPasswordReset    = "password updated successfully"
	MsgPasswordChanged  = "password changed successfully"
	MsgWrongPassword    = "current password is incorrect"
)

// TokenIssuer is the iss claim of minted tokens.
const TokenIssuer = "labportal-mock"

// Options tunes a Backend.
type Options struct {
	// Latency is added to every call to mimic a network round trip.
	Latency     time.Duration
	TokenSecret string
	TokenTTL    time.Duration
	Logger      logging.Logger
	Now         func() time.Time
}

// Backend implements session.Authenticator and session.Recovery.
type Backend struct {
	dir      *mockdata.Directory
	latency  time.Duration
	secret   []byte
	tokenTTL time.Duration
	logger   logging.Logger
	now      func() time.Time
}

var (
	_ session.Authenticator = (*Backend)(nil)
	_ session.Recovery      = (*Backend)(nil)
)

// New returns a Backend over dir.
func New(dir *mockdata.Directory, opts Options) *Backend {
	b := &Backend{
		dir:      dir,
		latency:  opts.Latency,
		secret:   []byte(opts.TokenSecret),
		tokenTTL: opts.TokenTTL,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if len(b.secret) == 0 {
		b.secret = []byte("labportal-mock-secret")
	}
	if b.tokenTTL <= 0 {
		b.tokenTTL = 8 * time.Hour
	}
	if b.logger == nil {
		b.logger = logging.Nop()
	}
	b.logger = b.logger.With("component", "mock-backend")
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// wait simulates latency, returning early if ctx ends.
func (b *Backend) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (b *Backend) mintToken(u *session.User) (string, error) {
	now := b.now()
	claims := session.TokenClaims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    TokenIssuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

func (b *Backend) Login(ctx context.Context, req session.LoginRequest) (*session.LoginResponse, error) {
	u, err := b.dir.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !bool(u.Active) {
		return nil, &session.AuthenticationError{Message: MsgUnknownOrBlocked}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)); err != nil {
		return nil, &session.AuthenticationError{Message: MsgBadCredentials, Err: err}
	}

	token, err := b.mintToken(u)
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}

	if err := b.wait(ctx, b.latency); err != nil {
		return nil, err
	}
	b.logger.Debug(ctx, "mock login", "user_id", u.ID)
	return &session.LoginResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Token:     token,
		Message:   MsgLoginOK,
	}, nil
}

func (b *Backend) Register(ctx context.Context, req session.RegistrationRequest) (*session.User, error) {
	if err := b.wait(ctx, b.latency); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), b.dir.HashCost())
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var created session.User
	err = b.dir.UpdateUsers(ctx, func(users []session.User) ([]session.User, error) {
		want := mockdata.NormalizeEmail(req.Email)
		for _, u := range users {
			if mockdata.NormalizeEmail(u.Email) == want {
				return nil, &session.RegistrationError{Message: MsgEmailTaken}
			}
		}
		now := b.now()
		created = session.User{
			ID:        mockdata.NextUserID(users),
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Password:  string(hash),
			Role:      req.Role,
			CreatedAt: &now,
			Active:    true,
		}
		return append(users, created), nil
	})
	if err != nil {
		return nil, err
	}
	b.logger.Info(ctx, "mock user registered", "user_id", created.ID, "role", created.Role)
	return created.Public(), nil
}

// UpdateProfile applies upd to user id. A new email must not belong to any
// other account.
func (b *Backend) UpdateProfile(ctx context.Context, id int64, upd session.ProfileUpdate) (*session.User, error) {
	if err := b.wait(ctx, b.latency); err != nil {
		return nil, err
	}

	var updated session.User
	err := b.dir.UpdateUsers(ctx, func(users []session.User) ([]session.User, error) {
		if upd.Email != nil {
			want := mockdata.NormalizeEmail(*upd.Email)
			for _, u := range users {
				if u.ID != id && mockdata.NormalizeEmail(u.Email) == want {
					return nil, &session.ProfileError{Message: MsgEmailTaken}
				}
			}
		}
		for i := range users {
			if users[i].ID == id {
				upd.Apply(&users[i])
				updated = users[i]
				return users, nil
			}
		}
		return nil, &session.NotFoundError{}
	})
	if err != nil {
		return nil, err
	}
	return updated.Public(), nil
}

func (b *Backend) RecoverPassword(ctx context.Context, email string) (string, error) {
	u, err := b.dir.FindUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", &session.NotFoundError{}
	}
	// Sending the mail takes a little longer than the other calls.
	if err := b.wait(ctx, 2*b.latency); err != nil {
		return "", err
	}
	b.logger.Info(ctx, "mock recovery code issued", "user_id", u.ID)
	return MsgCodeSent, nil
}

func (b *Backend) VerifyCode(ctx context.Context, code string) (bool, error) {
	if err := b.wait(ctx, b.latency); err != nil {
		return false, err
	}
	return code == session.VerificationCode, nil
}

func (b *Backend) ResetPassword(ctx context.Context, email, newPassword string) (string, error) {
	if err := b.wait(ctx, b.latency); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), b.dir.HashCost())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	want := mockdata.NormalizeEmail(email)
	err = b.dir.UpdateUsers(ctx, func(users []session.User) ([]session.User, error) {
		for i := range users {
			if mockdata.NormalizeEmail(users[i].Email) == want {
				users[i].Password = string(hash)
				return users, nil
			}
		}
		return nil, &session.NotFoundError{}
	})
	if err != nil {
		return "", err
	}
	return MsgPasswordReset, nil
}

// ChangePassword verifies current against the stored hash before replacing
// it.
func (b *Backend) ChangePassword(ctx context.Context, id int64, current, next string) (string, error) {
	if err := b.wait(ctx, b.latency); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), b.dir.HashCost())
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	err = b.dir.UpdateUsers(ctx, func(users []session.User) ([]session.User, error) {
		for i := range users {
			if users[i].ID != id {
				continue
			}
			if bcrypt.CompareHashAndPassword([]byte(users[i].Password), []byte(current)) != nil {
				return nil, &session.AuthenticationError{Message: MsgWrongPassword}
			}
			users[i].Password = string(hash)
			return users, nil
		}
		return nil, &session.NotFoundError{}
	})
	if err != nil {
		return "", err
	}
	return MsgPasswordChanged, nil
}
