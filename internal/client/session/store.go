package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/labportal/internal/client/storage"
	"github.com/dmitrijs2005/labportal/internal/logging"
	"github.com/dmitrijs2005/labportal/internal/pubsub"
)

// StorageKey is the durable storage key of the session snapshot.
const StorageKey = "currentUser"

// VerificationCode is the only recovery code the portal accepts until a real
// delivery channel exists.
const VerificationCode = "123456"

// Authenticator performs the account operations that have a network
// implementation.
type Authenticator interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Register(ctx context.Context, req RegistrationRequest) (*User, error)
	UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*User, error)
}

// Recovery performs the password flows. Confirmation messages are returned
// on success.
type Recovery interface {
	RecoverPassword(ctx context.Context, email string) (string, error)
	VerifyCode(ctx context.Context, code string) (bool, error)
	ResetPassword(ctx context.Context, email, newPassword string) (string, error)
	ChangePassword(ctx context.Context, id int64, current, next string) (string, error)
}

// Store holds the current session. The zero value is not usable; call
// NewStore and then Open.
type Store struct {
	auth     Authenticator
	recovery Recovery
	kv       storage.Store
	logger   logging.Logger

	// mu serializes commits so storage and the published value never
	// disagree for an observer.
	mu      sync.Mutex
	current *pubsub.Subject[*User]
}

// NewStore wires a Store to its backends and durable storage.
func NewStore(auth Authenticator, recovery Recovery, kv storage.Store, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		auth:     auth,
		recovery: recovery,
		kv:       kv,
		logger:   logger.With("component", "session"),
		current:  pubsub.NewSubject[*User](nil),
	}
}

// Open restores a previously persisted session. A snapshot that cannot be
// decoded is discarded.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if raw == nil {
		s.current.Publish(nil)
		return nil
	}

	u, err := decodeUser(raw)
	if err != nil {
		s.logger.Warn(ctx, "discarding unreadable session snapshot", "error", err)
		if err := s.kv.Delete(ctx, StorageKey); err != nil {
			return fmt.Errorf("discard session: %w", err)
		}
		s.current.Publish(nil)
		return nil
	}

	s.current.Publish(u)
	s.logger.Info(ctx, "session restored", "user_id", u.ID, "role", u.Role)
	return nil
}

// commit persists u (or removes the snapshot when u is nil) and publishes
// it. Nothing is published when persisting fails.
func (s *Store) commit(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(ctx, u)
}

func (s *Store) commitLocked(ctx context.Context, u *User) error {
	if u == nil {
		if err := s.kv.Delete(ctx, StorageKey); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		s.current.Publish(nil)
		return nil
	}

	raw, err := encodeUser(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.current.Publish(u)
	return nil
}

// Login authenticates and, on success, makes the returned identity the
// current session.
func (s *Store) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := LoginRequest{Email: email, Password: password}
	if err := Validate(req); err != nil {
		return nil, &AuthenticationError{Message: err.Error(), Err: err}
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		s.logger.Warn(ctx, "login failed", "email", email, "error", err)
		var ae *AuthenticationError
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, &AuthenticationError{Message: messageOf(err, MsgLoginFailed), Err: err}
	}
	if resp == nil {
		return nil, &AuthenticationError{Message: MsgLoginFailed}
	}

	if err := s.commit(ctx, resp.sessionUser()); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "logged in", "user_id", resp.ID, "role", resp.Role)
	return resp, nil
}

// Register creates an account. It does not log the new user in.
func (s *Store) Register(ctx context.Context, req RegistrationRequest) (*User, error) {
	if err := Validate(req); err != nil {
		return nil, &RegistrationError{Message: err.Error(), Err: err}
	}

	u, err := s.auth.Register(ctx, req)
	if err != nil {
		s.logger.Warn(ctx, "registration failed", "email", req.Email, "error", err)
		var re *RegistrationError
		if errors.As(err, &re) {
			return nil, re
		}
		return nil, &RegistrationError{Message: messageOf(err, MsgRegistrationFailed), Err: err}
	}
	if u == nil {
		return nil, &RegistrationError{Message: MsgRegistrationFailed}
	}
	return u.Public(), nil
}

// Logout ends the session. Logging out without a session is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.commit(ctx, nil); err != nil {
		return err
	}
	s.logger.Info(ctx, "logged out")
	return nil
}

// RecoverPassword starts password recovery for email.
func (s *Store) RecoverPassword(ctx context.Context, email string) (string, error) {
	msg, err := s.recovery.RecoverPassword(ctx, email)
	if err != nil {
		return "", passThrough(err, "recover password")
	}
	return msg, nil
}

// VerifyCode checks a recovery code.
func (s *Store) VerifyCode(ctx context.Context, code string) (bool, error) {
	return s.recovery.VerifyCode(ctx, code)
}

// ResetPassword sets a new password for email. The session is untouched.
func (s *Store) ResetPassword(ctx context.Context, email, newPassword string) (string, error) {
	if err := Validate(PasswordReset{Email: email, NewPassword: newPassword}); err != nil {
		return "", err
	}
	msg, err := s.recovery.ResetPassword(ctx, email, newPassword)
	if err != nil {
		return "", passThrough(err, "reset password")
	}
	return msg, nil
}

// ChangePassword replaces the password of user id after checking current.
func (s *Store) ChangePassword(ctx context.Context, id int64, current, next string) (string, error) {
	if err := Validate(PasswordReset{NewPassword: next}); err != nil {
		return "", err
	}
	msg, err := s.recovery.ChangePassword(ctx, id, current, next)
	if err != nil {
		return "", passThrough(err, "change password")
	}
	return msg, nil
}

// UpdateProfile applies upd to user id. When id is the logged-in user the
// session snapshot is refreshed and the bearer token kept.
func (s *Store) UpdateProfile(ctx context.Context, id int64, upd ProfileUpdate) (*User, error) {
	if err := Validate(upd); err != nil {
		return nil, err
	}

	u, err := s.auth.UpdateProfile(ctx, id, upd)
	if err != nil {
		var nf *NotFoundError
		var pe *ProfileError
		switch {
		case errors.As(err, &nf), errors.As(err, &pe):
			return nil, err
		default:
			return nil, &ProfileError{Message: messageOf(err, MsgProfileFailed), Err: err}
		}
	}
	if u == nil {
		return nil, &NotFoundError{}
	}
	u = u.Public()

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Value()
	if cur == nil || cur.ID != id {
		return u, nil
	}

	refreshed := *u
	refreshed.Token = cur.Token
	if err := s.commitLocked(ctx, &refreshed); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "profile refreshed", "user_id", id)
	return u, nil
}

// passThrough keeps typed session errors as they are and wraps the rest.
func passThrough(err error, op string) error {
	var nf *NotFoundError
	var ae *AuthenticationError
	var ve *ValidationError
	switch {
	case errors.As(err, &nf), errors.As(err, &ae), errors.As(err, &ve):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// CurrentSession returns a copy of the session user, or nil.
func (s *Store) CurrentSession() *User {
	u := s.current.Value()
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (s *Store) IsAuthenticated() bool {
	return s.current.Value() != nil
}

// HasRole reports whether the session user holds one of roles. It is false
// without a session, and for an empty role list.
func (s *Store) HasRole(roles ...Role) bool {
	u := s.current.Value()
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// BearerToken returns the session token, if any.
func (s *Store) BearerToken() (string, bool) {
	u := s.current.Value()
	if u == nil || u.Token == "" {
		return "", false
	}
	return u.Token, true
}

// Subscribe delivers the current session immediately and every change
// after it. Received values must be treated as read-only.
func (s *Store) Subscribe() (<-chan *User, func()) {
	return s.current.Subscribe()
}

// Close stops all subscriptions.
func (s *Store) Close() {
	s.current.Close()
}
