package session

import (
	"errors"
	"strings"
)

// Default messages used when a backend supplies none.
const (
	MsgLoginFailed        = "login failed"
	MsgRegistrationFailed = "registration failed"
	MsgUserNotFound       = "user not found"
	MsgProfileFailed      = "profile update failed"
)

// ErrNoSession is returned by operations that need an authenticated user.
var ErrNoSession = errors.New("not authenticated")

// AuthenticationError reports failed credentials or an unusable login.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return MsgLoginFailed
	}
	return e.Message
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// RegistrationError reports a rejected account creation.
type RegistrationError struct {
	Message string
	Err     error
}

func (e *RegistrationError) Error() string {
	if e.Message == "" {
		return MsgRegistrationFailed
	}
	return e.Message
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// ProfileError reports a rejected profile update, such as an email already
// used by another account.
type ProfileError struct {
	Message string
	Err     error
}

func (e *ProfileError) Error() string {
	if e.Message == "" {
		return MsgProfileFailed
	}
	return e.Message
}

func (e *ProfileError) Unwrap() error { return e.Err }

// NotFoundError reports an unknown email or user id.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return MsgUserNotFound
	}
	return e.Message
}

// FieldError is one failed validation rule.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every failed rule of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// messageOf extracts a displayable message from err, or returns def.
func messageOf(err error, def string) string {
	var d interface{ UserMessage() string }
	if errors.As(err, &d) && d.UserMessage() != "" {
		return d.UserMessage()
	}
	return def
}
