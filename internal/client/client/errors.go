package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/labportal/internal/logging"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrUnavailable  = errors.New("server unavailable")
)

// Kind classifies a TransportError.
type Kind string

const (
	KindClient       Kind = "client"
	KindConnectivity Kind = "connectivity"
	KindCanceled     Kind = "canceled"
	KindBadRequest   Kind = "bad_request"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	KindDecode       Kind = "decode"
	KindOther        Kind = "other"
)

// Normalized messages.
const (
	MsgBadRequest     = "bad request"
	MsgSessionExpired = "session expired, please log in again"
	MsgForbidden      = "you do not have permission to perform this action"
	MsgNotFound       = "resource not found"
	MsgInternal       = "internal server error"
	MsgConnectivity   = "could not reach the server, check your connection"
	MsgCanceled       = "request canceled"
	MsgDecode         = "unexpected response from server"
)

// TransportError is a request failure with a display-ready Message.
// Status is 0 when no HTTP response was received.
type TransportError struct {
	Status  int
	Kind    Kind
	Message string
	Err     error
}

func (e *TransportError) Error() string { return e.Message }

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage is the normalized text shown to users.
func (e *TransportError) UserMessage() string { return e.Message }

// Is matches the package sentinels by Kind.
func (e *TransportError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.Kind == KindBadRequest
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrForbidden:
		return e.Kind == KindForbidden
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrServer:
		return e.Kind == KindServer
	case ErrUnavailable:
		return e.Kind == KindConnectivity
	}
	return false
}

// Terminator ends the current session.
type Terminator interface {
	Logout(ctx context.Context) error
}

// Navigator moves the user to another view.
type Navigator interface {
	Navigate(path string) (string, error)
}

// LoginPath is where an expired session is sent.
const LoginPath = "/login"

// maxErrorBody bounds how much of a failed response is read for a message.
const maxErrorBody = 64 << 10

// ErrorInterceptor converts transport failures and non-2xx responses into
// *TransportError. On 401 it logs the user out through term and navigates to
// the login view. Failures are always returned to the caller.
func ErrorInterceptor(term Terminator, nav Navigator, logger logging.Logger) Interceptor {
	if logger == nil {
		logger = logging.Nop()
	}
	return func(req *http.Request, next Handler) (*http.Response, error) {
		ctx := req.Context()

		resp, err := next(req)
		if err != nil {
			te := classifyFailure(err)
			logger.Error(ctx, "http request failed", "method", req.Method, "url", req.URL.String(),
				"kind", te.Kind, "error", err)
			return nil, te
		}
		if resp.StatusCode < http.StatusBadRequest {
			return resp, nil
		}

		var serverMsg string
		if resp.Body != nil {
			serverMsg = readServerMessage(resp.Body)
			_ = resp.Body.Close()
		}

		te := classifyStatus(resp.StatusCode, serverMsg)
		logger.Error(ctx, "http request failed", "method", req.Method, "url", req.URL.String(),
			"status", resp.StatusCode, "kind", te.Kind, "message", te.Message)

		if te.Kind == KindUnauthorized {
			// The request may already be canceled; logout must still happen.
			if err := term.Logout(context.WithoutCancel(ctx)); err != nil {
				logger.Error(ctx, "forced logout failed", "error", err)
			}
			if nav != nil {
				if _, err := nav.Navigate(LoginPath); err != nil {
					logger.Warn(ctx, "redirect to login failed", "error", err)
				}
			}
		}
		return nil, te
	}
}

// classifyFailure maps an error without response. Errors raised by the
// network are connectivity failures; anything else happened on our side.
func classifyFailure(err error) *TransportError {
	switch {
	case errors.Is(err, context.Canceled):
		return &TransportError{Kind: KindCanceled, Message: MsgCanceled, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &TransportError{Kind: KindConnectivity, Message: MsgConnectivity, Err: err}
	}

	cause := err
	var ue *url.Error
	if errors.As(err, &ue) {
		cause = ue.Err
	}

	var ne net.Error
	if errors.As(cause, &ne) || errors.Is(cause, io.EOF) || errors.Is(cause, io.ErrUnexpectedEOF) {
		return &TransportError{Kind: KindConnectivity, Message: MsgConnectivity, Err: err}
	}

	return &TransportError{Kind: KindClient, Message: "client error: " + cause.Error(), Err: err}
}

func classifyStatus(status int, serverMsg string) *TransportError {
	te := &TransportError{Status: status}
	pick := func(def string) string {
		if serverMsg != "" {
			return serverMsg
		}
		return def
	}

	switch {
	case status == http.StatusBadRequest:
		te.Kind, te.Message = KindBadRequest, pick(MsgBadRequest)
	case status == http.StatusUnauthorized:
		te.Kind, te.Message = KindUnauthorized, MsgSessionExpired
	case status == http.StatusForbidden:
		te.Kind, te.Message = KindForbidden, pick(MsgForbidden)
	case status == http.StatusNotFound:
		te.Kind, te.Message = KindNotFound, pick(MsgNotFound)
	case status == http.StatusInternalServerError:
		te.Kind, te.Message = KindServer, pick(MsgInternal)
	case status >= http.StatusInternalServerError:
		te.Kind, te.Message = KindServer, pick(fmt.Sprintf("server error: %d", status))
	default:
		te.Kind, te.Message = KindOther, pick(fmt.Sprintf("server error: %d", status))
	}
	return te
}

// readServerMessage extracts the "message" field of an error body, if any.
func readServerMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Message
}
