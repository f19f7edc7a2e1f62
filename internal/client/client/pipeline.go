package client

import (
	"net/http"

	"github.com/google/uuid"
)

// Handler performs one request/response exchange.
type Handler func(*http.Request) (*http.Response, error)

// Interceptor wraps a Handler. It receives the request and the next stage
// and returns the (possibly transformed) result of that stage.
type Interceptor func(req *http.Request, next Handler) (*http.Response, error)

// Chain composes interceptors around base. The first interceptor is the
// outermost: it sees the request first and the response last.
func Chain(base Handler, interceptors ...Interceptor) Handler {
	h := base
	for i := len(interceptors) - 1; i >= 0; i-- {
		ic, next := interceptors[i], h
		h = func(req *http.Request) (*http.Response, error) {
			return ic(req, next)
		}
	}
	return h
}

// HTTPHandler adapts an *http.Client as the base of a pipeline.
func HTTPHandler(hc *http.Client) Handler {
	if hc == nil {
		hc = http.DefaultClient
	}
	return hc.Do
}

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-Id"

// RequestIDInterceptor sets X-Request-Id unless the caller already did.
func RequestIDInterceptor() Interceptor {
	return func(req *http.Request, next Handler) (*http.Response, error) {
		if req.Header.Get(RequestIDHeader) != "" {
			return next(req)
		}
		r := req.Clone(req.Context())
		r.Header.Set(RequestIDHeader, uuid.NewString())
		return next(r)
	}
}
