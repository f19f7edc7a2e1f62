// Package client is the portal's HTTP client and its request pipeline.
//
// # Pipeline
//
// Every outgoing request passes through an ordered list of interceptors
// composed around a base transport call (see Chain). Each interceptor may
// decorate the request, short-circuit, or react to the result. The default
// order, outermost first, is:
//
//  1. RequestIDInterceptor tags the request with an X-Request-Id.
//  2. AuthInterceptor attaches the session's bearer token.
//  3. LoadingInterceptor marks the client busy until the response body is
//     closed or the call fails.
//  4. ErrorInterceptor turns failures into *TransportError values and ends
//     the session on a 401.
//  5. Any instrumentation (see package metrics), then the transport.
//
// # Envelope
//
// Backend responses are wrapped as {traceId, code, message, data}. Call
// decodes the envelope and hands back only Data.
//
// # Errors
//
// All pipeline failures are *TransportError. Match classes with errors.Is
// against ErrBadRequest, ErrUnauthorized, ErrForbidden, ErrNotFound,
// ErrServer and ErrUnavailable, or inspect Kind via errors.As.
package client
