package client

import "net/http"

// TokenSource yields the bearer token of the current session, if any.
type TokenSource interface {
	BearerToken() (string, bool)
}

// AuthInterceptor attaches "Authorization: Bearer <token>" when src has a
// token and forwards the request untouched otherwise. The caller's request
// is never modified.
func AuthInterceptor(src TokenSource) Interceptor {
	return func(req *http.Request, next Handler) (*http.Response, error) {
		token, ok := src.BearerToken()
		if !ok {
			return next(req)
		}
		r := req.Clone(req.Context())
		r.Header.Set("Authorization", "Bearer "+token)
		return next(r)
	}
}
