package client

// Envelope codes.
const (
	CodeSuccess = "SUCCESS"
	CodeError   = "ERROR"
)

// Envelope wraps every backend payload.
type Envelope[T any] struct {
	TraceID string `json:"traceId,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// OK reports whether the envelope carries a successful result. Backends
// that omit the code are treated as successful.
func (e *Envelope[T]) OK() bool {
	return e.Code == "" || e.Code == CodeSuccess
}
