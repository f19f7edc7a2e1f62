package client

import (
	"io"
	"net/http"
	"sync"
)

// Indicator is a reference-counted busy flag.
type Indicator interface {
	Show()
	Hide()
}

// LoadingInterceptor calls Show before forwarding and Hide exactly once when
// the exchange ends: at once if the next stage fails or panics, otherwise
// when the response body is closed.
func LoadingInterceptor(ind Indicator) Interceptor {
	return func(req *http.Request, next Handler) (resp *http.Response, err error) {
		ind.Show()
		handedOff := false
		defer func() {
			if !handedOff {
				ind.Hide()
			}
		}()

		resp, err = next(req)
		if err != nil || resp == nil || resp.Body == nil || resp.Body == http.NoBody {
			return resp, err
		}

		resp.Body = &hideOnClose{ReadCloser: resp.Body, hide: ind.Hide}
		handedOff = true
		return resp, nil
	}
}

type hideOnClose struct {
	io.ReadCloser
	once sync.Once
	hide func()
}

func (b *hideOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.hide)
	return err
}
