package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID   int64  `json:"idUsuario"`
	Name string `json:"nombre"`
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New("localhost:8080", nil, nil)
	require.Error(t, err)
	_, err = New("://", nil, nil)
	require.Error(t, err)

	c, err := New("http://localhost:8080/api/", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api", c.BaseURL())
	assert.Equal(t, "http://localhost:8080/api/usuarios/login", c.resolve("/usuarios/login"))
}

func TestCall_UnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/usuarios/registro", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = 7
		_ = json.NewEncoder(w).Encode(Envelope[payload]{TraceID: "abc", Code: CodeSuccess, Message: "ok", Data: in})
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/api", HTTPHandler(srv.Client()), nil)
	require.NoError(t, err)

	out, err := Call[payload](context.Background(), c, http.MethodPost, "usuarios/registro", payload{Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, payload{ID: 7, Name: "Ana"}, out)
}

func TestCall_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"code":"ERROR","message":"user inactive","data":null}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, HTTPHandler(srv.Client()), nil)
	require.NoError(t, err)

	_, err = Call[payload](context.Background(), c, http.MethodGet, "/x", nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindServer, te.Kind)
	assert.Equal(t, "user inactive", te.Error())
}

func TestCall_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, HTTPHandler(srv.Client()), nil)
	require.NoError(t, err)

	_, err = Call[payload](context.Background(), c, http.MethodGet, "/x", nil)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindDecode, te.Kind)
	assert.Equal(t, MsgDecode, te.Error())
}

func TestDo_UnencodableBody(t *testing.T) {
	c, err := New("http://localhost", HTTPHandler(nil), nil)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), http.MethodPost, "/x", make(chan int))
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, KindClient, te.Kind)
}
