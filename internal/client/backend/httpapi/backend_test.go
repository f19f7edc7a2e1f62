package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/labportal/internal/client/client"
	"github.com/dmitrijs2005/labportal/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTerminator struct{ calls int }

func (f *fakeTerminator) Logout(context.Context) error { f.calls++; return nil }

func newBackend(t *testing.T, h http.HandlerFunc) (*Backend, *fakeTerminator) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	term := &fakeTerminator{}
	pipeline := client.Chain(client.HTTPHandler(srv.Client()), client.ErrorInterceptor(term, nil, nil))
	c, err := client.New(srv.URL+"/api", pipeline, nil)
	require.NoError(t, err)
	return New(c), term
}

func writeEnvelope(w http.ResponseWriter, status int, code, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"traceId": "t-1", "code": code, "message": message, "data": data})
}

func TestLogin(t *testing.T) {
	b, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/usuarios/login", r.URL.Path)
		var req session.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "maria@email.cl", req.Email)

		writeEnvelope(w, 200, client.CodeSuccess, "ok", map[string]any{
			"idUsuario": 2, "nombre": "María", "apellido": "González", "email": "maria@email.cl",
			"rol": "PACIENTE", "token": "jwt-2", "mensaje": "Login exitoso",
		})
	})

	resp, err := b.Login(context.Background(), session.LoginRequest{Email: "maria@email.cl", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.ID)
	assert.Equal(t, session.RolePatient, resp.Role)
	assert.Equal(t, "jwt-2", resp.Token)
	assert.Equal(t, "Login exitoso", resp.Message)
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"401 invalid credentials", 401, `{"code":"ERROR","message":"bad"}`, MsgInvalidCredentials},
		{"400 server message", 400, `{"code":"ERROR","message":"Usuario inactivo"}`, "Usuario inactivo"},
		{"500 default", 500, ``, client.MsgInternal},
		{"error envelope with 200", 200, `{"code":"ERROR","message":"Credenciales inválidas"}`, "Credenciales inválidas"},
		{"no token", 200, `{"code":"SUCCESS","data":{"idUsuario":2}}`, session.MsgLoginFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := b.Login(context.Background(), session.LoginRequest{Email: "maria@email.cl", Password: "x"})
			var ae *session.AuthenticationError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.message, ae.Error())
		})
	}
}

func TestRegister(t *testing.T) {
	b, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/usuarios/registro", r.URL.Path)
		var req session.RegistrationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeEnvelope(w, 201, client.CodeSuccess, "created", map[string]any{
			"idUsuario": 9, "nombre": req.FirstName, "email": req.Email, "password": req.Password,
			"rol": req.Role, "activo": 1,
		})
	})

	u, err := b.Register(context.Background(), session.RegistrationRequest{
		FirstName: "Lucía", Email: "lucia@email.cl", Password: "Secreta#2025", Role: session.RolePatient,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), u.ID)
	assert.Empty(t, u.Password, "password never leaves the backend")
	assert.True(t, bool(u.Active))
}

func TestRegister_Rejected(t *testing.T) {
	b, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 400, client.CodeError, "El email ya está registrado", nil)
	})

	_, err := b.Register(context.Background(), session.RegistrationRequest{Email: "maria@email.cl"})
	var re *session.RegistrationError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "El email ya está registrado", re.Error())
	assert.ErrorIs(t, err, client.ErrBadRequest)
}

func TestUpdateProfile(t *testing.T) {
	name := "Mariela"
	b, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/usuarios/2", r.URL.Path)
		var upd map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&upd))
		assert.Equal(t, map[string]any{"nombre": name}, upd, "only set fields are sent")
		writeEnvelope(w, 200, client.CodeSuccess, "", map[string]any{"idUsuario": 2, "nombre": name, "rol": "PACIENTE"})
	})

	u, err := b.UpdateProfile(context.Background(), 2, session.ProfileUpdate{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, u.FirstName)
}

func TestUpdateProfile_Errors(t *testing.T) {
	name := "x"

	t.Run("404 becomes NotFoundError", func(t *testing.T) {
		b, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, 404, client.CodeError, "", nil)
		})
		_, err := b.UpdateProfile(context.Background(), 77, session.ProfileUpdate{FirstName: &name})
		var nf *session.NotFoundError
		require.ErrorAs(t, err, &nf)
	})

	t.Run("401 surfaces transport error and ends session", func(t *testing.T) {
		b, term := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(401)
		})
		_, err := b.UpdateProfile(context.Background(), 2, session.ProfileUpdate{FirstName: &name})
		var te *client.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, client.MsgSessionExpired, te.Error())
		assert.Equal(t, 1, term.calls)
	})
}
