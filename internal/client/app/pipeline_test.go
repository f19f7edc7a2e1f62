package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/labportal/internal/client/client"
	"github.com/dmitrijs2005/labportal/internal/client/loading"
	"github.com/dmitrijs2005/labportal/internal/client/nav"
	"github.com/dmitrijs2005/labportal/internal/client/session"
	"github.com/dmitrijs2005/labportal/internal/client/storage"
	"github.com/dmitrijs2005/labportal/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticAuth logs everyone in with the bearer token "T".
type staticAuth struct{}

func (staticAuth) Login(_ context.Context, req session.LoginRequest) (*session.LoginResponse, error) {
	return &session.LoginResponse{ID: 2, FirstName: "María", LastName: "González", Email: req.Email,
		Role: session.RolePatient, Token: "T"}, nil
}

func (staticAuth) Register(context.Context, session.RegistrationRequest) (*session.User, error) {
	return nil, &session.RegistrationError{}
}

func (staticAuth) UpdateProfile(context.Context, int64, session.ProfileUpdate) (*session.User, error) {
	return nil, &session.NotFoundError{}
}

func (staticAuth) RecoverPassword(context.Context, string) (string, error) { return "", nil }
func (staticAuth) VerifyCode(context.Context, string) (bool, error)        { return false, nil }
func (staticAuth) ResetPassword(context.Context, string, string) (string, error) {
	return "", nil
}
func (staticAuth) ChangePassword(context.Context, int64, string, string) (string, error) {
	return "", nil
}

func TestPipeline_UnauthorizedEndsSession(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ctx := context.Background()
	kv := storage.NewMemory()
	store := session.NewStore(staticAuth{}, staticAuth{}, kv, nil)
	require.NoError(t, store.Open(ctx))
	t.Cleanup(store.Close)
	router := nav.NewDefaultRouter(store)
	tracker := loading.NewTracker()

	_, err := store.Login(ctx, "maria@email.cl", "Password123!")
	require.NoError(t, err)
	_, err = router.Navigate(nav.PathProfile)
	require.NoError(t, err)
	require.Equal(t, nav.PathProfile, router.Current())

	updates, cancel := store.Subscribe()
	defer cancel()
	require.NotNil(t, <-updates, "replays the logged-in user")

	pipeline := client.Chain(client.HTTPHandler(srv.Client()),
		client.AuthInterceptor(store),
		client.LoadingInterceptor(tracker),
		client.ErrorInterceptor(store, router, logging.Nop()),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/usuarios/2", nil)
	require.NoError(t, err)
	_, err = pipeline(req)

	var te *client.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, client.KindUnauthorized, te.Kind)
	assert.Equal(t, "Bearer T", gotAuth)

	select {
	case u := <-updates:
		assert.Nil(t, u)
	case <-time.After(time.Second):
		t.Fatal("no session change published")
	}

	raw, err := kv.Get(ctx, session.StorageKey)
	require.NoError(t, err)
	assert.Nil(t, raw, "snapshot removed from storage")

	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, nav.PathLogin, router.Current())
	assert.False(t, tracker.Busy())
}
