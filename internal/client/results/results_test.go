package results

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/labportal/internal/client/client"
	"github.com/dmitrijs2005/labportal/internal/client/mockdata"
	"github.com/dmitrijs2005/labportal/internal/client/session"
	"github.com/dmitrijs2005/labportal/internal/client/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeViewer struct{ u *session.User }

func (f fakeViewer) CurrentSession() *session.User { return f.u }

type fakeLinker struct{ fail bool }

func (f fakeLinker) Link(_ context.Context, doc string) (string, error) {
	if f.fail {
		return "", errors.New("no credentials")
	}
	return "https://files.test" + doc, nil
}

func sample() []mockdata.Result {
	day := time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC)
	return []mockdata.Result{
		{ID: 1, PatientID: 5, TechnicianID: 3, ReportedAt: day, Document: "/r/1.pdf"},
		{ID: 2, PatientID: 2, TechnicianID: 3, ReportedAt: day.Add(48 * time.Hour)},
		{ID: 3, PatientID: 2, TechnicianID: 7, ReportedAt: day.Add(24 * time.Hour)},
	}
}

func ids(rs []mockdata.Result) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		user session.User
		want []int64
	}{
		{"patient sees own", session.User{ID: 2, Role: session.RolePatient}, []int64{2, 3}},
		{"other patient", session.User{ID: 5, Role: session.RolePatient}, []int64{1}},
		{"technician sees authored", session.User{ID: 3, Role: session.RoleLabTechnician}, []int64{1, 2}},
		{"physician sees all", session.User{ID: 4, Role: session.RolePhysician}, []int64{1, 2, 3}},
		{"admin sees all", session.User{ID: 1, Role: session.RoleAdministrator}, []int64{1, 2, 3}},
		{"unknown role sees nothing", session.User{ID: 1, Role: "GUEST"}, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := tt.user
			assert.Equal(t, tt.want, ids(Filter(&u, sample())))
		})
	}
}

type staticSource []mockdata.Result

func (s staticSource) List(context.Context) ([]mockdata.Result, error) { return s, nil }

func TestService_Visible(t *testing.T) {
	ctx := context.Background()
	physician := &session.User{ID: 4, Role: session.RolePhysician}

	svc := NewService(staticSource(sample()), fakeViewer{u: physician}, fakeLinker{}, nil)
	got, err := svc.Visible(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2), got[0].ID, "newest first")
	assert.Equal(t, int64(1), got[2].ID)
	assert.Equal(t, "https://files.test/r/1.pdf", got[2].Link)
	assert.Empty(t, got[0].Link, "no document, no link")

	svc = NewService(staticSource(sample()), fakeViewer{u: physician}, fakeLinker{fail: true}, nil)
	got, err = svc.Visible(ctx)
	require.NoError(t, err, "link failures are not fatal")
	assert.Empty(t, got[2].Link)

	svc = NewService(staticSource(sample()), fakeViewer{}, nil, nil)
	_, err = svc.Visible(ctx)
	require.ErrorIs(t, err, session.ErrNoSession)
}

func TestMockSource(t *testing.T) {
	ctx := context.Background()
	dir := mockdata.NewDirectory(storage.NewMemory(), bcrypt.MinCost)
	require.NoError(t, dir.Init(ctx))

	pedro := &session.User{ID: 5, Role: session.RolePatient}
	got, err := NewService(NewMockSource(dir), fakeViewer{u: pedro}, nil, nil).Visible(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PCR para COVID-19", got[0].AnalysisName)

	maria := &session.User{ID: 2, Role: session.RolePatient}
	got, err = NewService(NewMockSource(dir), fakeViewer{u: maria}, nil, nil).Visible(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resultados", r.URL.Path)
		_ = json.NewEncoder(w).Encode(client.Envelope[[]mockdata.Result]{
			Code: client.CodeSuccess,
			Data: []mockdata.Result{{ID: 11, AppointmentID: 3, PatientID: 5, Status: mockdata.ResultCompleted}},
		})
	}))
	defer srv.Close()

	c, err := client.New(srv.URL+"/api", client.HTTPHandler(srv.Client()), nil)
	require.NoError(t, err)

	got, err := NewHTTPSource(c).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(11), got[0].ID)
	assert.Equal(t, mockdata.ResultCompleted, got[0].Status)
}

func TestS3Presigner(t *testing.T) {
	p, err := NewS3Presigner(context.Background(), S3Options{
		Region:    "us-east-1",
		Endpoint:  "http://localhost:9000",
		Bucket:    "lab-results",
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
		Expiry:    5 * time.Minute,
	})
	require.NoError(t, err)

	link, err := p.Link(context.Background(), "/resultados/2025/11/resultado_001.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://localhost:9000/lab-results/resultados/2025/11/resultado_001.pdf?"), link)
	assert.Contains(t, link, "X-Amz-Signature=")
	assert.Contains(t, link, "X-Amz-Expires=300")

	_, err = p.Link(context.Background(), "/")
	require.Error(t, err)

	_, err = NewS3Presigner(context.Background(), S3Options{})
	require.Error(t, err)
}
