package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/internal/storage"
	"github.com/yairfalse/apidrift/pkg/config"
	"github.com/yairfalse/apidrift/pkg/types"
)

func newTestApp(t *testing.T, handler http.HandlerFunc, token string) (*App, *storage.MemoryTokenStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL

	store := storage.NewMemoryTokenStore(token)
	a, err := NewAppFactory().Create(cfg, Options{Version: "1.2.3", LogOutput: io.Discard, TokenStore: store})
	require.NoError(t, err)
	return a, store
}

func TestCreate_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = "not a url"

	_, err := NewAppFactory().Create(cfg, Options{LogOutput: io.Discard, TokenStore: storage.NewMemoryTokenStore("")})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
}

func TestCreate_HydratesSession(t *testing.T) {
	var gotAuth, gotUA string
	a, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode([]types.Collection{{ID: "c1", Name: "Petstore"}})
	}, "tok-1")

	require.NoError(t, a.RequireSession())

	collections, err := a.Client().ListUserCollections(context.Background())
	require.NoError(t, err)
	assert.Len(t, collections, 1)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "apidrift/1.2.3", gotUA)
}

func TestRequireSession_LoggedOut(t *testing.T) {
	a, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {}, "")

	err := a.RequireSession()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuthentication))
}

func TestUnauthorizedClearsPersistedToken(t *testing.T) {
	a, store := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, "stale")

	_, err := a.Client().ListUserCollections(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeAuthentication))

	assert.False(t, a.Session().IsAuthenticated())
	token, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, token)
}

func TestLoginThroughWiredClient(t *testing.T) {
	a, store := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"token":"fresh"}`))
	}, "")

	require.NoError(t, a.Session().Login(context.Background(), "dev@example.com", "secret"))

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.NoError(t, a.RequireSession())
}

func TestPrinterAndViews(t *testing.T) {
	a, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {}, "")

	var buf bytes.Buffer
	p, err := a.Printer(&buf)
	require.NoError(t, err)
	assert.False(t, p.Structured())

	a.Config().Output.Format = "xml"
	_, err = a.Printer(&buf)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))

	v := a.ImpactView(&types.ImpactAnalysisResponse{Summary: types.ImpactSummary{RiskScore: 70}})
	assert.Equal(t, "high", string(v.Tier()))

	assert.Equal(t, 20, a.Browser(nil).View().PageSize)
	assert.Equal(t, 10, a.Pager("c1", "Petstore").View().PageSize)
}
