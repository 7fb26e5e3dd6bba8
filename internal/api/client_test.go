package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/apidrift/internal/cache"
	"github.com/yairfalse/apidrift/internal/errors"
	"github.com/yairfalse/apidrift/pkg/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8000")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfiguration))
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(RequestIDHeader)
		w.Write([]byte(`[]`))
	}, WithTokenSource(TokenSourceFunc(func() string { return "tok-123" })))

	_, err := c.ListUserCollections(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Len(t, gotRequestID, 36)
}

func TestClient_AuthEndpointsSkipToken(t *testing.T) {
	var gotAuth string
	var gotBody types.Credentials
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		assert.Equal(t, "/auth/login", r.URL.Path)
		w.Write([]byte(`{"token":"fresh"}`))
	}, WithTokenSource(TokenSourceFunc(func() string { return "stale" })))

	token, err := c.Login(context.Background(), types.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "fresh", token)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "a@b.c", gotBody.Email)
}

func TestClient_UnauthorizedTriggersHandler(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Token expired"}`))
	}, WithUnauthorizedHandler(func() { calls.Add(1) }))

	_, err := c.ListUserCollections(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsType(err, errors.ErrorTypeAuthentication))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_LoginUnauthorizedPassesMessageThrough(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid email or password"}`))
	}, WithUnauthorizedHandler(func() { calls.Add(1) }))

	_, err := c.Login(context.Background(), types.Credentials{Email: "a@b.c", Password: "bad"})
	require.Error(t, err)

	de, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeBackend, de.Type)
	assert.Equal(t, "Invalid email or password", de.Message)
	assert.Equal(t, http.StatusUnauthorized, de.StatusCode)
	assert.Zero(t, calls.Load(), "bad credentials must not end the session")
}

func TestClient_RetriesOnceOnTooManyRequests(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"status":"healthy"}`))
	})

	status, err := c.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_SecondTooManyRequestsGivesUp(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithRetryAfterDefault(10*time.Millisecond))

	_, err := c.Health(context.Background())
	require.Error(t, err)

	assert.True(t, errors.IsType(err, errors.ErrorTypeRateLimit))
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_RetryWaitHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3600")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Health(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_NoRetryOnServerError(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListUserCollections(context.Background())
	require.Error(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, errors.MessageBackend, errors.UserMessage(err))
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.ListUserCollections(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNetwork))
	assert.Equal(t, errors.MessageNetwork, errors.UserMessage(err))
}

func TestClient_CachesSnapshotScopedReads(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"changes":[{"id":"1","change_type":"added","path":"a","human_path":"a"}]}`))
	}, WithCache(cache.NewLRU(cache.DefaultConfig())))

	q := DiffQuery{CollectionID: "c1", NewSnapshotID: "s2"}
	for i := 0; i < 3; i++ {
		diff, err := c.Diff(context.Background(), q)
		require.NoError(t, err)
		assert.Len(t, diff.Changes, 1)
	}
	assert.Equal(t, int32(1), hits.Load())

	c.ClearCache()
	_, err := c.Diff(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_UnauthorizedClearsCache(t *testing.T) {
	var fail atomic.Bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"summary":{"risk_score":10}}`))
	}, WithCache(cache.NewLRU(cache.DefaultConfig())))

	_, err := c.ImpactAnalysis(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, c.CacheStats().Size)

	fail.Store(true)
	_, err = c.ListUserCollections(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, c.CacheStats().Size)
}

func TestClient_SendsJSONBody(t *testing.T) {
	var gotContentType string
	var gotBody map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Write([]byte(`{"id":"c1","name":"Orders API"}`))
	})

	saved, err := c.SaveCollection(context.Background(), types.SaveCollectionRequest{CollectionID: " c1 ", Name: "Orders API"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{"collection_id": "c1", "name": "Orders API"}, gotBody)
	assert.Equal(t, "c1", saved.ID)
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	fallback := 60 * time.Second

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"missing", "", fallback},
		{"seconds", "5", 5 * time.Second},
		{"zero", "0", 0},
		{"negative", "-3", fallback},
		{"http date", "Mon, 01 Jan 2024 12:00:30 GMT", 30 * time.Second},
		{"past date", "Mon, 01 Jan 2024 11:00:00 GMT", 0},
		{"garbage", "soon", fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRetryAfter(tt.value, fallback, now))
		})
	}
}

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail":"Collection not found"}`, "Collection not found"},
		{"message", `{"message":"Bad input"}`, "Bad input"},
		{"error", `{"error":"Nope"}`, "Nope"},
		{"validation list", `{"detail":[{"loc":["body","email"],"msg":"field required"}]}`, "field required"},
		{"nested", `{"error":{"message":"deep"}}`, "deep"},
		{"empty detail", `{"detail":"  "}`, ""},
		{"not json", `<html>bad gateway</html>`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMessage([]byte(tt.body)))
		})
	}
}
