package auth

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetTokenAndSetAuthHeader(t *testing.T) {
	var hits atomic.Int64
	srv := tokenServer(t, &hits)

	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: srv.URL})

	token, err := client.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "token123", token)

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, client.SetAuthHeader(req))
	assert.Equal(t, "Bearer token123", req.Header.Get("Authorization"))
	assert.Equal(t, int64(1), hits.Load(), "token is reused while valid")
}

func TestHTTPClient(t *testing.T) {
	var hits atomic.Int64
	tokens := tokenServer(t, &hits)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(upstream.Close)

	hc := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: tokens.URL}).HTTPClient(time.Second)
	for i := 0; i < 2; i++ {
		resp, err := hc.Get(upstream.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, int64(1), hits.Load())
}

func TestConfEnabled(t *testing.T) {
	assert.False(t, Conf{}.Enabled())
	assert.True(t, Conf{ClientID: "id", AuthURL: "http://x"}.Enabled())
}
