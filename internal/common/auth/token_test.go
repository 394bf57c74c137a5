package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenClient_FetchAndCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "client-1", r.Form.Get("client_id"))
		assert.Equal(t, "secret", r.Form.Get("client_secret"))
		assert.Equal(t, "data.api", r.Form.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600,"token_type":"Bearer"}`))
	}))
	defer server.Close()

	tc := NewTokenClient(server.URL, "client-1", "secret", "data.api")

	token, err := tc.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Second call served from cache.
	token, err = tc.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTokenClient_ExpiredTokenRefetched(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			// Expires immediately, inside the early-refresh margin.
			_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":1,"token_type":"Bearer"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-2","expires_in":3600,"token_type":"Bearer"}`))
	}))
	defer server.Close()

	tc := NewTokenClient(server.URL, "c", "s", "")

	token, err := tc.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	token, err = tc.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	tc := NewTokenClient(server.URL, "c", "bad", "")

	_, err := tc.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestStaticTokenSource(t *testing.T) {
	token, err := StaticTokenSource("fixed").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", token)
}
