package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm-handlers/internal/common/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]interface{}
}

func newTestServer(t *testing.T, status int, respHeader map[string]string, respBody string, captured *[]capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		*captured = append(*captured, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		for k, v := range respHeader {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
}

func TestClient_Create_EntityIDHeader(t *testing.T) {
	var captured []capturedRequest
	server := newTestServer(t, http.StatusNoContent, map[string]string{
		"OData-EntityId": "https://host/api/data/contacts(3f2504e0-4f89-11d3-9a0c-0305e82c3301)",
	}, "", &captured)
	defer server.Close()

	client := NewClient(server.URL, auth.StaticTokenSource("tok"), 5*time.Second)

	id, err := client.Create(context.Background(), "contacts", map[string]interface{}{"firstname": "Default"})

	require.NoError(t, err)
	assert.Equal(t, "3f2504e0-4f89-11d3-9a0c-0305e82c3301", id)

	require.Len(t, captured, 1)
	assert.Equal(t, http.MethodPost, captured[0].Method)
	assert.Equal(t, "/contacts", captured[0].Path)
	assert.Equal(t, "Bearer tok", captured[0].Header.Get("Authorization"))
	assert.Equal(t, "Default", captured[0].Body["firstname"])
}

func TestClient_Create_BodyID(t *testing.T) {
	var captured []capturedRequest
	server := newTestServer(t, http.StatusCreated, nil, `{"id":"abc-123"}`, &captured)
	defer server.Close()

	client := NewClient(server.URL, auth.StaticTokenSource(""), 5*time.Second)

	id, err := client.Create(context.Background(), "tasks", map[string]interface{}{})

	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestClient_Create_ErrorStatus(t *testing.T) {
	var captured []capturedRequest
	server := newTestServer(t, http.StatusBadRequest, nil, `{"error":"bad"}`, &captured)
	defer server.Close()

	client := NewClient(server.URL, auth.StaticTokenSource("tok"), 5*time.Second)

	_, err := client.Create(context.Background(), "contacts", map[string]interface{}{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestClient_Update_NeverUpserts(t *testing.T) {
	var captured []capturedRequest
	server := newTestServer(t, http.StatusNoContent, nil, "", &captured)
	defer server.Close()

	client := NewClient(server.URL, auth.StaticTokenSource("tok"), 5*time.Second)

	err := client.Update(context.Background(), "accounts", "A", map[string]interface{}{"statuscode": 1})

	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, http.MethodPatch, captured[0].Method)
	assert.Equal(t, "/accounts(A)", captured[0].Path)
	assert.Equal(t, "*", captured[0].Header.Get("If-Match"))
}

func TestClient_CallerImpersonation(t *testing.T) {
	var captured []capturedRequest
	server := newTestServer(t, http.StatusNoContent, nil, "", &captured)
	defer server.Close()

	client := NewClient(server.URL, auth.StaticTokenSource("tok"), 5*time.Second)

	// No caller: header absent.
	require.NoError(t, client.Update(context.Background(), "accounts", "A", nil))
	assert.Empty(t, captured[0].Header.Get("CallerObjectId"))

	// Caller from the request context.
	ctx := WithCallerContext(context.Background(), "user-42")
	require.NoError(t, client.Update(ctx, "accounts", "A", nil))
	assert.Equal(t, "user-42", captured[1].Header.Get("CallerObjectId"))

	// Explicit WithCaller wins over the context.
	scoped := client.WithCaller("svc-admin")
	require.NoError(t, scoped.Update(ctx, "accounts", "A", nil))
	assert.Equal(t, "svc-admin", captured[2].Header.Get("CallerObjectId"))
}

func TestClient_HealthCheck(t *testing.T) {
	var captured []capturedRequest
	server := newTestServer(t, http.StatusOK, nil, `{"UserId":"svc"}`, &captured)
	defer server.Close()

	client := NewClient(server.URL, auth.StaticTokenSource("tok"), 5*time.Second)

	require.NoError(t, client.HealthCheck(context.Background()))
	assert.Equal(t, "/WhoAmI", captured[0].Path)
}

func TestParseEntityID(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"https://host/api/data/accounts(1234)", "1234"},
		{"accounts(1234)", "1234"},
		{"no-parens-at-all", "no-parens-at-all"},
		{"broken(", "broken("},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseEntityID(tt.header))
	}
}
