package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"crm-handlers/internal/common/errors"
	"crm-handlers/internal/common/httpclient"
)

// TokenClient acquires access tokens for the platform's data API using the
// OAuth2 client-credentials flow. Tokens are cached until shortly before
// expiry.
type TokenClient struct {
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string
	httpClient   *httpclient.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// TokenResponse holds the response from the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope,omitempty"`
}

func NewTokenClient(tokenURL, clientID, clientSecret, scope string) *TokenClient {
	return &TokenClient{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		httpClient:   httpclient.New(30 * time.Second),
	}
}

// Token returns a valid access token, fetching a new one when the cached
// token has expired.
func (t *TokenClient) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.accessToken != "" && t.tokenExpiry.After(time.Now().Add(30*time.Second)) {
		return t.accessToken, nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", t.clientID)
	data.Set("client_secret", t.clientSecret)
	if t.scope != "" {
		data.Set("scope", t.scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.NewAuthTokenFailedError(fmt.Errorf("failed to create token request: %w", err))
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", errors.NewAuthTokenFailedError(fmt.Errorf("failed to execute token request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errors.NewAuthTokenFailedError(
			fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body)))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", errors.NewAuthTokenFailedError(fmt.Errorf("failed to decode token response: %w", err))
	}

	t.accessToken = tokenResp.AccessToken
	t.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	return t.accessToken, nil
}

// StaticTokenSource returns a source that always yields the given token.
// Used by tests and local setups without a token endpoint.
func StaticTokenSource(token string) TokenSource {
	return staticSource(token)
}

// TokenSource yields bearer tokens for the data API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type staticSource string

func (s staticSource) Token(context.Context) (string, error) {
	return string(s), nil
}
