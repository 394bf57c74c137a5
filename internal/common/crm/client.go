// Package crm implements the data-access boundary with the hosting CRM
// platform: create and update calls against its REST data API, authenticated
// with bearer tokens and optionally impersonating the acting user.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crm-handlers/internal/common/auth"
	"crm-handlers/internal/common/errors"
	"crm-handlers/internal/common/httpclient"
)

// Client talks to the platform's data API. A Client scoped to an acting user
// is obtained with WithCaller; the zero caller means the service principal
// itself.
type Client struct {
	baseURL    string
	tokens     auth.TokenSource
	httpClient *httpclient.Client
	callerID   string
}

func NewClient(baseURL string, tokens auth.TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: httpclient.New(timeout),
	}
}

// WithCaller returns a copy of the client whose requests impersonate the
// given platform user. This is the "data-access handle scoped to the acting
// user" handed to handlers.
func (c *Client) WithCaller(userID string) *Client {
	scoped := *c
	scoped.callerID = userID
	return &scoped
}

// Create inserts a record into the named collection and returns the new
// record's identifier.
func (c *Client) Create(ctx context.Context, collection string, attrs map[string]interface{}) (string, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, collection)

	jsonData, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	if err := c.setHeaders(ctx, req); err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewDataServiceCallFailedError("create "+collection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return "", errors.NewDataServiceCallFailedError("create "+collection,
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
	}

	// The API reports the new identifier in the entity header, e.g.
	// "OData-EntityId: https://host/api/data/accounts(0000-...)".
	if entityID := resp.Header.Get("OData-EntityId"); entityID != "" {
		return parseEntityID(entityID), nil
	}

	var created struct {
		ID string `json:"id"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &created); err != nil {
			return "", fmt.Errorf("failed to unmarshal create response: %w", err)
		}
	}
	if created.ID == "" {
		return "", fmt.Errorf("no record identifier in create response")
	}

	return created.ID, nil
}

// Update overwrites the given attributes on an existing record.
func (c *Client) Update(ctx context.Context, collection, id string, attrs map[string]interface{}) error {
	url := fmt.Sprintf("%s/%s(%s)", c.baseURL, collection, id)

	jsonData, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if err := c.setHeaders(ctx, req); err != nil {
		return err
	}
	// Never upsert: the record must already exist.
	req.Header.Set("If-Match", "*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewDataServiceCallFailedError("update "+collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return errors.NewDataServiceCallFailedError("update "+collection,
			fmt.Errorf("record %s status %d: %s", id, resp.StatusCode, string(body)))
	}

	return nil
}

// Get retrieves a record's attributes by identifier.
func (c *Client) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/%s(%s)", c.baseURL, collection, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if err := c.setHeaders(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get %s record %s (status %d): %s", collection, id, resp.StatusCode, string(body))
	}

	var attrs map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return attrs, nil
}

// HealthCheck verifies connectivity and authentication against the data API.
func (c *Client) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/WhoAmI", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if err := c.setHeaders(ctx, req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health check failed (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire access token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	caller := c.callerID
	if caller == "" {
		caller = CallerFromContext(ctx)
	}
	if caller != "" {
		req.Header.Set("CallerObjectId", caller)
	}
	return nil
}

type callerKey struct{}

// WithCallerContext marks the context so subsequent data calls impersonate
// the given user. The host binary sets this from the event's acting user; an
// explicit WithCaller client takes precedence.
func WithCallerContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey{}, userID)
}

// CallerFromContext returns the acting user marked on the context, if any.
func CallerFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(callerKey{}).(string); ok {
		return userID
	}
	return ""
}

func parseEntityID(header string) string {
	open := strings.LastIndex(header, "(")
	end := strings.LastIndex(header, ")")
	if open == -1 || end == -1 || end < open {
		return header
	}
	return header[open+1 : end]
}
