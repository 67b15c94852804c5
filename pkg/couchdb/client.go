// Package couchdb implements the per-node diff/update/restart orchestration
// (C4) and per-server cluster fan-out (C5) that push a keys.Set into every
// node of every configured CouchDB server.
package couchdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrUnauthorized is returned when a CouchDB call fails with 401/403.
var ErrUnauthorized = errors.New("couchdb: unauthorized")

// ErrHTTP is returned for any other non-2xx CouchDB response.
var ErrHTTP = errors.New("couchdb: http error")

// maxResponseSize bounds how much of a CouchDB response body is buffered.
const maxResponseSize = 1 << 20 // 1MB

// Client talks to a single CouchDB server's HTTP API. The supplied
// *http.Client is expected to already carry Basic-auth credentials (see
// pkg/networking.HTTPClientBuilder.WithBasicAuth).
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

// NewClient returns a Client for baseURL using httpClient for all requests.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{HTTP: httpClient, BaseURL: baseURL}
}

// Membership returns the cluster_nodes list from GET {server}/_membership.
func (c *Client) Membership(ctx context.Context) ([]string, error) {
	var body struct {
		ClusterNodes []string `json:"cluster_nodes"`
	}
	if err := c.getJSON(ctx, c.BaseURL+"/_membership", &body); err != nil {
		return nil, err
	}
	return body.ClusterNodes, nil
}

// JWTKeysURL returns the config endpoint URL for a given node and, when
// keyID is non-empty, a specific key within it.
func (c *Client) JWTKeysURL(node, keyID string) string {
	url := fmt.Sprintf("%s/_node/%s/_config/jwt_keys", c.BaseURL, node)
	if keyID != "" {
		url += "/" + keyID
	}
	return url
}

// GetJWTKeys returns the current key->PEM mapping configured on node.
func (c *Client) GetJWTKeys(ctx context.Context, node string) (map[string]string, error) {
	current := map[string]string{}
	if err := c.getJSON(ctx, c.JWTKeysURL(node, ""), &current); err != nil {
		return nil, err
	}
	return current, nil
}

// PutJWTKey PUTs a single key's PEM value into node's jwt_keys config.
func (c *Client) PutJWTKey(ctx context.Context, node, keyID, pem string) error {
	body, err := json.Marshal(pem)
	if err != nil {
		return fmt.Errorf("marshal pem for %s: %w", keyID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.JWTKeysURL(node, keyID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build PUT request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("PUT %s: %w", req.URL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	return statusToErr(req.URL.String(), resp.StatusCode)
}

// Restart POSTs {server}/_node/{node}/_restart.
func (c *Client) Restart(ctx context.Context, node string) error {
	url := fmt.Sprintf("%s/_node/%s/_restart", c.BaseURL, node)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("build restart request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	return statusToErr(url, resp.StatusCode)
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build GET request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if err := statusToErr(url, resp.StatusCode); err != nil {
		return err
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", url, err)
	}
	return nil
}

func statusToErr(url string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: HTTP %d: %w", url, status, ErrUnauthorized)
	default:
		return fmt.Errorf("%s: HTTP %d: %w", url, status, ErrHTTP)
	}
}
