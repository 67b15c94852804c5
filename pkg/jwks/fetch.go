package jwks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrDiscoveryMissingJWKSURI is returned when the discovery document has no
// jwks_uri field.
var ErrDiscoveryMissingJWKSURI = errors.New("discovery document missing jwks_uri")

// maxResponseSize bounds how much of an IdP response body this daemon will
// buffer, mirroring the same defensive cap used for CouchDB responses.
const maxResponseSize = 1 << 20 // 1MB

// Fetch resolves baseURL's discovery document, follows jwks_uri, and
// returns the parsed JWKS document. Every failure here is scoped to this
// one IdP; callers are expected to treat it as non-fatal to sibling IdPs.
func Fetch(ctx context.Context, client *http.Client, baseURL string) (*Document, error) {
	doc, err := discover(ctx, client, baseURL)
	if err != nil {
		return nil, err
	}
	if doc.JWKSURI == "" {
		return nil, fmt.Errorf("%s: %w", baseURL, ErrDiscoveryMissingJWKSURI)
	}

	var jwksDoc Document
	if err := getJSON(ctx, client, doc.JWKSURI, &jwksDoc); err != nil {
		return nil, fmt.Errorf("fetch jwks from %s: %w", doc.JWKSURI, err)
	}
	return &jwksDoc, nil
}

func discover(ctx context.Context, client *http.Client, baseURL string) (*DiscoveryDocument, error) {
	url := baseURL + "/.well-known/openid-configuration"
	var doc DiscoveryDocument
	if err := getJSON(ctx, client, url, &doc); err != nil {
		return nil, fmt.Errorf("discover %s: %w", url, err)
	}
	return &doc, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if ct != "" && !strings.Contains(ct, "application/json") {
		return fmt.Errorf("GET %s: unexpected content-type %q", url, ct)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", url, err)
	}
	return nil
}
