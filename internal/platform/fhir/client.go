package fhir

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FetchError is returned for any failure talking to the clinical data
// source: transport errors, non-OK statuses, and undecodable bundles.
type FetchError struct {
	Kind string // resource kind being fetched, e.g. "Condition"
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client issues search queries against a FHIR server. It holds no
// per-request state and is safe for concurrent use; construct it once at
// startup and share it.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a search client with a default HTTP client bound by
// the given timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTPClient creates a search client around a caller-supplied
// *http.Client, e.g. an instrumented one in tests.
func NewClientWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// Search queries one resource type with the given filter params and
// returns the matching resources across result pages, in bundle order.
// pageLimit bounds the number of pages consumed; 0 means follow next
// links until the server stops offering them.
func (c *Client) Search(ctx context.Context, resourceType string, params url.Values, pageLimit int) ([]map[string]interface{}, error) {
	next := c.baseURL + "/" + resourceType
	if enc := params.Encode(); enc != "" {
		next += "?" + enc
	}

	var resources []map[string]interface{}
	pages := 0
	for next != "" {
		bundle, err := c.getBundle(ctx, next)
		if err != nil {
			return nil, &FetchError{Kind: resourceType, Err: err}
		}
		resources = append(resources, bundle.Resources()...)

		pages++
		if pageLimit > 0 && pages >= pageLimit {
			break
		}
		next = bundle.NextURL()
	}
	return resources, nil
}

func (c *Client) getBundle(ctx context.Context, rawURL string) (*Bundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/fhir+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("status %d from %s: %s", resp.StatusCode, rawURL, strings.TrimSpace(string(body)))
	}

	var bundle Bundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("decode bundle from %s: %w", rawURL, err)
	}
	if bundle.ResourceType != "Bundle" {
		return nil, fmt.Errorf("expected a Bundle from %s, got %q", rawURL, bundle.ResourceType)
	}
	return &bundle, nil
}
