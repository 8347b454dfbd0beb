// Package ckan is a minimal client for the CKAN action API, covering the
// package operations the harvesting engine needs.
package ckan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/opendataio/harvester/catalog"
)

// defaultPageSize is the number of packages fetched per search page.
const defaultPageSize = 100

// Client talks to one CKAN instance.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *slog.Logger
}

// New creates a client for the CKAN instance at baseURL. The API key is
// sent on every request; pass "" for anonymous read-only access.
func New(baseURL, apiKey string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

// SetHTTPClient overrides the underlying HTTP client, mainly for tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// APIError is a CKAN action-level failure: HTTP succeeded but the action
// reported success=false.
type APIError struct {
	Action  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ckan action %s failed: %s", e.Action, e.Message)
}

// actionResponse is the standard CKAN action envelope.
type actionResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   map[string]any  `json:"error"`
}

func (c *Client) call(ctx context.Context, action string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", action, err)
	}

	endpoint := fmt.Sprintf("%s/api/3/action/%s", c.baseURL, action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-CKAN-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", action, err)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("call %s: HTTP %d", action, resp.StatusCode)
	}

	var envelope actionResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode %s envelope: %w", action, err)
	}
	if !envelope.Success {
		return &APIError{Action: action, Message: fmt.Sprintf("%v", envelope.Error)}
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", action, err)
		}
	}
	return nil
}

// CreatePackage creates a dataset and returns the stored copy.
func (c *Client) CreatePackage(ctx context.Context, ds catalog.Dataset) (catalog.Dataset, error) {
	var created catalog.Dataset
	if err := c.call(ctx, "package_create", ds, &created); err != nil {
		return nil, err
	}
	c.log.Info("package created", "name", created["name"])
	return created, nil
}

// UpdatePackage updates a dataset in place and returns the stored copy.
func (c *Client) UpdatePackage(ctx context.Context, ds catalog.Dataset) (catalog.Dataset, error) {
	var updated catalog.Dataset
	if err := c.call(ctx, "package_update", ds, &updated); err != nil {
		return nil, err
	}
	c.log.Info("package updated", "name", updated["name"])
	return updated, nil
}

// DeletePackage marks a dataset deleted.
func (c *Client) DeletePackage(ctx context.Context, id string) error {
	return c.call(ctx, "package_delete", map[string]string{"id": id}, nil)
}

// ShowPackage fetches one dataset by id or name.
func (c *Client) ShowPackage(ctx context.Context, id string) (catalog.Dataset, error) {
	var ds catalog.Dataset
	if err := c.call(ctx, "package_show", map[string]string{"id": id}, &ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// searchResult is the package_search action result.
type searchResult struct {
	Count   int               `json:"count"`
	Results []catalog.Dataset `json:"results"`
}

// SearchPackages lazily iterates all datasets matching the Solr query,
// fetching pages on demand. Iteration stops early on the first error,
// which is reported through errOut when non-nil.
func (c *Client) SearchPackages(ctx context.Context, query string, errOut *error) iter.Seq[catalog.Dataset] {
	return func(yield func(catalog.Dataset) bool) {
		start := 0
		for {
			payload := map[string]any{
				"q":     query,
				"start": start,
				"rows":  defaultPageSize,
			}
			var page searchResult
			if err := c.call(ctx, "package_search", payload, &page); err != nil {
				if errOut != nil {
					*errOut = err
				}
				return
			}
			for _, ds := range page.Results {
				if !yield(ds) {
					return
				}
			}
			start += len(page.Results)
			if len(page.Results) == 0 || start >= page.Count {
				return
			}
		}
	}
}

// PackageSearchURL renders the equivalent GET search URL, useful in logs.
func (c *Client) PackageSearchURL(query string) string {
	return fmt.Sprintf("%s/api/3/action/package_search?q=%s", c.baseURL, url.QueryEscape(query))
}
