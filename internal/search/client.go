// Package search calls the external price-lookup collaborator. The core
// treats an empty or absent result as "no price found"; lookups run only on
// the user-triggered path and never inside the analytics tick.
package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/suyash-modi/Product-Detection/internal/zone"
)

// Client queries the price-lookup service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given endpoint. An empty baseURL
// disables lookups: every call returns no result.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether a lookup endpoint is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

type lookupResponse struct {
	Title  string `json:"title"`
	Price  string `json:"price"`
	Source string `json:"source"`
	Link   string `json:"link"`
}

// Lookup asks the service for price/title information. cropPath is a hint
// for image-based matching; label is the fallback query. Returns nil with no
// error when the service has nothing: absence is an answer, not a failure.
func (c *Client) Lookup(ctx context.Context, cropPath, label string) (*zone.SearchResult, error) {
	if !c.Enabled() {
		return nil, nil
	}

	query := url.Values{}
	query.Set("q", label)
	if cropPath != "" {
		query.Set("crop", filepath.Base(cropPath))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build search request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("search service returned %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "failed to decode search response")
	}

	if strings.TrimSpace(body.Title) == "" && strings.TrimSpace(body.Price) == "" {
		return nil, nil
	}

	return &zone.SearchResult{
		Title:  strings.TrimSpace(body.Title),
		Price:  strings.TrimSpace(body.Price),
		Source: strings.TrimSpace(body.Source),
		Link:   strings.TrimSpace(body.Link),
	}, nil
}
