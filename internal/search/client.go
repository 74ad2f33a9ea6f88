// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pdiddy/femcite/internal/httputil"
	"github.com/pdiddy/femcite/pkg/types"
)

// DefaultEndpoint is the curated femininities corpus search route.
const DefaultEndpoint = "https://femcite-api.onrender.com/search"

// DefaultTopK is the number of entries requested when the caller passes none.
const DefaultTopK = 10

// Client queries the semantic search service over HTTP.
type Client struct {
	// Endpoint is the search route; DefaultEndpoint when empty.
	Endpoint string

	// APIKey, when set, is sent as a bearer token.
	APIKey string

	// UserAgent is sent with every request.
	UserAgent string

	// HTTP performs the requests; http.DefaultClient when nil.
	HTTP httputil.Doer
}

// NewClient builds a Client from configuration.
func NewClient(cfg types.SearchConfig, hc *http.Client) *Client {
	c := &Client{
		Endpoint:  cfg.Endpoint,
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
	}
	if hc != nil {
		c.HTTP = hc
	}
	return c
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Authors  string `json:"authors"`
	Year     year   `json:"year"`
	DOI      string `json:"doi"`
}

// year accepts a JSON number, a numeric string, or null.
type year int

func (y *year) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid year %s", string(b))
	}
	*y = year(n)
	return nil
}

// Retrieve sends the query and limit to the search service and returns the
// entries in service order, each with its display citation computed. A
// service that finds nothing yields an empty slice and no error.
func (c *Client) Retrieve(ctx context.Context, query string, topK int) ([]types.SourceEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	body, err := json.Marshal(searchRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("marshaling search request: %w", err)
	}

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	var hc httputil.Doer = http.DefaultClient
	if c.HTTP != nil {
		hc = c.HTTP
	}

	resp, err := httputil.DoWithRetry(ctx, hc, req, 0)
	if err != nil {
		return nil, fmt.Errorf("search service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search service returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	entries := make([]types.SourceEntry, 0, len(sr.Results))
	for _, r := range sr.Results {
		e := types.SourceEntry{
			Title:    strings.TrimSpace(r.Title),
			Authors:  strings.TrimSpace(r.Authors),
			Year:     int(r.Year),
			DOI:      strings.TrimSpace(r.DOI),
			Abstract: strings.TrimSpace(r.Abstract),
		}
		entries = append(entries, e.WithCitation())
	}
	return entries, nil
}
