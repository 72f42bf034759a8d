// Package pokeapi implements the HTTP client for the external PokeAPI
// catalog. The client performs no retries of its own; callers decide how to
// react to transient failures.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tokkalabs/pokecatalog/pkg/logger"
)

// ErrNotFound indicates the remote resource does not exist (HTTP 404)
var ErrNotFound = errors.New("resource not found")

// StatusError is returned for non-2xx responses other than 404
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Transient reports whether the failure is worth retrying by a caller that
// has a retry policy (5xx-class responses)
func (e *StatusError) Transient() bool {
	return e.StatusCode >= 500
}

// Client talks to the PokeAPI REST catalog
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a Client for the given base URL. Every request carries
// the configured timeout.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     log,
	}
}

// ListPokemon fetches one page of pokemon summaries.
// Parameter validation belongs to the caller; this method assumes limit and
// offset are already in range.
func (c *Client) ListPokemon(ctx context.Context, limit, offset int) ([]PokemonSummary, error) {
	u := fmt.Sprintf("%s/pokemon?%s", c.baseURL, url.Values{
		"limit":  []string{strconv.Itoa(limit)},
		"offset": []string{strconv.Itoa(offset)},
	}.Encode())

	var page pageResponse
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, fmt.Errorf("failed to list pokemon: %w", err)
	}
	return page.Results, nil
}

// FetchDetail fetches the full detail record behind a summary URL. Payloads
// missing the required id or name fields are rejected.
func (c *Client) FetchDetail(ctx context.Context, detailURL string) (*PokemonDetail, error) {
	var detail PokemonDetail
	if err := c.getJSON(ctx, detailURL, &detail); err != nil {
		return nil, err
	}
	if detail.ID <= 0 || detail.Name == "" {
		return nil, fmt.Errorf("malformed detail payload from %s: missing id or name", detailURL)
	}
	return &detail, nil
}

// FetchFirstLocationName resolves an encounters URL to the first encounter's
// location area name. An empty encounter list yields an empty string, not an
// error; only a single location is ever needed per pokemon.
func (c *Client) FetchFirstLocationName(ctx context.Context, encountersURL string) (string, error) {
	if encountersURL == "" {
		return "", nil
	}

	var encounters []encounter
	if err := c.getJSON(ctx, encountersURL, &encounters); err != nil {
		return "", err
	}
	if len(encounters) == 0 {
		return "", nil
	}
	return encounters[0].LocationArea.Name, nil
}

// ListNatures fetches the complete nature vocabulary. The vocabulary is
// small (~25 entries), so a single over-sized page avoids pagination.
func (c *Client) ListNatures(ctx context.Context) ([]string, error) {
	u := fmt.Sprintf("%s/nature?limit=1000", c.baseURL)

	var page pageResponse
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, fmt.Errorf("failed to list natures: %w", err)
	}

	names := make([]string, 0, len(page.Results))
	for _, item := range page.Results {
		if item.Name != "" {
			names = append(names, item.Name)
		}
	}
	return names, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", u, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", u, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, URL: u}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed response body from %s: %w", u, err)
	}
	return nil
}
