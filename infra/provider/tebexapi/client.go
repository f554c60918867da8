// Package tebexapi talks to the storefront provider's REST API:
// account information, the category listing and the flat package list.
package tebexapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/chrmc/storefront/pkg/store"
)

// Client is an authenticated storefront-provider API client.
type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for the given API base URL and store secret.
func New(baseURL, secret string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Information fetches store/account metadata, including the native
// currency every package price is quoted in.
func (c *Client) Information(ctx context.Context) (*store.Information, error) {
	var info store.Information
	if err := c.get(ctx, "/information", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Listing fetches the two-level category tree.
func (c *Client) Listing(ctx context.Context) ([]store.ListedCategory, error) {
	var resp struct {
		Categories []store.ListedCategory `json:"categories"`
	}
	if err := c.get(ctx, "/listing", &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// Packages fetches the flat package/price list.
func (c *Client) Packages(ctx context.Context) ([]store.Package, error) {
	var packages []store.Package
	if err := c.get(ctx, "/packages", &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Tebex-Secret", c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}

	c.logger.Debug("provider fetch complete", "path", path)
	return nil
}

// Ensure Client implements store.ProviderClient.
var _ store.ProviderClient = (*Client)(nil)
