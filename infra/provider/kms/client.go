// Package kms wraps the remote key-management service's encrypt and
// decrypt calls. The payment signature travels to the payment provider
// only in its KMS-wrapped form, never as the raw HMAC.
package kms

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client calls a single KMS key's :encrypt and :decrypt endpoints.
// The bearer credential is a constructor parameter; there is no
// process-wide mutable token.
type Client struct {
	baseURL    string
	keyID      string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a KMS client for one key.
func New(baseURL, keyID, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		keyID:      keyID,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Encrypt wraps plaintext with the remote key and returns the
// ciphertext bytes.
func (c *Client) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	return c.call(ctx, "encrypt", "plaintext", "ciphertext", plaintext)
}

// Decrypt unwraps ciphertext with the remote key and returns the
// plaintext bytes.
func (c *Client) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	return c.call(ctx, "decrypt", "ciphertext", "plaintext", ciphertext)
}

// call posts {inField: base64(payload)} to …/keys/{id}:{op} and
// base64-decodes outField from the response.
func (c *Client) call(ctx context.Context, op, inField, outField string, payload []byte) ([]byte, error) {
	url := fmt.Sprintf("%s/keys/%s:%s", c.baseURL, c.keyID, op)

	body, err := json.Marshal(map[string]string{
		inField: base64.StdEncoding.EncodeToString(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("kms %s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("kms %s: create request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kms %s: %w", op, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("kms %s returned status %d: %s", op, resp.StatusCode, string(respBody))
	}

	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("kms %s: decode response: %w", op, err)
	}

	decoded, err := base64.StdEncoding.DecodeString(out[outField])
	if err != nil {
		return nil, fmt.Errorf("kms %s: decode %s: %w", op, outField, err)
	}

	c.logger.Debug("kms call complete", "op", op, "bytes", len(decoded))
	return decoded, nil
}
