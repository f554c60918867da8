// Package pay implements the hosted-payment provider client: one POST
// to create an order, two URL templates derived from the returned
// payment id.
package pay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/chrmc/storefront/pkg/payment"
)

// Client talks to the payment provider's API for one merchant.
type Client struct {
	apiURL     string
	billURL    string
	merchantID string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a payment provider client.
func New(apiURL, billURL, merchantID string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiURL:     apiURL,
		billURL:    billURL,
		merchantID: merchantID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type orderResponse struct {
	Payload struct {
		ID string `json:"id"`
	} `json:"payload"`
}

// CreateOrder posts the order payload with the KMS-wrapped signature
// in the X-Signature header (URL-encoded base64) and returns the
// provider's opaque payment id. The call is never retried: a repeated
// POST could create a duplicate order.
func (c *Client) CreateOrder(ctx context.Context, order payment.Order, signature []byte) (string, error) {
	endpoint := fmt.Sprintf("%s/pay?merchantId=%s", c.apiURL, url.QueryEscape(c.merchantID))

	body, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", url.QueryEscape(base64.StdEncoding.EncodeToString(signature)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("pay returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if out.Payload.ID == "" {
		return "", fmt.Errorf("pay response carries no payment id")
	}

	c.logger.Info("payment order created", "order_id", order.ID, "payment_id", out.Payload.ID)
	return out.Payload.ID, nil
}

// PayURL returns the hosted payment page for a payment id.
func (c *Client) PayURL(paymentID string) string {
	return fmt.Sprintf("%s/bill/?id=%s", c.billURL, url.QueryEscape(paymentID))
}

// QRURL returns the QR code image for a payment id.
func (c *Client) QRURL(paymentID string) string {
	return fmt.Sprintf("%s/pay?id=%s&act=qr", c.apiURL, url.QueryEscape(paymentID))
}

// Ensure Client implements payment.ProviderClient.
var _ payment.ProviderClient = (*Client)(nil)
