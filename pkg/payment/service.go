// Package payment builds signed payment links for cart checkouts.
//
// The order id is signed with an HMAC over the merchant secret, and
// the raw HMAC is wrapped by a remote KMS before it travels to the
// payment provider: the provider only ever sees the KMS ciphertext.
// Order creation is never retried — a duplicate POST could produce a
// duplicate order.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/chrmc/storefront/pkg/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidSignature is returned when a webhook signature does not
// verify against the order id.
var ErrInvalidSignature = errors.New("invalid payment signature")

// Config carries the merchant-side payment settings.
type Config struct {
	MerchantID   string
	Secret       string
	Comment      string
	WebhookURL   string
	LifetimeDays int
}

// Service creates payment links and verifies webhook callbacks.
type Service struct {
	provider ProviderClient
	kms      Encrypter
	cfg      Config
	logger   *slog.Logger
	newID    func() string
}

// NewService wires a payment service.
func NewService(provider ProviderClient, kms Encrypter, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		kms:      kms,
		cfg:      cfg,
		logger:   logger,
		newID:    func() string { return uuid.NewString() },
	}
}

// CreateLink signs and submits an order for the cart and returns the
// hosted payment page URL and the QR code image URL.
func (s *Service) CreateLink(ctx context.Context, customer string, c *cart.Cart) (payURL, qrURL string, err error) {
	// A random component keeps order ids unique even when one customer
	// checks out twice in the same instant.
	orderID := fmt.Sprintf("%s:%s:%s", s.cfg.MerchantID, customer, s.newID())

	signature, err := s.kms.Encrypt(ctx, s.sign(orderID))
	if err != nil {
		return "", "", fmt.Errorf("encrypt signature: %w", err)
	}

	order := Order{
		ID:           orderID,
		LifetimeDays: s.cfg.LifetimeDays,
		Receipt:      buildReceipt(c),
		Comment:      s.cfg.Comment,
		Meta:         map[string]string{"nickname": customer},
		WebhookURL:   s.cfg.WebhookURL,
	}

	paymentID, err := s.provider.CreateOrder(ctx, order, signature)
	if err != nil {
		return "", "", fmt.Errorf("create payment order: %w", err)
	}

	s.logger.Info("payment link created",
		"order_id", orderID,
		"items", len(order.Receipt),
		"total", c.Total(),
	)
	return s.provider.PayURL(paymentID), s.provider.QRURL(paymentID), nil
}

// VerifyCallback checks a webhook's signature: the carried value is
// base64 ciphertext, KMS-decrypted back to the raw HMAC and compared
// in constant time against a fresh HMAC of the order id.
func (s *Service) VerifyCallback(ctx context.Context, orderID, signatureB64 string) error {
	ciphertext, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return fmt.Errorf("%w: not base64: %v", ErrInvalidSignature, err)
	}

	mac, err := s.kms.Decrypt(ctx, ciphertext)
	if err != nil {
		return fmt.Errorf("decrypt signature: %w", err)
	}

	if !hmac.Equal(mac, s.sign(orderID)) {
		return ErrInvalidSignature
	}
	return nil
}

// sign computes the HMAC-SHA256 of an order id with the merchant
// secret.
func (s *Service) sign(orderID string) []byte {
	mac := hmac.New(sha256.New, []byte(s.cfg.Secret))
	mac.Write([]byte(orderID))
	return mac.Sum(nil)
}

// buildReceipt turns cart entries into provider receipt lines with
// normalized names and prices in minor units.
func buildReceipt(c *cart.Cart) []ReceiptItem {
	entries := c.Entries()
	receipt := make([]ReceiptItem, 0, len(entries))
	for _, e := range entries {
		receipt = append(receipt, ReceiptItem{
			Name:     normalizeName(e.Product.Name),
			Price:    minorUnits(e.Product.Price),
			Quantity: e.Quantity,
			SKU:      strconv.FormatInt(e.Product.ID, 10),
		})
	}
	return receipt
}

// normalizeName decodes numeric HTML character references, collapses
// whitespace and upper-cases the first letter.
func normalizeName(name string) string {
	name = html.UnescapeString(name)
	name = strings.Join(strings.Fields(name), " ")

	runes := []rune(name)
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

// minorUnits converts a major-unit price to integer cents, rounding
// half away from zero in decimal arithmetic.
func minorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
