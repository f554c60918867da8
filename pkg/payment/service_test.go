package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/chrmc/storefront/pkg/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// xorKMS "encrypts" by XORing with a fixed byte, enough to prove the
// service round-trips ciphertext through the Encrypter.
type xorKMS struct{ calls int }

func (k *xorKMS) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	k.calls++
	return xorBytes(plaintext), nil
}

func (k *xorKMS) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	k.calls++
	return xorBytes(ciphertext), nil
}

func xorBytes(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ 0x5a
	}
	return out
}

type failingKMS struct{ err error }

func (k *failingKMS) Encrypt(context.Context, []byte) ([]byte, error) { return nil, k.err }
func (k *failingKMS) Decrypt(context.Context, []byte) ([]byte, error) { return nil, k.err }

type stubPayProvider struct {
	gotOrder     Order
	gotSignature []byte
	calls        int
	err          error
}

func (p *stubPayProvider) CreateOrder(_ context.Context, order Order, signature []byte) (string, error) {
	p.calls++
	p.gotOrder = order
	p.gotSignature = signature
	if p.err != nil {
		return "", p.err
	}
	return "pmt-42", nil
}

func (p *stubPayProvider) PayURL(id string) string { return "https://pay.example/bill/?id=" + id }
func (p *stubPayProvider) QRURL(id string) string {
	return "https://api.example/pay?id=" + id + "&act=qr"
}

func testConfig() Config {
	return Config{
		MerchantID:   "chrmc",
		Secret:       "merchant-secret",
		Comment:      "Minecraft server payment: Chrome MC",
		WebhookURL:   "https://chrmc.fun/api/pay/callback",
		LifetimeDays: 3,
	}
}

func checkoutCart() *cart.Cart {
	c := cart.New()
	c.Add(cart.Product{ID: 1, Name: "vip&#33; rank", Price: 4.99})
	c.Add(cart.Product{ID: 1, Name: "vip&#33; rank", Price: 4.99})
	c.Add(cart.Product{ID: 2, Name: "  crate   key ", Price: 0.99})
	return c
}

func TestCreateLink(t *testing.T) {
	provider := &stubPayProvider{}
	kms := &xorKMS{}
	svc := NewService(provider, kms, testConfig(), slog.Default())
	svc.newID = func() string { return "fixed-uuid" }

	payURL, qrURL, err := svc.CreateLink(context.Background(), "Steve", checkoutCart())
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example/bill/?id=pmt-42", payURL)
	assert.Equal(t, "https://api.example/pay?id=pmt-42&act=qr", qrURL)

	order := provider.gotOrder
	assert.Equal(t, "chrmc:Steve:fixed-uuid", order.ID)
	assert.Equal(t, 3, order.LifetimeDays)
	assert.Equal(t, "https://chrmc.fun/api/pay/callback", order.WebhookURL)
	assert.Equal(t, map[string]string{"nickname": "Steve"}, order.Meta)

	require.Len(t, order.Receipt, 2)
	assert.Equal(t, ReceiptItem{Name: "Vip! rank", Price: 499, Quantity: 2, SKU: "1"}, order.Receipt[0])
	assert.Equal(t, ReceiptItem{Name: "Crate key", Price: 99, Quantity: 1, SKU: "2"}, order.Receipt[1])

	// The header value must be the KMS-wrapped HMAC of the order id,
	// not the raw HMAC.
	mac := hmac.New(sha256.New, []byte("merchant-secret"))
	mac.Write([]byte(order.ID))
	assert.Equal(t, xorBytes(mac.Sum(nil)), provider.gotSignature)
}

func TestCreateLinkOrderIDsAreUnique(t *testing.T) {
	provider := &stubPayProvider{}
	svc := NewService(provider, &xorKMS{}, testConfig(), slog.Default())

	_, _, err := svc.CreateLink(context.Background(), "Steve", checkoutCart())
	require.NoError(t, err)
	first := provider.gotOrder.ID

	_, _, err = svc.CreateLink(context.Background(), "Steve", checkoutCart())
	require.NoError(t, err)
	second := provider.gotOrder.ID

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "chrmc:Steve:"))
	assert.True(t, strings.HasPrefix(second, "chrmc:Steve:"))
}

func TestCreateLinkKMSFailure(t *testing.T) {
	boom := errors.New("kms unavailable")
	provider := &stubPayProvider{}
	svc := NewService(provider, &failingKMS{err: boom}, testConfig(), slog.Default())

	_, _, err := svc.CreateLink(context.Background(), "Steve", checkoutCart())
	require.ErrorIs(t, err, boom)
	assert.Zero(t, provider.calls, "order must not be posted without a signature")
}

func TestCreateLinkProviderFailureIsNotRetried(t *testing.T) {
	boom := errors.New("pay 502")
	provider := &stubPayProvider{err: boom}
	svc := NewService(provider, &xorKMS{}, testConfig(), slog.Default())

	_, _, err := svc.CreateLink(context.Background(), "Steve", checkoutCart())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, provider.calls, "payment creation is attempted exactly once")
}

func TestVerifyCallback(t *testing.T) {
	kms := &xorKMS{}
	svc := NewService(&stubPayProvider{}, kms, testConfig(), slog.Default())

	orderID := "chrmc:Steve:some-uuid"
	mac := hmac.New(sha256.New, []byte("merchant-secret"))
	mac.Write([]byte(orderID))
	signature := base64.StdEncoding.EncodeToString(xorBytes(mac.Sum(nil)))

	require.NoError(t, svc.VerifyCallback(context.Background(), orderID, signature))

	err := svc.VerifyCallback(context.Background(), "chrmc:Alex:other-uuid", signature)
	require.ErrorIs(t, err, ErrInvalidSignature)

	err = svc.VerifyCallback(context.Background(), orderID, "%%%not-base64%%%")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"vip rank", "Vip rank"},
		{"&#86;IP", "VIP"},
		{"  spaced   out  ", "Spaced out"},
		{"эпический ранг", "Эпический ранг"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeName(tt.in), "%q", tt.in)
	}
}

func TestMinorUnits(t *testing.T) {
	assert.EqualValues(t, 499, minorUnits(4.99))
	assert.EqualValues(t, 100, minorUnits(1))
	assert.EqualValues(t, 1, minorUnits(0.005))
	assert.EqualValues(t, 0, minorUnits(0))
}
