package payment

import "context"

// Order is the order-creation payload sent to the payment provider.
type Order struct {
	ID           string            `json:"id"`
	LifetimeDays int               `json:"lifetimeDays"`
	Receipt      []ReceiptItem     `json:"receipt"`
	Comment      string            `json:"comment"`
	Meta         map[string]string `json:"meta"`
	WebhookURL   string            `json:"webhookUrl"`
}

// ReceiptItem is one line of the order receipt. Price is in minor
// units (cents).
type ReceiptItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	SKU      string `json:"sku"`
}

// ProviderClient creates orders with the payment provider and derives
// the hosted-page URLs from a payment id.
type ProviderClient interface {
	// CreateOrder posts the order with the KMS-wrapped signature and
	// returns the provider's opaque payment id.
	CreateOrder(ctx context.Context, order Order, signature []byte) (string, error)
	PayURL(paymentID string) string
	QRURL(paymentID string) string
}

// Encrypter wraps and unwraps signature bytes with a remote key.
type Encrypter interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}
