package webapi

import (
	"encoding/json"
	"net/url"

	"github.com/chrmc/storefront/pkg/cart"
	"github.com/gofiber/fiber/v2"
)

// CreatePaymentRequest represents the request body for creating a payment link.
// Cart carries the serialized cart as stored client-side.
type CreatePaymentRequest struct {
	Nickname string          `json:"nickname" validate:"required,min=3,max=16"`
	Cart     json.RawMessage `json:"cart" validate:"required"`
}

// PayRoutes sets up payment routes
func PayRoutes(app *fiber.App, payments PaymentLinker) {
	payGroup := app.Group("/api/pay")

	payGroup.Post("/", CreatePayment(payments))
	payGroup.Post("/callback", PaymentCallback(payments))
}

// CreatePayment signs the order, registers it with the payment provider
// and returns the hosted bill and QR URLs.
func CreatePayment(payments PaymentLinker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[CreatePaymentRequest](c)
		if err != nil {
			return nil // Error already written by helper
		}

		basket, err := cart.FromJSON(input.Cart)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid cart", err.Error())
		}
		if basket.Size() == 0 {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid cart", "cart is empty")
		}

		payURL, qrURL, err := payments.CreateLink(c.Context(), input.Nickname, basket)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to create payment", err.Error())
		}

		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Payment link created successfully",
			Data: fiber.Map{
				"url": payURL,
				"qr":  qrURL,
			},
		})
	}
}

// PaymentCallbackRequest represents the provider webhook body.
type PaymentCallbackRequest struct {
	ID string `json:"id" validate:"required"`
}

// PaymentCallback authenticates a provider webhook. The X-Signature
// header carries the URL-encoded ciphertext issued at order creation.
func PaymentCallback(payments PaymentLinker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := BindAndValidate[PaymentCallbackRequest](c)
		if err != nil {
			return nil // Error already written by helper
		}

		signature := c.Get("X-Signature")
		if signature == "" {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Missing signature", "X-Signature header is required")
		}
		if unescaped, err := url.QueryUnescape(signature); err == nil {
			signature = unescaped
		}

		if err := payments.VerifyCallback(c.Context(), input.ID, signature); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Invalid signature", err.Error())
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
