// Package webapi exposes the storefront over HTTP using Fiber.
package webapi

import (
	"context"
	"log/slog"

	"github.com/chrmc/storefront/pkg/cart"
	"github.com/chrmc/storefront/pkg/config"
	"github.com/chrmc/storefront/pkg/currency"
	"github.com/chrmc/storefront/pkg/player"
	"github.com/chrmc/storefront/pkg/store"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// CatalogFetcher builds the localized, priced category tree.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context, locale, defaultLocale, country string, currencyCode currency.Code) ([]store.Category, error)
}

// PaymentLinker creates payment links and verifies webhook signatures.
type PaymentLinker interface {
	CreateLink(ctx context.Context, customer string, c *cart.Cart) (payURL, qrURL string, err error)
	VerifyCallback(ctx context.Context, orderID, signatureB64 string) error
}

// PlayerChecker looks up player accounts by platform.
type PlayerChecker interface {
	Check(ctx context.Context, platform player.Platform, username string) (player.Player, error)
}

// ConsoleSender runs a command on the game server console.
type ConsoleSender interface {
	Send(ctx context.Context, command string) (string, error)
}

// Deps carries everything the HTTP layer needs. Console may be nil
// when no RCON endpoint is configured.
type Deps struct {
	Catalog CatalogFetcher
	Payment PaymentLinker
	Player  PlayerChecker
	Console ConsoleSender
	Logger  *slog.Logger
}

func NewApp(cfg *config.App, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Default to 500 if status code cannot be determined
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("App is working! 🚀")
	})

	StoreRoutes(app, deps.Catalog, cfg.Locale)
	PayRoutes(app, deps.Payment)
	PlayerRoutes(app, deps.Player)
	RconRoutes(app, deps.Console, cfg.Rcon)

	return app
}
