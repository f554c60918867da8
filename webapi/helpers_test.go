package webapi_test

import (
	"context"
	"log/slog"
	"time"

	"github.com/chrmc/storefront/pkg/cart"
	"github.com/chrmc/storefront/pkg/config"
	"github.com/chrmc/storefront/pkg/currency"
	"github.com/chrmc/storefront/pkg/player"
	"github.com/chrmc/storefront/pkg/store"
	"github.com/chrmc/storefront/webapi"
	"github.com/gofiber/fiber/v2"
)

func testConfig() *config.App {
	return &config.App{
		Locale: &config.Locale{Default: "en"},
		Rcon:   &config.Rcon{AdminToken: "hunter2"},
		RateLimit: &config.RateLimit{
			MaxRequests: 1000,
			Window:      time.Minute,
		},
	}
}

func testApp(deps webapi.Deps) *fiber.App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return webapi.NewApp(testConfig(), deps)
}

type stubCatalog struct {
	categories []store.Category
	err        error

	locale  string
	country string
	code    currency.Code
}

func (s *stubCatalog) FetchCatalog(
	_ context.Context,
	locale, _, country string,
	code currency.Code,
) ([]store.Category, error) {
	s.locale = locale
	s.country = country
	s.code = code
	if s.err != nil {
		return nil, s.err
	}
	return s.categories, nil
}

type stubPayments struct {
	payURL string
	qrURL  string
	err    error

	customer  string
	cart      *cart.Cart
	orderID   string
	signature string
	verifyErr error
}

func (s *stubPayments) CreateLink(_ context.Context, customer string, c *cart.Cart) (string, string, error) {
	s.customer = customer
	s.cart = c
	if s.err != nil {
		return "", "", s.err
	}
	return s.payURL, s.qrURL, nil
}

func (s *stubPayments) VerifyCallback(_ context.Context, orderID, signatureB64 string) error {
	s.orderID = orderID
	s.signature = signatureB64
	return s.verifyErr
}

type stubPlayers struct {
	player player.Player
	err    error

	platform player.Platform
	username string
}

func (s *stubPlayers) Check(_ context.Context, platform player.Platform, username string) (player.Player, error) {
	s.platform = platform
	s.username = username
	if s.err != nil {
		return player.Player{}, s.err
	}
	return s.player, nil
}

type stubConsole struct {
	output  string
	err     error
	command string
}

func (s *stubConsole) Send(_ context.Context, command string) (string, error) {
	s.command = command
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}
