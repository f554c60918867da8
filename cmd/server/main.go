package main

import (
	"fmt"
	"log/slog"

	log "github.com/charmbracelet/log"
	"github.com/chrmc/storefront/infra/cache"
	"github.com/chrmc/storefront/infra/provider/datocms"
	"github.com/chrmc/storefront/infra/provider/kms"
	"github.com/chrmc/storefront/infra/provider/pay"
	"github.com/chrmc/storefront/infra/provider/tebexapi"
	"github.com/chrmc/storefront/infra/rcon"
	"github.com/chrmc/storefront/pkg/config"
	"github.com/chrmc/storefront/pkg/memo"
	"github.com/chrmc/storefront/pkg/payment"
	"github.com/chrmc/storefront/pkg/player"
	"github.com/chrmc/storefront/pkg/store"
	"github.com/chrmc/storefront/webapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	logger := slog.Default()
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	var memoStore memo.Store
	switch cfg.Cache.Backend {
	case "redis":
		memoStore, err = cache.NewRedis(cfg.Cache.RedisURL, cfg.Cache.Prefix, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	default:
		memoStore = cache.NewMemory()
	}
	fetcher := memo.New(memoStore, logger)

	catalog := store.NewService(
		tebexapi.New(cfg.Tebex.ApiUrl, cfg.Tebex.Secret, cfg.Tebex.HTTPTimeout, logger),
		datocms.New(cfg.CMS.Url, cfg.CMS.Token, logger),
		fetcher,
		store.Windows{
			Information:  cfg.Cache.InformationTTL,
			Listing:      cfg.Cache.ListingTTL,
			Packages:     cfg.Cache.PackagesTTL,
			Translations: cfg.Cache.TranslationsTTL,
		},
		logger,
	)

	payments := payment.NewService(
		pay.New(cfg.Pay.ApiUrl, cfg.Pay.BillUrl, cfg.Pay.MerchantID, cfg.Pay.HTTPTimeout, logger),
		kms.New(cfg.KMS.Url, cfg.KMS.KeyID, cfg.KMS.Token, cfg.KMS.HTTPTimeout, logger),
		payment.Config{
			MerchantID:   cfg.Pay.MerchantID,
			Secret:       cfg.Pay.Secret,
			Comment:      cfg.Pay.Comment,
			WebhookURL:   cfg.Pay.WebhookUrl,
			LifetimeDays: cfg.Pay.LifetimeDays,
		},
		logger,
	)

	players := player.NewService(cfg.Player.MojangUrl, cfg.Player.XblUrl, cfg.Player.XblKey, cfg.Player.HTTPTimeout, logger)

	deps := webapi.Deps{
		Catalog: catalog,
		Payment: payments,
		Player:  players,
		Logger:  logger,
	}
	if cfg.Rcon.Url != "" {
		console, err := rcon.NewConsole(cfg.Rcon.Url, cfg.Rcon.Timeout, logger)
		if err != nil {
			return fmt.Errorf("failed to configure rcon: %w", err)
		}
		defer console.Close() //nolint: errcheck
		deps.Console = console
	}

	app := webapi.NewApp(cfg, deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	return app.Listen(addr)
}
