package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment, optionally loading
// .env files first. Missing files are fine; the system environment
// always wins.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()

	if len(envFilePath) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	for _, path := range envFilePath {
		if err := godotenv.Load(path); err != nil {
			logger.Debug("Environment file not loaded", "path", path, "error", err)
			continue
		}
		logger.Info("Environment loaded from file", "path", path)
		break
	}

	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	logger := slog.Default()
	logger.Info("App config loaded",
		"env", cfg.Env,
		"tebex_secret", maskValue(cfg.Tebex.Secret),
		"datocms_token", maskValue(cfg.CMS.Token),
		"kms_key_id", cfg.KMS.KeyID,
		"pay_merchant_id", cfg.Pay.MerchantID,
		"pay_merchant_token", maskValue(cfg.Pay.Secret),
		"cache_backend", cfg.Cache.Backend,
		"listing_ttl", cfg.Cache.ListingTTL,
		"translations_ttl", cfg.Cache.TranslationsTTL,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
