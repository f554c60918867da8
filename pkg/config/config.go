// Package config loads application configuration from the environment.
package config

import (
	"time"
)

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type Locale struct {
	Default string `envconfig:"DEFAULT" default:"en"`
}

type Tebex struct {
	ApiUrl      string        `envconfig:"API_URL" default:"https://plugin.tebex.io"`
	Secret      string        `envconfig:"SECRET" required:"true"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

type CMS struct {
	Url   string `envconfig:"URL" default:"https://graphql.datocms.com/"`
	Token string `envconfig:"TOKEN" required:"true"`
}

type KMS struct {
	Url         string        `envconfig:"URL" default:"https://kms.yandex/kms/v1"`
	KeyID       string        `envconfig:"KEY_ID" required:"true"`
	Token       string        `envconfig:"TOKEN" required:"true"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

type Pay struct {
	ApiUrl       string        `envconfig:"API_URL" default:"https://api.xxhax.com"`
	BillUrl      string        `envconfig:"BILL_URL" default:"https://pay.xxhax.com"`
	MerchantID   string        `envconfig:"MERCHANT_ID" required:"true"`
	Secret       string        `envconfig:"MERCHANT_TOKEN" required:"true"`
	Comment      string        `envconfig:"COMMENT" default:"Оплата на сервер Minecraft: Chrome MC"`
	WebhookUrl   string        `envconfig:"WEBHOOK_URL" default:"https://chrmc.fun/api/pay/callback"`
	LifetimeDays int           `envconfig:"LIFETIME_DAYS" default:"3"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
}

type Cache struct {
	Backend         string        `envconfig:"BACKEND" default:"memory"`
	RedisURL        string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	Prefix          string        `envconfig:"PREFIX" default:"memo:"`
	InformationTTL  time.Duration `envconfig:"INFORMATION_TTL" default:"120s"`
	ListingTTL      time.Duration `envconfig:"LISTING_TTL" default:"30s"`
	PackagesTTL     time.Duration `envconfig:"PACKAGES_TTL" default:"30s"`
	TranslationsTTL time.Duration `envconfig:"TRANSLATIONS_TTL" default:"300s"`
}

type Player struct {
	MojangUrl   string        `envconfig:"MOJANG_URL" default:"https://api.mojang.com"`
	XblUrl      string        `envconfig:"XBL_URL" default:"https://xbl.io"`
	XblKey      string        `envconfig:"XBL_KEY"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

type Rcon struct {
	Url        string        `envconfig:"URL"`
	AdminToken string        `envconfig:"ADMIN_TOKEN"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"5s"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"60"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Locale    *Locale    `envconfig:"LOCALE"`
	Tebex     *Tebex     `envconfig:"TEBEX"`
	CMS       *CMS       `envconfig:"DATOCMS"`
	KMS       *KMS       `envconfig:"KMS"`
	Pay       *Pay       `envconfig:"XHT_PAY"`
	Cache     *Cache     `envconfig:"CACHE"`
	Player    *Player    `envconfig:"PLAYER"`
	Rcon      *Rcon      `envconfig:"RCON"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
}
