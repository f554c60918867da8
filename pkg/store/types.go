package store

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/chrmc/storefront/pkg/currency"
)

// Upstream DTOs. Shapes coming off the wire are validated before any
// catalog assembly happens; malformed responses are rejected with
// ErrUpstreamFetch instead of leaking partial data into pricing.

// Information is the storefront provider's account metadata. The
// account currency is the native currency every package price is
// quoted in.
type Information struct {
	Account Account `json:"account" validate:"required"`
}

// Account holds the provider-side account data the catalog needs.
type Account struct {
	Currency CurrencyInfo `json:"currency" validate:"required"`
}

// CurrencyInfo is the provider's currency descriptor.
type CurrencyInfo struct {
	ISO4217 string `json:"iso_4217" validate:"required,len=3,uppercase"`
}

// ListedCategory is one node of the provider's two-level category
// tree. Subcategories do not nest further in practice.
type ListedCategory struct {
	ID            int64            `json:"id" validate:"required"`
	Name          string           `json:"name" validate:"required"`
	Packages      []PackageRef     `json:"packages" validate:"dive"`
	Subcategories []ListedCategory `json:"subcategories" validate:"dive"`
}

// PackageRef points at a package in the flat package list.
type PackageRef struct {
	ID int64 `json:"id" validate:"required"`
}

// Package is one purchasable item from the provider's flat package
// list, priced in the account's native currency.
type Package struct {
	ID           int64       `json:"id" validate:"required"`
	Name         string      `json:"name" validate:"required"`
	Image        ImageURL    `json:"image"`
	Price        float64     `json:"price" validate:"gte=0"`
	ExpiryLength int         `json:"expiry_length" validate:"gte=0"`
	ExpiryPeriod string      `json:"expiry_period"`
}

// ImageURL tolerates the provider sending `false` instead of a URL for
// packages without an image.
type ImageURL string

// UnmarshalJSON implements json.Unmarshaler.
func (u *ImageURL) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("false")) || bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*u = ImageURL(s)
	return nil
}

// Translations is the CMS response for one locale, with fallback to
// the default locale already applied server-side.
type Translations struct {
	Categories []CategoryTranslation `json:"allCategories" validate:"dive"`
	Products   []ProductTranslation  `json:"allProducts" validate:"dive"`
}

// CategoryTranslation renames a provider category by its provider id.
type CategoryTranslation struct {
	TebexID int64  `json:"tebexId" validate:"required"`
	Name    string `json:"name" validate:"required"`
}

// ProductTranslation carries the localized name and rich-text
// description for a provider package.
type ProductTranslation struct {
	TebexID     int64           `json:"tebexId" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description json.RawMessage `json:"description"`
}

// ProviderClient fetches storefront data from the billing provider.
type ProviderClient interface {
	Information(ctx context.Context) (*Information, error)
	Listing(ctx context.Context) ([]ListedCategory, error)
	Packages(ctx context.Context) ([]Package, error)
}

// TranslationsClient fetches localized names from the CMS.
type TranslationsClient interface {
	StoreTranslations(ctx context.Context, locale, defaultLocale string) (*Translations, error)
}

// Catalog output model.

// Price is one face of a product price: the raw value, its currency
// and the locale-formatted display string.
type Price struct {
	Currency  currency.Code `json:"currency"`
	Value     float64       `json:"value"`
	Formatted string        `json:"formatted"`
}

// ProductPrice carries the authoritative base-currency price and the
// derived local one. Local is a cache of a conversion, never a source
// of truth.
type ProductPrice struct {
	Base  Price `json:"base"`
	Local Price `json:"local"`
}

// Duration describes how long a purchase lasts. A nil Duration on a
// Product means the provider did not define one.
type Duration struct {
	Forever   bool
	Amount    int
	Unit      string
	Localized string
}

// MarshalJSON renders "forever" for permanent packages and an object
// for expiring ones.
func (d Duration) MarshalJSON() ([]byte, error) {
	if d.Forever {
		return json.Marshal("forever")
	}
	return json.Marshal(struct {
		Amount    int    `json:"amount"`
		Unit      string `json:"unit"`
		Localized string `json:"localized"`
	}{d.Amount, d.Unit, d.Localized})
}

// Product is one localized, price-converted catalog item.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Image       string          `json:"image,omitempty"`
	Price       ProductPrice    `json:"price"`
	Description json.RawMessage `json:"description,omitempty"`
	Duration    *Duration       `json:"duration,omitempty"`
}

// Category is one node of the localized catalog tree.
type Category struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Products      []Product  `json:"products"`
	Subcategories []Category `json:"subcategories,omitempty"`
}
