// Package store builds the localized, currency-converted product
// catalog from storefront-provider listings and CMS translations.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chrmc/storefront/pkg/currency"
	"github.com/chrmc/storefront/pkg/memo"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// localeToCurrency is the currency a locale prefers when the visitor's
// country has no mapping of its own.
var localeToCurrency = map[string]currency.Code{
	"en": currency.USD,
	"ru": currency.RUB,
}

// Windows are the freshness windows for the upstream fetches. Account
// information moves slowest, listings and packages fastest; CMS copy
// sits in between.
type Windows struct {
	Information  time.Duration
	Listing      time.Duration
	Packages     time.Duration
	Translations time.Duration
}

// DefaultWindows returns the production freshness windows.
func DefaultWindows() Windows {
	return Windows{
		Information:  120 * time.Second,
		Listing:      30 * time.Second,
		Packages:     30 * time.Second,
		Translations: 300 * time.Second,
	}
}

// Service assembles catalogs. All upstream data flows through the memo
// fetcher; the service itself is stateless.
type Service struct {
	provider ProviderClient
	cms      TranslationsClient
	fetcher  *memo.Fetcher
	windows  Windows
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService wires a catalog service.
func NewService(
	provider ProviderClient,
	cms TranslationsClient,
	fetcher *memo.Fetcher,
	windows Windows,
	logger *slog.Logger,
) *Service {
	return &Service{
		provider: provider,
		cms:      cms,
		fetcher:  fetcher,
		windows:  windows,
		validate: validator.New(),
		logger:   logger,
	}
}

// FetchCatalog returns the provider's category tree localized for the
// given locale and priced for the given country. An explicit
// currencyCode overrides country-based currency resolution; pass ""
// to resolve from the country, falling back to the locale's preferred
// currency.
func (s *Service) FetchCatalog(
	ctx context.Context,
	locale, defaultLocale, country string,
	currencyCode currency.Code,
) ([]Category, error) {
	country = strings.ToUpper(country)

	var (
		info         *Information
		listing      []ListedCategory
		packages     []Package
		translations *Translations
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		info, err = memo.Get(gctx, s.fetcher, "tebex:information", s.windows.Information, s.fetchInformation)
		return err
	})
	g.Go(func() (err error) {
		listing, err = memo.Get(gctx, s.fetcher, "tebex:listing", s.windows.Listing, s.fetchListing)
		return err
	})
	g.Go(func() (err error) {
		packages, err = memo.Get(gctx, s.fetcher, "tebex:packages", s.windows.Packages, s.fetchPackages)
		return err
	})
	g.Go(func() (err error) {
		key := "datocms:store:" + locale
		translations, err = memo.Get(gctx, s.fetcher, key, s.windows.Translations,
			func(ctx context.Context) (*Translations, error) {
				return s.fetchTranslations(ctx, locale, defaultLocale)
			})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	native := currency.Code(info.Account.Currency.ISO4217)
	local := currencyCode
	if local == "" {
		backup, ok := localeToCurrency[locale]
		if !ok {
			backup = localeToCurrency[defaultLocale]
		}
		if backup == "" {
			backup = currency.BaseCurrency
		}
		local = currency.CountryCurrency(country, backup).Currency
	}

	packIndex := make(map[int64]Package, len(packages))
	for _, p := range packages {
		packIndex[p.ID] = p
	}
	nameIndex := make(map[int64]CategoryTranslation, len(translations.Categories))
	for _, t := range translations.Categories {
		nameIndex[t.TebexID] = t
	}
	productIndex := make(map[int64]ProductTranslation, len(translations.Products))
	for _, t := range translations.Products {
		productIndex[t.TebexID] = t
	}

	build := func(cat ListedCategory) (Category, error) {
		out := Category{ID: cat.ID, Name: cat.Name, Products: make([]Product, 0, len(cat.Packages))}
		if t, ok := nameIndex[cat.ID]; ok {
			out.Name = t.Name
		}
		for _, ref := range cat.Packages {
			pack, ok := packIndex[ref.ID]
			if !ok {
				return Category{}, fmt.Errorf(
					"%w: listing references unknown package %d in category %d",
					ErrUpstreamFetch, ref.ID, cat.ID,
				)
			}
			product, err := s.buildProduct(pack, productIndex, locale, defaultLocale, native, local)
			if err != nil {
				return Category{}, err
			}
			out.Products = append(out.Products, product)
		}
		return out, nil
	}

	catalog := make([]Category, 0, len(listing))
	for _, cat := range listing {
		top, err := build(cat)
		if err != nil {
			return nil, err
		}
		for _, sub := range cat.Subcategories {
			built, err := build(sub)
			if err != nil {
				return nil, err
			}
			top.Subcategories = append(top.Subcategories, built)
		}
		catalog = append(catalog, top)
	}

	s.logger.Debug("catalog assembled",
		"locale", locale, "country", country,
		"currency", local, "categories", len(catalog),
	)
	return catalog, nil
}

func (s *Service) buildProduct(
	pack Package,
	translations map[int64]ProductTranslation,
	locale, defaultLocale string,
	native, local currency.Code,
) (Product, error) {
	basePrice, err := currency.Convert(pack.Price, native, currency.BaseCurrency)
	if err != nil {
		return Product{}, err
	}
	localPrice, err := currency.Convert(pack.Price, native, local)
	if err != nil {
		return Product{}, err
	}

	product := Product{
		ID:    pack.ID,
		Name:  pack.Name,
		Image: string(pack.Image),
		Price: ProductPrice{
			Base: Price{
				Currency:  currency.BaseCurrency,
				Value:     basePrice,
				Formatted: currency.Format(basePrice, currency.BaseCurrency, locale, defaultLocale),
			},
			Local: Price{
				Currency:  local,
				Value:     localPrice,
				Formatted: currency.Format(localPrice, local, locale, defaultLocale),
			},
		},
	}

	if t, ok := translations[pack.ID]; ok {
		product.Name = t.Name
		if len(t.Description) > 0 {
			product.Description = t.Description
		}
	}

	if pack.ExpiryLength >= 1 {
		product.Duration = &Duration{
			Amount:    pack.ExpiryLength,
			Unit:      pack.ExpiryPeriod,
			Localized: localizeDuration(locale, pack.ExpiryLength, pack.ExpiryPeriod),
		}
	} else {
		product.Duration = &Duration{Forever: true}
	}

	return product, nil
}

func (s *Service) fetchInformation(ctx context.Context) (*Information, error) {
	info, err := s.provider.Information(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: information: %v", ErrUpstreamFetch, err)
	}
	if err := s.validate.Struct(info); err != nil {
		return nil, fmt.Errorf("%w: information failed validation: %v", ErrUpstreamFetch, err)
	}
	return info, nil
}

func (s *Service) fetchListing(ctx context.Context) ([]ListedCategory, error) {
	listing, err := s.provider.Listing(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing: %v", ErrUpstreamFetch, err)
	}
	wrapper := struct {
		Categories []ListedCategory `validate:"dive"`
	}{listing}
	if err := s.validate.Struct(wrapper); err != nil {
		return nil, fmt.Errorf("%w: listing failed validation: %v", ErrUpstreamFetch, err)
	}
	return listing, nil
}

func (s *Service) fetchPackages(ctx context.Context) ([]Package, error) {
	packages, err := s.provider.Packages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: packages: %v", ErrUpstreamFetch, err)
	}
	wrapper := struct {
		Packages []Package `validate:"dive"`
	}{packages}
	if err := s.validate.Struct(wrapper); err != nil {
		return nil, fmt.Errorf("%w: packages failed validation: %v", ErrUpstreamFetch, err)
	}
	return packages, nil
}

func (s *Service) fetchTranslations(ctx context.Context, locale, defaultLocale string) (*Translations, error) {
	translations, err := s.cms.StoreTranslations(ctx, locale, defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("%w: translations: %v", ErrUpstreamFetch, err)
	}
	if err := s.validate.Struct(translations); err != nil {
		return nil, fmt.Errorf("%w: translations failed validation: %v", ErrUpstreamFetch, err)
	}
	return translations, nil
}
