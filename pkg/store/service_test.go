package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chrmc/storefront/infra/cache"
	"github.com/chrmc/storefront/pkg/currency"
	"github.com/chrmc/storefront/pkg/memo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	info     Information
	listing  []ListedCategory
	packages []Package
	err      error
	calls    atomic.Int32
}

func (s *stubProvider) Information(context.Context) (*Information, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	info := s.info
	return &info, nil
}

func (s *stubProvider) Listing(context.Context) ([]ListedCategory, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.listing, nil
}

func (s *stubProvider) Packages(context.Context) ([]Package, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.packages, nil
}

type stubCMS struct {
	translations Translations
	err          error
}

func (s *stubCMS) StoreTranslations(_ context.Context, _, _ string) (*Translations, error) {
	if s.err != nil {
		return nil, s.err
	}
	t := s.translations
	return &t, nil
}

func information(iso string) Information {
	var info Information
	info.Account.Currency.ISO4217 = iso
	return info
}

func fixtureProvider() *stubProvider {
	return &stubProvider{
		info: information("USD"),
		listing: []ListedCategory{
			{
				ID:       10,
				Name:     "Ranks",
				Packages: []PackageRef{{ID: 1}},
				Subcategories: []ListedCategory{
					{ID: 11, Name: "Seasonal", Packages: []PackageRef{{ID: 2}}},
				},
			},
		},
		packages: []Package{
			{ID: 1, Name: "vip", Price: 4.99, Image: "https://cdn.example/vip.png"},
			{ID: 2, Name: "winter pass", Price: 10, ExpiryLength: 30, ExpiryPeriod: "day"},
		},
	}
}

func newCatalogService(provider ProviderClient, cms TranslationsClient) *Service {
	fetcher := memo.New(cache.NewMemory(), slog.Default())
	return NewService(provider, cms, fetcher, DefaultWindows(), slog.Default())
}

func TestFetchCatalog(t *testing.T) {
	provider := fixtureProvider()
	cms := &stubCMS{translations: Translations{
		Categories: []CategoryTranslation{{TebexID: 10, Name: "Ранги"}},
		Products: []ProductTranslation{
			{TebexID: 1, Name: "ВИП", Description: json.RawMessage(`{"value":"text"}`)},
		},
	}}
	svc := newCatalogService(provider, cms)

	catalog, err := svc.FetchCatalog(context.Background(), "ru", "en", "ru", "")
	require.NoError(t, err)
	require.Len(t, catalog, 1)

	top := catalog[0]
	assert.Equal(t, "Ранги", top.Name, "CMS display name substituted by provider id")
	require.Len(t, top.Products, 1)
	require.Len(t, top.Subcategories, 1)
	assert.Equal(t, "Seasonal", top.Subcategories[0].Name, "untranslated category keeps provider name")

	vip := top.Products[0]
	assert.Equal(t, "ВИП", vip.Name)
	assert.JSONEq(t, `{"value":"text"}`, string(vip.Description))
	assert.Equal(t, "https://cdn.example/vip.png", vip.Image)
	assert.Equal(t, currency.BaseCurrency, vip.Price.Base.Currency)
	assert.InDelta(t, 4.99, vip.Price.Base.Value, 1e-9)
	assert.Equal(t, currency.RUB, vip.Price.Local.Currency, "RU resolves to RUB")
	assert.InDelta(t, 4.99*70, vip.Price.Local.Value, 1e-9)
	require.NotNil(t, vip.Duration)
	assert.True(t, vip.Duration.Forever)

	pass := top.Subcategories[0].Products[0]
	require.NotNil(t, pass.Duration)
	assert.False(t, pass.Duration.Forever)
	assert.Equal(t, 30, pass.Duration.Amount)
	assert.Equal(t, "day", pass.Duration.Unit)
	assert.Equal(t, "через 30 дней", pass.Duration.Localized)
}

func TestFetchCatalogExplicitCurrency(t *testing.T) {
	svc := newCatalogService(fixtureProvider(), &stubCMS{})

	catalog, err := svc.FetchCatalog(context.Background(), "en", "en", "US", currency.EUR)
	require.NoError(t, err)

	vip := catalog[0].Products[0]
	assert.Equal(t, currency.EUR, vip.Price.Local.Currency)
	assert.InDelta(t, 4.99*0.92, vip.Price.Local.Value, 1e-9)
}

func TestFetchCatalogUnmappedCountryFallsBackToLocaleCurrency(t *testing.T) {
	svc := newCatalogService(fixtureProvider(), &stubCMS{})

	catalog, err := svc.FetchCatalog(context.Background(), "ru", "en", "zz", "")
	require.NoError(t, err)
	assert.Equal(t, currency.RUB, catalog[0].Products[0].Price.Local.Currency)
}

func TestFetchCatalogDurationJSON(t *testing.T) {
	svc := newCatalogService(fixtureProvider(), &stubCMS{})

	catalog, err := svc.FetchCatalog(context.Background(), "en", "en", "US", "")
	require.NoError(t, err)

	data, err := json.Marshal(catalog[0].Products[0].Duration)
	require.NoError(t, err)
	assert.Equal(t, `"forever"`, string(data))

	data, err = json.Marshal(catalog[0].Subcategories[0].Products[0].Duration)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":30,"unit":"day","localized":"in 30 days"}`, string(data))
}

func TestFetchCatalogMemoizesUpstreamCalls(t *testing.T) {
	provider := fixtureProvider()
	svc := newCatalogService(provider, &stubCMS{})

	_, err := svc.FetchCatalog(context.Background(), "en", "en", "US", "")
	require.NoError(t, err)
	calls := provider.calls.Load()
	assert.EqualValues(t, 3, calls, "information, listing and packages fetched once each")

	_, err = svc.FetchCatalog(context.Background(), "en", "en", "US", "")
	require.NoError(t, err)
	assert.Equal(t, calls, provider.calls.Load(), "second catalog within the window hits the cache")
}

func TestFetchCatalogUnknownPackageRef(t *testing.T) {
	provider := fixtureProvider()
	provider.listing[0].Packages = append(provider.listing[0].Packages, PackageRef{ID: 999})
	svc := newCatalogService(provider, &stubCMS{})

	_, err := svc.FetchCatalog(context.Background(), "en", "en", "US", "")
	require.ErrorIs(t, err, ErrUpstreamFetch)
}

func TestFetchCatalogRejectsMalformedInformation(t *testing.T) {
	provider := fixtureProvider()
	provider.info = information("usd") // lowercase fails boundary validation
	svc := newCatalogService(provider, &stubCMS{})

	_, err := svc.FetchCatalog(context.Background(), "en", "en", "US", "")
	require.ErrorIs(t, err, ErrUpstreamFetch)
}

func TestFetchCatalogUnknownNativeCurrency(t *testing.T) {
	provider := fixtureProvider()
	provider.info = information("XAU")
	svc := newCatalogService(provider, &stubCMS{})

	_, err := svc.FetchCatalog(context.Background(), "en", "en", "US", "")
	require.ErrorIs(t, err, currency.ErrUnknownCurrency)
}

func TestFetchCatalogUpstreamFailure(t *testing.T) {
	provider := fixtureProvider()
	provider.err = errors.New("tebex 500")
	svc := newCatalogService(provider, &stubCMS{})

	_, err := svc.FetchCatalog(context.Background(), "en", "en", "US", "")
	require.ErrorIs(t, err, ErrUpstreamFetch)
}

func TestLocalizeDuration(t *testing.T) {
	tests := []struct {
		locale string
		amount int
		unit   string
		want   string
	}{
		{"en", 1, "day", "in 1 day"},
		{"en", 30, "day", "in 30 days"},
		{"en", 2, "month", "in 2 months"},
		{"ru", 1, "day", "через 1 день"},
		{"ru", 3, "day", "через 3 дня"},
		{"ru", 30, "day", "через 30 дней"},
		{"ru", 11, "day", "через 11 дней"},
		{"ru", 21, "day", "через 21 день"},
		{"ru", 1, "month", "через 1 месяц"},
		{"de", 5, "week", "in 5 weeks"},
		{"en", 2, "fortnight", "in 2 fortnights"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, localizeDuration(tt.locale, tt.amount, tt.unit), "%s %d %s", tt.locale, tt.amount, tt.unit)
	}
}

// Guard against the clock-dependent freshness logic regressing: an
// expired window must re-invoke the provider.
func TestFetchCatalogRefetchesAfterWindow(t *testing.T) {
	provider := fixtureProvider()
	now := time.Unix(1_700_000_000, 0)
	fetcher := memo.New(cache.NewMemory(), slog.Default()).WithClock(func() time.Time { return now })
	svc := NewService(provider, &stubCMS{}, fetcher, DefaultWindows(), slog.Default())

	_, err := svc.FetchCatalog(context.Background(), "en", "en", "US", "")
	require.NoError(t, err)
	first := provider.calls.Load()

	now = now.Add(10 * time.Minute)
	_, err = svc.FetchCatalog(context.Background(), "en", "en", "US", "")
	require.NoError(t, err)
	assert.Equal(t, first*2, provider.calls.Load(), "every window expired, all provider endpoints refetched")
}
