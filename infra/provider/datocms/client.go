// Package datocms queries the headless CMS for localized category and
// product copy over GraphQL.
package datocms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chrmc/storefront/pkg/store"
	"github.com/machinebox/graphql"
)

const storeQuery = `
query Store($locale: SiteLocale!, $defaultLocale: SiteLocale!) {
  allCategories(
    locale: $locale
    fallbackLocales: [$defaultLocale]
  ) {
    tebexId
    name
  }

  allProducts(
    locale: $locale
    fallbackLocales: [$defaultLocale]
  ) {
    description {
      value
    }
    name
    tebexId
  }
}`

// Client queries the CMS GraphQL endpoint with bearer auth.
type Client struct {
	gql    *graphql.Client
	token  string
	logger *slog.Logger
}

// New creates a CMS client for the given endpoint and API token.
func New(endpoint, token string, logger *slog.Logger) *Client {
	return &Client{
		gql:    graphql.NewClient(endpoint),
		token:  token,
		logger: logger,
	}
}

// StoreTranslations fetches category and product translations for the
// locale, with the default locale as server-side fallback.
func (c *Client) StoreTranslations(ctx context.Context, locale, defaultLocale string) (*store.Translations, error) {
	req := graphql.NewRequest(storeQuery)
	req.Var("locale", locale)
	req.Var("defaultLocale", defaultLocale)
	req.Header.Set("Authorization", "Bearer "+c.token)

	var translations store.Translations
	if err := c.gql.Run(ctx, req, &translations); err != nil {
		return nil, fmt.Errorf("cms store query: %w", err)
	}

	c.logger.Debug("cms translations fetched",
		"locale", locale,
		"categories", len(translations.Categories),
		"products", len(translations.Products),
	)
	return &translations, nil
}

// Ensure Client implements store.TranslationsClient.
var _ store.TranslationsClient = (*Client)(nil)
