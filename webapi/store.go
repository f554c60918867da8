package webapi

import (
	"github.com/chrmc/storefront/pkg/config"
	"github.com/chrmc/storefront/pkg/currency"
	"github.com/gofiber/fiber/v2"
)

// StoreRoutes sets up catalog routes
func StoreRoutes(app *fiber.App, catalog CatalogFetcher, locale *config.Locale) {
	app.Get("/api/store", GetStore(catalog, locale))
}

// GetStore returns the category tree localized and priced for the caller.
// The locale defaults to the configured one, the country to US, and the
// currency is resolved from the country unless given explicitly.
func GetStore(catalog CatalogFetcher, locale *config.Locale) fiber.Handler {
	return func(c *fiber.Ctx) error {
		loc := c.Query("locale", locale.Default)
		country := c.Query("country", "US")
		code := currency.Code(c.Query("currency"))

		categories, err := catalog.FetchCatalog(c.Context(), loc, locale.Default, country, code)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to fetch store", err.Error())
		}

		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Store fetched successfully",
			Data:    categories,
		})
	}
}
