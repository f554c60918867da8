package webapi

import (
	"github.com/chrmc/storefront/pkg/player"
	"github.com/gofiber/fiber/v2"
)

// PlayerRoutes sets up player lookup routes
func PlayerRoutes(app *fiber.App, players PlayerChecker) {
	app.Get("/api/player", GetPlayer(players))
}

// GetPlayer looks up an account on the requested edition. The response
// body is the lookup result itself so existing site code can consume it
// unchanged.
func GetPlayer(players PlayerChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Query("username")
		if username == "" {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Username is required", "Missing username")
		}
		platform := player.Platform(c.Query("type", string(player.PlatformJava)))

		p, err := players.Check(c.Context(), platform, username)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to look up player", err.Error())
		}

		return c.JSON(p)
	}
}
