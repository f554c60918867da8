package webapi

import (
	"crypto/subtle"
	"strings"

	"github.com/chrmc/storefront/pkg/config"
	"github.com/gofiber/fiber/v2"
)

// RconRequest represents the request body for a console command.
type RconRequest struct {
	Command string `json:"command" validate:"required"`
}

// RconRoutes sets up the admin console route
func RconRoutes(app *fiber.App, console ConsoleSender, cfg *config.Rcon) {
	app.Post("/api/rcon", SendCommand(console, cfg))
}

// SendCommand forwards a command to the game server console. Requires
// the admin bearer token; unavailable when no console is configured.
func SendCommand(console ConsoleSender, cfg *config.Rcon) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if console == nil || cfg.AdminToken == "" {
			return ErrorResponseJSON(c, fiber.StatusServiceUnavailable, "Console unavailable", "RCON is not configured")
		}

		token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminToken)) != 1 {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid admin token")
		}

		input, err := BindAndValidate[RconRequest](c)
		if err != nil {
			return nil // Error already written by helper
		}

		output, err := console.Send(c.Context(), input.Command)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadGateway, "Console command failed", err.Error())
		}

		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Command executed successfully",
			Data: fiber.Map{
				"output": output,
			},
		})
	}
}
