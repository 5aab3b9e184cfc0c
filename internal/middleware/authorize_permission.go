package middleware

import (
	"sharesreg-backend/internal/pkg/constants"
	"sharesreg-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// AuthorizePermission allows the request through when the session role holds permission.
// An unknown permission is a wiring bug and answers 500.
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !constants.IsConfigured(permission) {
			log.Error().Str("permission", permission).Str("path", c.Path()).Msg("Permission not configured")
			return response.Error(c, "Permission configuration error", fiber.StatusInternalServerError, nil)
		}
		if !constants.AllowedRole(permission, user.Role) {
			log.Info().Str("trace_id", GetTraceID(c)).Str("user_id", user.UserID).Str("role", user.Role).
				Str("permission", permission).Msg("Permission denied")
			return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, fiber.Map{
				"permission": permission,
			})
		}
		return c.Next()
	}
}
