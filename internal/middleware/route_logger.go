package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RouteLogger writes one line per request. Register mutations are logged at info with the
// company and acting user; reads only at debug.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFromError(err)
		}
		level := zerolog.DebugLevel
		switch {
		case status >= fiber.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead:
			level = zerolog.InfoLevel
		}
		ev := log.WithLevel(level).
			Str("trace_id", GetTraceID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("ms", time.Since(start).Milliseconds())
		if companyID := c.Params("company_id"); companyID != "" {
			ev = ev.Str("company_id", companyID)
		}
		if user, ok := CurrentUser(c); ok {
			ev = ev.Str("user_id", user.UserID)
		}
		ev.Msg("Request")
		return err
	}
}
