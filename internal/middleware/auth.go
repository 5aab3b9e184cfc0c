package middleware

import (
	"sharesreg-backend/internal/pkg/constants"
	"sharesreg-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	userLocal = "user"
	authLocal = "auth"
)

// RequireAuth rejects requests without a signed-in user. Sessions whose role is no longer
// recognised are treated as signed out.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := sessionUserFrom(GetUser(c))
		if !ok || !constants.IsValidRole(user.Role) {
			return response.Unauthorized(c, "Unauthorized")
		}
		c.Locals(authLocal, user)
		return c.Next()
	}
}

// GetUser returns the raw session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentUser returns the session user decoded from the session data.
func CurrentUser(c *fiber.Ctx) (SessionUser, bool) {
	if u, ok := c.Locals(authLocal).(SessionUser); ok {
		return u, true
	}
	return sessionUserFrom(GetUser(c))
}

func sessionUserFrom(v interface{}) (SessionUser, bool) {
	switch u := v.(type) {
	case SessionUser:
		return u, u.UserID != ""
	case map[string]interface{}:
		s := SessionUser{
			UserID:   asString(u["user_id"]),
			Fullname: asString(u["fullname"]),
			Email:    asString(u["email"]),
			Role:     asString(u["role"]),
		}
		return s, s.UserID != ""
	}
	return SessionUser{}, false
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
