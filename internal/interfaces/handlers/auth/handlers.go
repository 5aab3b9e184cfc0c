package auth

import (
	"context"
	"errors"

	authsvc "sharesreg-backend/internal/application/auth"
	"sharesreg-backend/internal/middleware"
	"sharesreg-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// user_sessions:<user_id> is a Redis set of that user's live session ids.
const userSessionsPrefix = "user_sessions:"

type Handlers struct {
	UserFinder authsvc.UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var loginStatus = map[error]int{
	authsvc.ErrEmailPasswordRequired: fiber.StatusBadRequest,
	authsvc.ErrInvalidEmail:          fiber.StatusUnauthorized,
	authsvc.ErrIncorrectPassword:     fiber.StatusUnauthorized,
}

// Login POST /api/v1/auth/login
// Starts a fresh session for the user and sets the session cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return response.Error(c, authsvc.ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(req.Email, req.Password)
	if err != nil {
		for target, code := range loginStatus {
			if errors.Is(err, target) {
				log.Info().Str("trace_id", middleware.GetTraceID(c)).Err(err).Msg("Login rejected")
				return response.Error(c, target.Error(), code, nil)
			}
		}
		log.Error().Err(err).Msg("Login: user lookup failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	sessionUser := middleware.SessionUser{
		UserID:   user.UserID.String(),
		Fullname: user.Fullname,
		Email:    user.Email,
		Role:     user.Role,
	}
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, sessionUser)

	if err := h.Rdb.SAdd(context.Background(), userSessionsPrefix+sessionUser.UserID, sessionID).Err(); err != nil {
		log.Error().Err(err).Str("user_id", sessionUser.UserID).Msg("Login: session tracking failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	log.Info().Str("user_id", sessionUser.UserID).Str("role", sessionUser.Role).Msg("User signed in")
	return response.Success(c, "Login successful", fiber.Map{"user": sessionUser}, nil)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := authsvc.VerifyUser(middleware.GetUser(c))
	if err != nil {
		log.Debug().Str("trace_id", middleware.GetTraceID(c)).
			Bool("session_id_present", middleware.GetSessionID(c) != "").
			Msg("auth/me: no user in session")
		return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout
// Drops the session from Redis and expires the cookie. Succeeds without a session too.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := context.Background()

	if user, ok := middleware.CurrentUser(c); ok && sessionID != "" {
		_ = h.Rdb.SRem(ctx, userSessionsPrefix+user.UserID, sessionID).Err()
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
