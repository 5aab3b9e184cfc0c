package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "sharesreg-backend/internal/application/auth"
	"sharesreg-backend/internal/domain"
	"sharesreg-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	staffEmail    = "thandi@practice.co.za"
	staffPassword = "Ledger#2026"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		User middleware.SessionUser `json:"user"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type authTest struct {
	app   *fiber.App
	rdb   *redis.Client
	staff *domain.User
}

// setupAuth mounts the auth routes behind the Redis session, with one admin in the users table.
func setupAuth(t *testing.T) *authTest {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	hash, err := authsvc.HashPassword(staffPassword)
	require.NoError(t, err)
	staff := &domain.User{Fullname: "Thandi Mokoena", Email: staffEmail, PasswordHash: hash, Role: "admin"}
	require.NoError(t, db.Create(staff).Error)

	h := &Handlers{UserFinder: &authsvc.GormUserFinder{DB: db}, Rdb: rdb}
	app := fiber.New()
	app.Use(middleware.SessionWithClient(rdb))
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	return &authTest{app: app, rdb: rdb, staff: staff}
}

func (a *authTest) do(t *testing.T, method, path, body, cookie string) (*http.Response, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", middleware.SessionCookieName+"="+cookie)
	}
	resp, err := a.app.Test(req)
	require.NoError(t, err)
	var out envelope
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (a *authTest) login(t *testing.T) string {
	t.Helper()
	resp, out := a.do(t, "POST", "/login", `{"email":"`+staffEmail+`","password":"`+staffPassword+`"}`, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, out.Error.Message)
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookieName {
			return ck.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func TestLogin_Rejections(t *testing.T) {
	a := setupAuth(t)
	cases := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"empty body", ``, fiber.StatusBadRequest, "Email and password are required"},
		{"missing password", `{"email":"` + staffEmail + `"}`, fiber.StatusBadRequest, "Email and password are required"},
		{"unknown email", `{"email":"nobody@practice.co.za","password":"x"}`, fiber.StatusUnauthorized, "Invalid Email"},
		{"wrong password", `{"email":"` + staffEmail + `","password":"Wrong#2026"}`, fiber.StatusUnauthorized, "Incorrect Password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, out := a.do(t, "POST", "/login", tc.body, "")
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, "error", out.Status)
			assert.Equal(t, tc.message, out.Error.Message)
			assert.Empty(t, resp.Header.Values("Set-Cookie"))
		})
	}
}

func TestLogin_StoresSessionInRedis(t *testing.T) {
	a := setupAuth(t)
	ctx := context.Background()

	resp, out := a.do(t, "POST", "/login", `{"email":"THANDI@practice.co.za","password":"`+staffPassword+`"}`, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login successful", out.Message)
	assert.Equal(t, a.staff.UserID.String(), out.Data.User.UserID)
	assert.Equal(t, "admin", out.Data.User.Role)

	sessions, err := a.rdb.SMembers(ctx, userSessionsPrefix+a.staff.UserID.String()).Result()
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	raw, err := a.rdb.Get(ctx, middleware.SessionRedisPrefix+sessions[0]).Bytes()
	require.NoError(t, err)
	var stored struct {
		User middleware.SessionUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, staffEmail, stored.User.Email)
	assert.Equal(t, "Thandi Mokoena", stored.User.Fullname)
}

func TestLogin_EachLoginStartsNewSession(t *testing.T) {
	a := setupAuth(t)
	first := a.login(t)
	second := a.login(t)
	assert.NotEqual(t, first, second)

	sessions, err := a.rdb.SMembers(context.Background(), userSessionsPrefix+a.staff.UserID.String()).Result()
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestLogin_WithoutUserStore(t *testing.T) {
	h := &Handlers{}
	app := fiber.New()
	app.Post("/login", h.Login)
	req := httptest.NewRequest("POST", "/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestMe_FollowsSession(t *testing.T) {
	a := setupAuth(t)

	resp, out := a.do(t, "GET", "/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Not authenticated", out.Error.Message)

	resp, _ = a.do(t, "GET", "/me", "", "s:not-a-session")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	cookie := a.login(t)
	resp, out = a.do(t, "GET", "/me", "", cookie)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Authenticated", out.Message)
	assert.Equal(t, staffEmail, out.Data.User.Email)
	assert.Equal(t, "admin", out.Data.User.Role)
}

func TestLogout_EndsOnlyThatSession(t *testing.T) {
	a := setupAuth(t)
	ctx := context.Background()
	kept := a.login(t)
	ended := a.login(t)

	resp, out := a.do(t, "DELETE", "/logout", "", ended)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully", out.Message)
	cleared := false
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.SessionCookieName && ck.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared)

	resp, _ = a.do(t, "GET", "/me", "", ended)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	resp, _ = a.do(t, "GET", "/me", "", kept)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	sessions, err := a.rdb.SMembers(ctx, userSessionsPrefix+a.staff.UserID.String()).Result()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestLogout_WithoutSession(t *testing.T) {
	a := setupAuth(t)
	resp, _ := a.do(t, "DELETE", "/logout", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Values("Set-Cookie"))
}
