package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "sharesreg-backend/internal/application/auth"
	"sharesreg-backend/internal/config"
	"sharesreg-backend/internal/domain"
	"sharesreg-backend/internal/infrastructure/database"
	"sharesreg-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	app := NewApp(&config.Config{Env: "test", HealthAdminKey: "k"}, db, rdb)
	return app, db
}

func createUser(t *testing.T, db *gorm.DB, email, role string) {
	hash, err := authsvc.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{Fullname: "Test", Email: email, PasswordHash: hash, Role: role}).Error)
}

func login(t *testing.T, app *fiber.App, email string) string {
	body, _ := json.Marshal(map[string]string{"email": email, "password": "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func call(t *testing.T, app *fiber.App, cookie, method, path string, body interface{}) (int, map[string]interface{}) {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", middleware.SessionCookieName+"="+cookie)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestRoutes_RequireAuth(t *testing.T) {
	app, _ := setupApp(t)
	code, out := call(t, app, "", http.MethodGet, "/api/v1/companies/view-companies", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "error", out["status"])
}

func TestRoutes_Permissions(t *testing.T) {
	app, db := setupApp(t)
	createUser(t, db, "manager@example.com", "manager")
	createUser(t, db, "viewer@example.com", "viewer")
	manager := login(t, app, "manager@example.com")
	viewer := login(t, app, "viewer@example.com")

	code, out := call(t, app, manager, http.MethodPost, "/api/v1/companies/create-company", map[string]interface{}{
		"name": "Acme (Pty) Ltd", "company_type": "Private Company", "issued_shares": 1000,
	})
	require.Equal(t, fiber.StatusCreated, code, out)
	companyID := out["data"].(map[string]interface{})["company_id"].(string)
	base := "/api/v1/shares-members/" + companyID

	code, _ = call(t, app, viewer, http.MethodPost, base+"/add-holding", map[string]interface{}{
		"first_name": "John", "last_name": "Smith", "certificate_number": "001", "shares": 100, "share_type": "Ordinary",
	})
	assert.Equal(t, fiber.StatusForbidden, code)

	code, out = call(t, app, manager, http.MethodPost, base+"/add-holding", map[string]interface{}{
		"first_name": "John", "last_name": "Smith", "certificate_number": "001", "shares": 100, "share_type": "Ordinary",
	})
	require.Equal(t, fiber.StatusCreated, code, out)
	holdingID := out["data"].(map[string]interface{})["id"].(string)

	// Transfers need admin.
	code, _ = call(t, app, manager, http.MethodPost, base+"/transfer-holding/"+holdingID, map[string]interface{}{
		"type": "full", "recipient": map[string]string{"first_name": "Mary", "last_name": "Jones"},
	})
	assert.Equal(t, fiber.StatusForbidden, code)

	code, out = call(t, app, viewer, http.MethodGet, base+"/view-holdings", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"].(map[string]interface{})["holdings"], 1)
}

func TestRoutes_Health(t *testing.T) {
	app, _ := setupApp(t)
	code, out := call(t, app, "", http.MethodGet, "/health/json", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "ok", out["status"])
}
