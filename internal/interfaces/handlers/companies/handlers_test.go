package companies

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	companysvc "sharesreg-backend/internal/application/companies"
	"sharesreg-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCompaniesTest(t *testing.T) *fiber.App {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Company{}))

	h := &Handlers{Service: &companysvc.Service{DB: db}}
	app := fiber.New()
	app.Post("/api/v1/companies/create-company", h.CreateCompany)
	app.Get("/api/v1/companies/view-companies", h.ViewCompanies)
	app.Get("/api/v1/companies/view-company/:company_id", h.ViewCompany)
	return app
}

func post(t *testing.T, app *fiber.App, body map[string]interface{}) (*apiResult, error) {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/api/v1/companies/create-company", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		return nil, err
	}
	raw, _ := io.ReadAll(resp.Body)
	out := &apiResult{Code: resp.StatusCode}
	_ = json.Unmarshal(raw, &out.Body)
	return out, nil
}

type apiResult struct {
	Code int
	Body map[string]interface{}
}

func TestCreateCompany_MissingFields(t *testing.T) {
	app := setupCompaniesTest(t)
	resp, err := post(t, app, map[string]interface{}{"name": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.Code)
}

func TestCreateCompany_InvalidType(t *testing.T) {
	app := setupCompaniesTest(t)
	resp, err := post(t, app, map[string]interface{}{"name": "Acme", "company_type": "Partnership"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid company_type", resp.Body["error"].(map[string]interface{})["message"])
}

func TestCreateAndViewCompany(t *testing.T) {
	app := setupCompaniesTest(t)
	resp, err := post(t, app, map[string]interface{}{
		"name":          "Doe Trading CC",
		"company_type":  "Closed Corporation",
		"issued_shares": 1000,
	})
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.Code)
	data := resp.Body["data"].(map[string]interface{})
	// Close corporations carry no share capital.
	assert.Equal(t, 0.0, data["issued_shares"])
	id := data["company_id"].(string)

	view, err := app.Test(httptest.NewRequest("GET", "/api/v1/companies/view-company/"+id, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, view.StatusCode)
	raw, _ := io.ReadAll(view.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "interest_based", out["data"].(map[string]interface{})["ownership_model"])

	list, err := app.Test(httptest.NewRequest("GET", "/api/v1/companies/view-companies", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, list.StatusCode)
}

func TestViewCompany_NotFound(t *testing.T) {
	app := setupCompaniesTest(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/companies/view-company/"+uuid.New().String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/companies/view-company/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
