package companies

import (
	"errors"

	companysvc "sharesreg-backend/internal/application/companies"
	"sharesreg-backend/internal/domain"
	"sharesreg-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handlers bundles client company handlers with dependencies.
type Handlers struct {
	Service *companysvc.Service
}

var statusMap = map[error]int{
	companysvc.ErrNameTypeRequired:   fiber.StatusBadRequest,
	companysvc.ErrInvalidCompanyType: fiber.StatusBadRequest,
	companysvc.ErrInvalidShares:      fiber.StatusBadRequest,
	domain.ErrCompanyNotFound:        fiber.StatusNotFound,
}

func handleError(c *fiber.Ctx, err error) error {
	for target, code := range statusMap {
		if errors.Is(err, target) {
			return response.Error(c, target.Error(), code, nil)
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("Company request failed")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

// CreateCompany POST /api/v1/companies/create-company
func (h *Handlers) CreateCompany(c *fiber.Ctx) error {
	var in companysvc.CreateCompanyInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, companysvc.ErrNameTypeRequired.Error(), fiber.StatusBadRequest, nil)
	}
	company, err := h.Service.CreateCompany(c.Context(), in)
	if err != nil {
		return handleError(c, err)
	}
	return response.SuccessCreated(c, "Company created successfully", company, nil)
}

// ViewCompanies GET /api/v1/companies/view-companies
func (h *Handlers) ViewCompanies(c *fiber.Ctx) error {
	companies, err := h.Service.ListCompanies(c.Context())
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Companies retrieved successfully", companies, response.Count(len(companies)))
}

// ViewCompany GET /api/v1/companies/view-company/:company_id
func (h *Handlers) ViewCompany(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("company_id"))
	if err != nil {
		return response.Error(c, "Invalid company_id", fiber.StatusBadRequest, nil)
	}
	company, err := h.Service.FindCompany(c.Context(), id)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Company retrieved successfully", fiber.Map{
		"company":         company,
		"ownership_model": company.OwnershipModel(),
	}, nil)
}
