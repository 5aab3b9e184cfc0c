package sharesmembers

import (
	"errors"
	"math"

	"sharesreg-backend/internal/application/ledger"
	"sharesreg-backend/internal/domain"
	"sharesreg-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handlers bundles the Shares & Members register endpoints.
type Handlers struct {
	Service *ledger.Service
}

// AddHoldingRequest is the add-holding body. Amounts are decoded as numbers and checked here
// so a fractional share count is a field error rather than a parse failure.
type AddHoldingRequest struct {
	domain.Holder
	CertificateNumber string           `json:"certificate_number"`
	Shares            *float64         `json:"shares"`
	ShareType         domain.ShareType `json:"share_type"`
	MemberInterest    *float64         `json:"member_interest"`
}

// TransferRequest is the transfer-holding body.
type TransferRequest struct {
	Type         domain.TransferType `json:"type"`
	Amount       *float64            `json:"amount"`
	ShareType    domain.ShareType    `json:"share_type"`
	TransferDate string              `json:"transfer_date"`
	Recipient    domain.Holder       `json:"recipient"`
}

var statusMap = map[error]int{
	domain.ErrCompanyNotFound:     fiber.StatusNotFound,
	domain.ErrHoldingNotFound:     fiber.StatusNotFound,
	domain.ErrCertificateNotFound: fiber.StatusNotFound,
}

func handleError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return response.Invalid(c, ve.Field, ve.Message)
	}
	var ue *domain.UnavailableModuleError
	if errors.As(err, &ue) {
		return response.Error(c, ue.Error(), fiber.StatusUnprocessableEntity, fiber.Map{"company_type": ue.CompanyType})
	}
	for target, code := range statusMap {
		if errors.Is(err, target) {
			return response.Error(c, target.Error(), code, nil)
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("Shares & Members request failed")
	return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}

func companyID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("company_id"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("company_id", "Invalid company_id")
	}
	return id, nil
}

func holdingID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("holding_id"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("holding_id", "Invalid holding_id")
	}
	return id, nil
}

func ids(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	cid, err := companyID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	hid, err := holdingID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return cid, hid, nil
}

// OwnershipModel GET /api/v1/shares-members/:company_id/ownership-model
func (h *Handlers) OwnershipModel(c *fiber.Ctx) error {
	cid, err := companyID(c)
	if err != nil {
		return handleError(c, err)
	}
	availability, err := h.Service.OwnershipModel(c.Context(), cid)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Ownership model retrieved successfully", availability, nil)
}

// ViewHoldings GET /api/v1/shares-members/:company_id/view-holdings
func (h *Handlers) ViewHoldings(c *fiber.Ctx) error {
	cid, err := companyID(c)
	if err != nil {
		return handleError(c, err)
	}
	view, err := h.Service.ViewHoldings(c.Context(), cid)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Holdings retrieved successfully", view, response.Count(len(view.Holdings)))
}

// AddHolding POST /api/v1/shares-members/:company_id/add-holding
func (h *Handlers) AddHolding(c *fiber.Ctx) error {
	cid, err := companyID(c)
	if err != nil {
		return handleError(c, err)
	}
	var body AddHoldingRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	in, err := body.toNewHolding()
	if err != nil {
		return handleError(c, err)
	}
	holding, err := h.Service.AddHolding(c.Context(), cid, in)
	if err != nil {
		return handleError(c, err)
	}
	return response.SuccessCreated(c, "Holding added successfully", holding, nil)
}

func (r AddHoldingRequest) toNewHolding() (domain.NewHolding, error) {
	in := domain.NewHolding{
		Holder:            r.Holder,
		CertificateNumber: r.CertificateNumber,
		ShareType:         r.ShareType,
		MemberInterest:    r.MemberInterest,
	}
	if r.Shares != nil {
		v := *r.Shares
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > math.MaxInt64/2 {
			return in, domain.NewValidationError("shares", "shares must be a whole number")
		}
		n := int64(v)
		in.Shares = &n
	}
	return in, nil
}

// ViewHistory GET /api/v1/shares-members/:company_id/view-history/:holding_id
func (h *Handlers) ViewHistory(c *fiber.Ctx) error {
	cid, hid, err := ids(c)
	if err != nil {
		return handleError(c, err)
	}
	history, err := h.Service.ViewHistory(c.Context(), cid, hid)
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "History retrieved successfully", history, nil)
}

// TransferHolding POST /api/v1/shares-members/:company_id/transfer-holding/:holding_id
func (h *Handlers) TransferHolding(c *fiber.Ctx) error {
	cid, hid, err := ids(c)
	if err != nil {
		return handleError(c, err)
	}
	var body TransferRequest
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.Transfer(c.Context(), cid, hid, domain.TransferRequest{
		Type:         body.Type,
		Amount:       body.Amount,
		ShareType:    body.ShareType,
		Recipient:    body.Recipient,
		TransferDate: body.TransferDate,
	})
	if err != nil {
		return handleError(c, err)
	}
	return response.Success(c, "Transfer completed successfully", result, nil)
}

// DownloadCertificate GET /api/v1/shares-members/:company_id/download-certificate/:holding_id
// Optional query certificate_number selects an archived certificate.
func (h *Handlers) DownloadCertificate(c *fiber.Ctx) error {
	cid, hid, err := ids(c)
	if err != nil {
		return handleError(c, err)
	}
	doc, err := h.Service.Certificate(c.Context(), cid, hid, c.Query("certificate_number"))
	if err != nil {
		return handleError(c, err)
	}
	return response.Attachment(c, doc.FileName, doc.Content)
}
