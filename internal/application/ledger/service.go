package ledger

import (
	"context"
	"strings"
	"time"

	"sharesreg-backend/internal/application/certificates"
	"sharesreg-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Store loads and persists the holdings of one company.
// Update must hold the company's write lock from the read until the changed holdings are
// committed, across every process sharing the store, and write nothing when fn fails.
// fn receives the locked company and its holdings and returns the holdings it changed.
type Store interface {
	Holdings(ctx context.Context, companyID uuid.UUID) ([]*domain.Holding, error)
	Update(ctx context.Context, companyID uuid.UUID, fn func(*domain.Company, []*domain.Holding) ([]*domain.Holding, error)) error
}

// CompanyFinder reads the client record the register belongs to.
type CompanyFinder interface {
	FindCompany(ctx context.Context, id uuid.UUID) (*domain.Company, error)
}

// Service is the only writer of registers. Writes to one company are serialised by the store.
type Service struct {
	Store     Store
	Companies CompanyFinder
	Now       func() time.Time
}

// Availability is the classifier result for a company.
type Availability struct {
	CompanyID   uuid.UUID             `json:"company_id"`
	CompanyType domain.CompanyType    `json:"company_type"`
	Model       domain.OwnershipModel `json:"model"`
	Available   bool                  `json:"available"`
	Title       string                `json:"title,omitempty"`
}

// RegisterView is a snapshot of a company's register.
type RegisterView struct {
	Company     *domain.Company       `json:"company"`
	Model       domain.OwnershipModel `json:"model"`
	Title       string                `json:"title"`
	TotalShares int64                 `json:"total_shares,omitempty"`
	NextNumber  string                `json:"next_certificate_number,omitempty"`
	Holdings    []*domain.Holding     `json:"holdings"`
}

// History is one holding's certificate and transfer history.
type History struct {
	HoldingID          uuid.UUID               `json:"holding_id"`
	Holder             domain.Holder           `json:"holder"`
	CertificateHistory []domain.Certificate    `json:"certificate_history"`
	TransferHistory    []domain.TransferRecord `json:"transfer_history"`
}

// Document is a rendered certificate ready for delivery.
type Document struct {
	FileName string
	Content  string
}

// OwnershipModel classifies the company without failing for unavailable types.
func (s *Service) OwnershipModel(ctx context.Context, companyID uuid.UUID) (*Availability, error) {
	company, err := s.Companies.FindCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	model := company.OwnershipModel()
	return &Availability{
		CompanyID:   company.CompanyID,
		CompanyType: company.CompanyType,
		Model:       model,
		Available:   model != domain.Unavailable,
		Title:       model.RegisterTitle(),
	}, nil
}

// ViewHoldings returns every holding of the company, retired ones included.
func (s *Service) ViewHoldings(ctx context.Context, companyID uuid.UUID) (*RegisterView, error) {
	reg, err := s.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	view := &RegisterView{
		Company:  reg.Company,
		Model:    reg.Model,
		Title:    reg.Model.RegisterTitle(),
		Holdings: reg.Holdings(),
	}
	if reg.Model == domain.ShareBased {
		view.TotalShares = reg.TotalShares()
		view.NextNumber = reg.NextCertificateNumber()
	}
	return view, nil
}

// AddHolding records an initial issuance.
func (s *Service) AddHolding(ctx context.Context, companyID uuid.UUID, in domain.NewHolding) (*domain.Holding, error) {
	var h *domain.Holding
	err := s.Store.Update(ctx, companyID, func(company *domain.Company, holdings []*domain.Holding) ([]*domain.Holding, error) {
		reg, err := domain.NewRegister(company, holdings)
		if err != nil {
			return nil, err
		}
		if h, err = reg.Create(in, s.today()); err != nil {
			return nil, err
		}
		return reg.Changed(), nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("company_id", companyID.String()).Str("holding_id", h.ID.String()).
		Str("model", string(h.Model)).Msg("Holding added")
	return h, nil
}

// Transfer moves all or part of a holding to a recipient.
func (s *Service) Transfer(ctx context.Context, companyID, holdingID uuid.UUID, req domain.TransferRequest) (*domain.TransferResult, error) {
	var result *domain.TransferResult
	err := s.Store.Update(ctx, companyID, func(company *domain.Company, holdings []*domain.Holding) ([]*domain.Holding, error) {
		reg, err := domain.NewRegister(company, holdings)
		if err != nil {
			return nil, err
		}
		if result, err = reg.Transfer(holdingID, req, s.today()); err != nil {
			return nil, err
		}
		return reg.Changed(), nil
	})
	if err != nil {
		return nil, err
	}
	evt := log.Info().Str("company_id", companyID.String()).Str("holding_id", holdingID.String()).
		Str("type", string(req.Type))
	if result.Recipient != nil {
		evt = evt.Str("recipient_holding_id", result.Recipient.ID.String())
	}
	evt.Msg("Holding transferred")
	return result, nil
}

// ViewHistory returns the certificate and transfer history of one holding.
func (s *Service) ViewHistory(ctx context.Context, companyID, holdingID uuid.UUID) (*History, error) {
	reg, err := s.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	h, err := reg.Holding(holdingID)
	if err != nil {
		return nil, err
	}
	return &History{
		HoldingID:          h.ID,
		Holder:             h.Holder,
		CertificateHistory: h.CertificateHistory,
		TransferHistory:    h.TransferHistory,
	}, nil
}

// Certificate renders the holding's active certificate, or the numbered one when number is set.
func (s *Service) Certificate(ctx context.Context, companyID, holdingID uuid.UUID, number string) (*Document, error) {
	reg, err := s.load(ctx, companyID)
	if err != nil {
		return nil, err
	}
	h, err := reg.Holding(holdingID)
	if err != nil {
		return nil, err
	}
	var cert *domain.Certificate
	if number = strings.TrimSpace(number); number != "" {
		if h.Share == nil {
			return nil, domain.ErrCertificateNotFound
		}
		if cert = h.FindCertificate(number); cert == nil {
			return nil, domain.ErrCertificateNotFound
		}
	} else if h.Share != nil {
		cert = h.ActiveCertificate()
	}
	return &Document{
		FileName: certificates.FileName(h, cert),
		Content:  certificates.Render(*reg.Company, h, cert),
	}, nil
}

func (s *Service) load(ctx context.Context, companyID uuid.UUID) (*domain.Register, error) {
	company, err := s.Companies.FindCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company.OwnershipModel() == domain.Unavailable {
		return nil, &domain.UnavailableModuleError{CompanyType: company.CompanyType}
	}
	holdings, err := s.Store.Holdings(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return domain.NewRegister(company, holdings)
}

func (s *Service) today() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().Format(domain.DateLayout)
}
