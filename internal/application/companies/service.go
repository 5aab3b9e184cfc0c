package companies

import (
	"context"
	"errors"
	"strings"

	"sharesreg-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNameTypeRequired   = errors.New("name and company_type are required")
	ErrInvalidCompanyType = errors.New("Invalid company_type")
	ErrInvalidShares      = errors.New("issued_shares must not be negative")
)

// Service manages client company records. The ledger reads them through FindCompany.
type Service struct {
	DB *gorm.DB
}

// CreateCompanyInput is the create-company payload.
type CreateCompanyInput struct {
	Name          string             `json:"name"`
	IDOrRegNumber string             `json:"id_or_reg_number"`
	CompanyType   domain.CompanyType `json:"company_type"`
	IssuedShares  int64              `json:"issued_shares"`
}

func (s *Service) CreateCompany(ctx context.Context, in CreateCompanyInput) (*domain.Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.CompanyType == "" {
		return nil, ErrNameTypeRequired
	}
	if !domain.IsValidCompanyType(in.CompanyType) {
		return nil, ErrInvalidCompanyType
	}
	if in.IssuedShares < 0 {
		return nil, ErrInvalidShares
	}
	company := &domain.Company{
		CompanyID:     uuid.New(),
		Name:          name,
		IDOrRegNumber: strings.TrimSpace(in.IDOrRegNumber),
		CompanyType:   in.CompanyType,
	}
	// Only share-based entities carry share capital.
	if domain.Classify(in.CompanyType) == domain.ShareBased {
		company.IssuedShares = in.IssuedShares
	}
	if err := s.DB.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func (s *Service) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var companies []domain.Company
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// FindCompany returns domain.ErrCompanyNotFound for unknown ids.
func (s *Service) FindCompany(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	if id == uuid.Nil {
		return nil, domain.ErrCompanyNotFound
	}
	var company domain.Company
	if err := s.DB.WithContext(ctx).Where("company_id = ?", id).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return &company, nil
}
